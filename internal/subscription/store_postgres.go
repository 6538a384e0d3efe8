package subscription

import (
	"context"
	"database/sql"
	"fmt"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/platform/tx"
)

// PostgresStore persists subscriptions with a (user_id, thread_id) primary
// key. Duplicate detection rides on ON CONFLICT DO NOTHING rather than a
// read-then-write race.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) exec(ctx context.Context) executor {
	if txn, ok := tx.From(ctx); ok {
		return txn
	}
	return s.db
}

func (s *PostgresStore) Add(ctx context.Context, sub Subscription) error {
	const query = `
		INSERT INTO subscriptions (user_id, thread_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, thread_id) DO NOTHING`

	res, err := s.exec(ctx).ExecContext(ctx, query, sub.UserID.String(), sub.ThreadID.String(), sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, userID id.UserID, threadID id.ThreadID) error {
	const query = `DELETE FROM subscriptions WHERE user_id = $1 AND thread_id = $2`

	res, err := s.exec(ctx).ExecContext(ctx, query, userID.String(), threadID.String())
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListByThread(ctx context.Context, threadID id.ThreadID) ([]id.UserID, error) {
	const query = `
		SELECT user_id FROM subscriptions
		WHERE thread_id = $1
		ORDER BY created_at`

	rows, err := s.exec(ctx).QueryContext(ctx, query, threadID.String())
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []id.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse subscriber id: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Subscription, error) {
	const query = `
		SELECT user_id, thread_id, created_at FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at`

	rows, err := s.exec(ctx).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []Subscription
	for rows.Next() {
		var (
			sub       Subscription
			rawUser   string
			rawThread string
		)
		if err := rows.Scan(&rawUser, &rawThread, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		if sub.UserID, err = id.ParseUserID(rawUser); err != nil {
			return nil, fmt.Errorf("parse subscription user id: %w", err)
		}
		if sub.ThreadID, err = id.ParseThreadID(rawThread); err != nil {
			return nil, fmt.Errorf("parse subscription thread id: %w", err)
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *PostgresStore) RemoveAllForThread(ctx context.Context, threadID id.ThreadID) error {
	const query = `DELETE FROM subscriptions WHERE thread_id = $1`

	if _, err := s.exec(ctx).ExecContext(ctx, query, threadID.String()); err != nil {
		return fmt.Errorf("delete thread subscriptions: %w", err)
	}
	return nil
}
