package notification

import (
	"context"
	"database/sql"
	"fmt"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/platform/tx"
)

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

func (s *PostgresStore) Create(ctx context.Context, n Notification) error {
	const query = `
		INSERT INTO notifications (id, user_id, type, message, thread_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	var threadID any
	if n.ThreadID != nil {
		threadID = n.ThreadID.String()
	}
	_, err := s.exec(ctx).ExecContext(ctx, query,
		n.ID.String(), n.UserID.String(), n.Type.String(), n.Message, threadID, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Notification, error) {
	const query = `
		SELECT id, user_id, type, message, thread_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	return s.list(ctx, query, userID.String())
}

func (s *PostgresStore) ListUnreadByUser(ctx context.Context, userID id.UserID) ([]Notification, error) {
	const query = `
		SELECT id, user_id, type, message, thread_id, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC`

	return s.list(ctx, query, userID.String())
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Notification, error) {
	rows, err := s.exec(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n         Notification
			rawID     string
			rawUser   string
			rawType   string
			rawThread sql.NullString
		)
		if err := rows.Scan(&rawID, &rawUser, &rawType, &n.Message, &rawThread, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if n.ID, err = id.ParseNotificationID(rawID); err != nil {
			return nil, fmt.Errorf("parse notification id: %w", err)
		}
		if n.UserID, err = id.ParseUserID(rawUser); err != nil {
			return nil, fmt.Errorf("parse notification user id: %w", err)
		}
		if n.Type, err = id.ParseNotificationType(rawType); err != nil {
			return nil, fmt.Errorf("parse notification type: %w", err)
		}
		if rawThread.Valid {
			threadID, err := id.ParseThreadID(rawThread.String)
			if err != nil {
				return nil, fmt.Errorf("parse notification thread id: %w", err)
			}
			n.ThreadID = &threadID
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	const query = `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2`

	res, err := s.exec(ctx).ExecContext(ctx, query, notificationID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkAllRead(ctx context.Context, userID id.UserID) (int, error) {
	const query = `
		UPDATE notifications SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE`

	res, err := s.exec(ctx).ExecContext(ctx, query, userID.String())
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	const query = `DELETE FROM notifications WHERE id = $1 AND user_id = $2`

	res, err := s.exec(ctx).ExecContext(ctx, query, notificationID.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
