package thread

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/platform/tx"
)

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) exec(ctx context.Context) executor {
	if txn, ok := tx.From(ctx); ok {
		return txn
	}
	return s.db
}

const threadColumns = `id, author_id, category_id, title, content, pinned, locked, view_count, created_at, updated_at, last_reply_at`

func (s *PostgresStore) Create(ctx context.Context, t Thread) error {
	const query = `
		INSERT INTO threads (id, author_id, category_id, title, content, pinned, locked, view_count, created_at, updated_at, last_reply_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := s.exec(ctx).ExecContext(ctx, query,
		t.ID.String(), t.AuthorID.String(), t.CategoryID.String(), t.Title, t.Content,
		t.Pinned, t.Locked, t.ViewCount, t.CreatedAt, t.UpdatedAt, t.LastReplyAt)
	if err != nil {
		return fmt.Errorf("insert thread: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, threadID id.ThreadID) (*Thread, error) {
	query := `SELECT ` + threadColumns + ` FROM threads WHERE id = $1`

	row := s.exec(ctx).QueryRowContext(ctx, query, threadID.String())
	t, err := scanThread(row.Scan)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find thread: %w", err)
	}
	return t, nil
}

func scanThread(scan func(dest ...any) error) (*Thread, error) {
	var (
		t           Thread
		rawID       string
		rawAuthor   string
		rawCategory string
		lastReplyAt sql.NullTime
	)
	err := scan(&rawID, &rawAuthor, &rawCategory, &t.Title, &t.Content,
		&t.Pinned, &t.Locked, &t.ViewCount, &t.CreatedAt, &t.UpdatedAt, &lastReplyAt)
	if err != nil {
		return nil, err
	}
	if t.ID, err = id.ParseThreadID(rawID); err != nil {
		return nil, fmt.Errorf("parse thread id: %w", err)
	}
	if t.AuthorID, err = id.ParseUserID(rawAuthor); err != nil {
		return nil, fmt.Errorf("parse thread author id: %w", err)
	}
	if t.CategoryID, err = id.ParseCategoryID(rawCategory); err != nil {
		return nil, fmt.Errorf("parse thread category id: %w", err)
	}
	if lastReplyAt.Valid {
		t.LastReplyAt = &lastReplyAt.Time
	}
	return &t, nil
}

func (s *PostgresStore) Update(ctx context.Context, t Thread) error {
	const query = `
		UPDATE threads
		SET category_id = $2, title = $3, content = $4, pinned = $5, locked = $6, updated_at = $7, last_reply_at = $8
		WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query,
		t.ID.String(), t.CategoryID.String(), t.Title, t.Content, t.Pinned, t.Locked, t.UpdatedAt, t.LastReplyAt)
	if err != nil {
		return fmt.Errorf("update thread: %w", err)
	}
	return requireAffected(res, "update thread")
}

func (s *PostgresStore) Delete(ctx context.Context, threadID id.ThreadID) error {
	const query = `DELETE FROM threads WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query, threadID.String())
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	return requireAffected(res, "delete thread")
}

func (s *PostgresStore) List(ctx context.Context) ([]Thread, error) {
	query := `
		SELECT ` + threadColumns + ` FROM threads
		ORDER BY pinned DESC, COALESCE(last_reply_at, created_at) DESC`

	rows, err := s.exec(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var out []Thread
	for rows.Next() {
		t, err := scanThread(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// IncrementViewCount bumps the counter atomically in SQL so concurrent views
// never lose increments.
func (s *PostgresStore) IncrementViewCount(ctx context.Context, threadID id.ThreadID) error {
	const query = `UPDATE threads SET view_count = view_count + 1 WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query, threadID.String())
	if err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return requireAffected(res, "increment view count")
}

func (s *PostgresStore) ListIDsCreatedBefore(ctx context.Context, cutoff time.Time) ([]id.ThreadID, error) {
	const query = `SELECT id FROM threads WHERE created_at < $1`

	rows, err := s.exec(ctx).QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired threads: %w", err)
	}
	defer rows.Close()

	var out []id.ThreadID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan expired thread id: %w", err)
		}
		threadID, err := id.ParseThreadID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse expired thread id: %w", err)
		}
		out = append(out, threadID)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
