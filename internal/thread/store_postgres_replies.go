package thread

import (
	"context"
	"database/sql"
	"fmt"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/platform/tx"
)

type PostgresReplyStore struct {
	db *sql.DB
}

func NewPostgresReplyStore(db *sql.DB) *PostgresReplyStore {
	return &PostgresReplyStore{db: db}
}

func (s *PostgresReplyStore) exec(ctx context.Context) executor {
	if txn, ok := tx.From(ctx); ok {
		return txn
	}
	return s.db
}

func (s *PostgresReplyStore) Create(ctx context.Context, r Reply) error {
	const query = `
		INSERT INTO replies (id, thread_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.exec(ctx).ExecContext(ctx, query,
		r.ID.String(), r.ThreadID.String(), r.AuthorID.String(), r.Content, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}
	return nil
}

func (s *PostgresReplyStore) FindByID(ctx context.Context, replyID id.ReplyID) (*Reply, error) {
	const query = `
		SELECT id, thread_id, author_id, content, created_at, updated_at
		FROM replies WHERE id = $1`

	row := s.exec(ctx).QueryRowContext(ctx, query, replyID.String())
	r, err := scanReply(row.Scan)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find reply: %w", err)
	}
	return r, nil
}

func scanReply(scan func(dest ...any) error) (*Reply, error) {
	var (
		r         Reply
		rawID     string
		rawThread string
		rawAuthor string
	)
	err := scan(&rawID, &rawThread, &rawAuthor, &r.Content, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if r.ID, err = id.ParseReplyID(rawID); err != nil {
		return nil, fmt.Errorf("parse reply id: %w", err)
	}
	if r.ThreadID, err = id.ParseThreadID(rawThread); err != nil {
		return nil, fmt.Errorf("parse reply thread id: %w", err)
	}
	if r.AuthorID, err = id.ParseUserID(rawAuthor); err != nil {
		return nil, fmt.Errorf("parse reply author id: %w", err)
	}
	return &r, nil
}

func (s *PostgresReplyStore) Update(ctx context.Context, r Reply) error {
	const query = `UPDATE replies SET content = $2, updated_at = $3 WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query, r.ID.String(), r.Content, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update reply: %w", err)
	}
	return requireAffected(res, "update reply")
}

func (s *PostgresReplyStore) Delete(ctx context.Context, replyID id.ReplyID) error {
	const query = `DELETE FROM replies WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query, replyID.String())
	if err != nil {
		return fmt.Errorf("delete reply: %w", err)
	}
	return requireAffected(res, "delete reply")
}

func (s *PostgresReplyStore) ListByThread(ctx context.Context, threadID id.ThreadID) ([]Reply, error) {
	const query = `
		SELECT id, thread_id, author_id, content, created_at, updated_at
		FROM replies WHERE thread_id = $1
		ORDER BY created_at`

	rows, err := s.exec(ctx).QueryContext(ctx, query, threadID.String())
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	var out []Reply
	for rows.Next() {
		r, err := scanReply(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *PostgresReplyStore) DeleteByThread(ctx context.Context, threadID id.ThreadID) error {
	const query = `DELETE FROM replies WHERE thread_id = $1`

	if _, err := s.exec(ctx).ExecContext(ctx, query, threadID.String()); err != nil {
		return fmt.Errorf("delete thread replies: %w", err)
	}
	return nil
}
