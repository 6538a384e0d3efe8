package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// ApplySchema runs every DDL statement against the pool. Safe to call on
// every boot.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Schema holds the DDL applied at startup and by integration tests. Statements
// are idempotent so repeated application is safe.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		status        TEXT NOT NULL,
		avatar_url    TEXT NOT NULL DEFAULT '',
		bio           TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS threads (
		id            UUID PRIMARY KEY,
		author_id     UUID NOT NULL,
		category_id   UUID NOT NULL,
		title         TEXT NOT NULL,
		content       TEXT NOT NULL,
		pinned        BOOLEAN NOT NULL DEFAULT FALSE,
		locked        BOOLEAN NOT NULL DEFAULT FALSE,
		view_count    BIGINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL,
		last_reply_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS threads_created_idx ON threads (created_at)`,
	`CREATE TABLE IF NOT EXISTS replies (
		id         UUID PRIMARY KEY,
		thread_id  UUID NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
		author_id  UUID NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS replies_thread_idx ON replies (thread_id)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		user_id    UUID NOT NULL,
		thread_id  UUID NOT NULL REFERENCES threads(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, thread_id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL,
		type       TEXT NOT NULL,
		message    TEXT NOT NULL,
		thread_id  UUID,
		is_read    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_idx ON notifications (user_id, is_read)`,
}
