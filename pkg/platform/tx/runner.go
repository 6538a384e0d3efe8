package tx

import (
	"context"
	"database/sql"
	"fmt"
)

// Runner executes a function within a transaction boundary. Stores see the
// transaction through the context.
type Runner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs fn on a database transaction and commits or rolls back based
// on the returned error.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(WithTx(ctx, txn)); err != nil {
		_ = txn.Rollback()
		return err
	}
	if err := txn.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// NoopRunner satisfies Runner for in-memory stores, which have no
// transactions.
type NoopRunner struct{}

func (NoopRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
