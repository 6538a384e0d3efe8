package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/platform/tx"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) exec(ctx context.Context) executor {
	if txn, ok := tx.From(ctx); ok {
		return txn
	}
	return s.db
}

const userColumns = `id, username, email, password_hash, role, status, avatar_url, bio, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, u User) error {
	const query = `
		INSERT INTO users (id, username, email, password_hash, role, status, avatar_url, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.exec(ctx).ExecContext(ctx, query,
		u.ID.String(), u.Username, u.Email, u.PasswordHash,
		u.Role.String(), u.Status.String(), u.AvatarURL, u.Bio, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.findOne(ctx, query, userID.String())
}

func (s *PostgresStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return s.findOne(ctx, query, username)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*User, error) {
	row := s.exec(ctx).QueryRowContext(ctx, query, arg)
	u, err := scanUser(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func scanUser(scan func(dest ...any) error) (*User, error) {
	var (
		u         User
		rawID     string
		rawRole   string
		rawStatus string
	)
	err := scan(&rawID, &u.Username, &u.Email, &u.PasswordHash, &rawRole, &rawStatus, &u.AvatarURL, &u.Bio, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if u.ID, err = id.ParseUserID(rawID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if u.Role, err = id.ParseRole(rawRole); err != nil {
		return nil, fmt.Errorf("parse user role: %w", err)
	}
	if u.Status, err = id.ParseUserStatus(rawStatus); err != nil {
		return nil, fmt.Errorf("parse user status: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) Update(ctx context.Context, u User) error {
	const query = `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, role = $5, status = $6,
		    avatar_url = $7, bio = $8, updated_at = $9
		WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query,
		u.ID.String(), u.Username, u.Email, u.PasswordHash,
		u.Role.String(), u.Status.String(), u.AvatarURL, u.Bio, u.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID id.UserID) error {
	const query = `DELETE FROM users WHERE id = $1`

	res, err := s.exec(ctx).ExecContext(ctx, query, userID.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`

	rows, err := s.exec(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
