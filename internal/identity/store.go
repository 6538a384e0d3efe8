package identity

import (
	"context"

	id "campusforum/pkg/domain"
)

// UserStore persists accounts. Create returns sentinel.ErrConflict when the
// username or email is taken; lookups return sentinel.ErrNotFound.
type UserStore interface {
	Create(ctx context.Context, u User) error
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context) ([]User, error)
}
