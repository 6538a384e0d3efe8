package subscription

import (
	"context"

	id "campusforum/pkg/domain"
)

// Store persists thread subscriptions. Implementations return
// sentinel.ErrConflict when the (user, thread) pair already exists and
// sentinel.ErrNotFound when a removal targets a pair that does not.
type Store interface {
	Add(ctx context.Context, sub Subscription) error
	Remove(ctx context.Context, userID id.UserID, threadID id.ThreadID) error
	ListByThread(ctx context.Context, threadID id.ThreadID) ([]id.UserID, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]Subscription, error)
	RemoveAllForThread(ctx context.Context, threadID id.ThreadID) error
}
