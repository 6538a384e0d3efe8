package thread

import (
	"context"
	"time"

	id "campusforum/pkg/domain"
)

// Store persists threads. FindByID returns sentinel.ErrNotFound for unknown
// ids; mutating operations do the same when the row is gone.
type Store interface {
	Create(ctx context.Context, t Thread) error
	FindByID(ctx context.Context, threadID id.ThreadID) (*Thread, error)
	Update(ctx context.Context, t Thread) error
	Delete(ctx context.Context, threadID id.ThreadID) error
	List(ctx context.Context) ([]Thread, error)
	IncrementViewCount(ctx context.Context, threadID id.ThreadID) error
	ListIDsCreatedBefore(ctx context.Context, cutoff time.Time) ([]id.ThreadID, error)
}

// ReplyStore persists replies.
type ReplyStore interface {
	Create(ctx context.Context, r Reply) error
	FindByID(ctx context.Context, replyID id.ReplyID) (*Reply, error)
	Update(ctx context.Context, r Reply) error
	Delete(ctx context.Context, replyID id.ReplyID) error
	ListByThread(ctx context.Context, threadID id.ThreadID) ([]Reply, error)
	DeleteByThread(ctx context.Context, threadID id.ThreadID) error
}
