package thread

import (
	"time"

	id "campusforum/pkg/domain"
)

// Thread is a top-level discussion. Pinned threads sort first in listings;
// locked threads reject new replies but stay readable.
type Thread struct {
	ID          id.ThreadID
	AuthorID    id.UserID
	CategoryID  id.CategoryID
	Title       string
	Content     string
	Pinned      bool
	Locked      bool
	ViewCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastReplyAt *time.Time
}

// Reply is a post inside a thread.
type Reply struct {
	ID        id.ReplyID
	ThreadID  id.ThreadID
	AuthorID  id.UserID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
