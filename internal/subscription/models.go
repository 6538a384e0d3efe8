package subscription

import (
	"time"

	id "campusforum/pkg/domain"
)

// Subscription records a user's interest in a thread. One row per
// (user, thread) pair; resubscribing is a conflict, not a refresh.
type Subscription struct {
	UserID    id.UserID
	ThreadID  id.ThreadID
	CreatedAt time.Time
}
