package notification

import (
	"time"

	id "campusforum/pkg/domain"
)

// Notification is a per-user inbox entry. ThreadID is set for thread-scoped
// events and nil for account-level ones such as a ban notice.
type Notification struct {
	ID        id.NotificationID
	UserID    id.UserID
	Type      id.NotificationType
	Message   string
	ThreadID  *id.ThreadID
	Read      bool
	CreatedAt time.Time
}
