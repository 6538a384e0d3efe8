package notification

import (
	"context"

	id "campusforum/pkg/domain"
)

// Store persists notifications. All read and mutate operations are scoped by
// owner; acting on another user's notification surfaces sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Notification, error)
	ListUnreadByUser(ctx context.Context, userID id.UserID) ([]Notification, error)
	MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
	MarkAllRead(ctx context.Context, userID id.UserID) (int, error)
	Delete(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error
}
