package notification

import (
	"context"
	"errors"
	"log/slog"

	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/sentinel"
)

// Service exposes a user's own notification inbox. Every operation is scoped
// to the requesting user; there is no cross-user read path.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) List(ctx context.Context, userID id.UserID) ([]Notification, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	out, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	return out, nil
}

func (s *Service) ListUnread(ctx context.Context, userID id.UserID) ([]Notification, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	out, err := s.store.ListUnreadByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list unread notifications")
	}
	return out, nil
}

// MarkRead flags one notification as read. A notification owned by someone
// else is indistinguishable from a missing one.
func (s *Service) MarkRead(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.store.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID id.UserID) (int, error) {
	if userID.IsNil() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	updated, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, userID id.UserID, notificationID id.NotificationID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := s.store.Delete(ctx, userID, notificationID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete notification")
	}
	s.logger.InfoContext(ctx, "notification deleted",
		"user_id", userID,
		"notification_id", notificationID,
	)
	return nil
}
