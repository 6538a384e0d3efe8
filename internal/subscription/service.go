package subscription

import (
	"context"
	"errors"
	"log/slog"

	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/requestcontext"
)

// ThreadChecker reports whether a thread exists. Implemented by the thread
// service so subscriptions never attach to deleted or unknown threads.
type ThreadChecker interface {
	ThreadExists(ctx context.Context, threadID id.ThreadID) (bool, error)
}

// Service enforces subscription semantics over the raw store.
type Service struct {
	store   Store
	threads ThreadChecker
	logger  *slog.Logger
}

func NewService(store Store, threads ThreadChecker, logger *slog.Logger) *Service {
	return &Service{store: store, threads: threads, logger: logger}
}

// Subscribe registers interest in a thread. Subscribing twice is a conflict so
// callers can distinguish "newly subscribed" from "was already subscribed".
func (s *Service) Subscribe(ctx context.Context, userID id.UserID, threadID id.ThreadID) (*Subscription, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if threadID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "thread id is required")
	}

	exists, err := s.threads.ThreadExists(ctx, threadID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify thread")
	}
	if !exists {
		return nil, dErrors.New(dErrors.CodeNotFound, "thread not found")
	}

	sub := Subscription{
		UserID:    userID,
		ThreadID:  threadID,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Add(ctx, sub); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "already subscribed to this thread")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save subscription")
	}

	s.logger.InfoContext(ctx, "subscription created",
		"user_id", userID,
		"thread_id", threadID,
	)
	return &sub, nil
}

// Unsubscribe removes a subscription. Removing one that does not exist is not
// found rather than a silent no-op.
func (s *Service) Unsubscribe(ctx context.Context, userID id.UserID, threadID id.ThreadID) error {
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if threadID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "thread id is required")
	}

	if err := s.store.Remove(ctx, userID, threadID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "not subscribed to this thread")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove subscription")
	}

	s.logger.InfoContext(ctx, "subscription removed",
		"user_id", userID,
		"thread_id", threadID,
	)
	return nil
}

// SubscribersOf returns the subscriber ids of a thread for fan-out.
func (s *Service) SubscribersOf(ctx context.Context, threadID id.ThreadID) ([]id.UserID, error) {
	subscribers, err := s.store.ListByThread(ctx, threadID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subscribers")
	}
	return subscribers, nil
}

// ListForUser returns the user's own subscriptions.
func (s *Service) ListForUser(ctx context.Context, userID id.UserID) ([]Subscription, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	subs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list subscriptions")
	}
	return subs, nil
}

// RemoveAllForThread drops every subscription of a thread. Called from the
// thread deletion cascade, inside its transaction when one is in the context.
func (s *Service) RemoveAllForThread(ctx context.Context, threadID id.ThreadID) error {
	if err := s.store.RemoveAllForThread(ctx, threadID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove thread subscriptions")
	}
	return nil
}
