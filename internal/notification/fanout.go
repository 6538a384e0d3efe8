package notification

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"campusforum/internal/notification/metrics"
	id "campusforum/pkg/domain"
	"campusforum/pkg/requestcontext"
)

// SubscriberSource yields the subscriber ids of a thread.
type SubscriberSource interface {
	SubscribersOf(ctx context.Context, threadID id.ThreadID) ([]id.UserID, error)
}

// fanOutConcurrency bounds parallel store writes during a single fan-out.
const fanOutConcurrency = 8

// FanOut delivers thread events to every subscriber except the user who
// triggered them. One failing delivery never blocks the rest.
type FanOut struct {
	subscribers SubscriberSource
	store       Store
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func NewFanOut(subscribers SubscriberSource, store Store, logger *slog.Logger, m *metrics.Metrics) *FanOut {
	return &FanOut{
		subscribers: subscribers,
		store:       store,
		logger:      logger,
		metrics:     m,
	}
}

// NotifyNewReply creates one NEW_REPLY notification per subscriber of the
// thread, skipping the reply's author. Returns the number delivered.
func (f *FanOut) NotifyNewReply(ctx context.Context, threadID id.ThreadID, threadTitle string, authorID id.UserID) (int, error) {
	subscribers, err := f.subscribers.SubscribersOf(ctx, threadID)
	if err != nil {
		return 0, err
	}

	message := "New reply in thread: " + threadTitle
	now := requestcontext.Now(ctx)

	var g errgroup.Group
	g.SetLimit(fanOutConcurrency)

	delivered := make(chan struct{}, len(subscribers))
	for _, subscriberID := range subscribers {
		if subscriberID == authorID {
			continue
		}
		g.Go(func() error {
			n := Notification{
				ID:        id.NewNotificationID(),
				UserID:    subscriberID,
				Type:      id.NotificationNewReply,
				Message:   message,
				ThreadID:  &threadID,
				CreatedAt: now,
			}
			if err := f.store.Create(ctx, n); err != nil {
				f.metrics.IncrementDelivery(id.NotificationNewReply.String(), "failure")
				f.logger.ErrorContext(ctx, "notification delivery failed",
					"thread_id", threadID,
					"subscriber_id", subscriberID,
					"error", err,
				)
				return nil
			}
			f.metrics.IncrementDelivery(id.NotificationNewReply.String(), "success")
			delivered <- struct{}{}
			return nil
		})
	}
	_ = g.Wait()
	close(delivered)

	count := len(delivered)
	f.logger.InfoContext(ctx, "fan-out completed",
		"thread_id", threadID,
		"subscribers", len(subscribers),
		"delivered", count,
	)
	return count, nil
}

// NotifyUser delivers a single account-level notification, used for events
// such as bans that target one user rather than a thread's subscribers.
func (f *FanOut) NotifyUser(ctx context.Context, userID id.UserID, notificationType id.NotificationType, message string) error {
	n := Notification{
		ID:        id.NewNotificationID(),
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := f.store.Create(ctx, n); err != nil {
		f.metrics.IncrementDelivery(notificationType.String(), "failure")
		return err
	}
	f.metrics.IncrementDelivery(notificationType.String(), "success")
	return nil
}
