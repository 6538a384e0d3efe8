package worker

import (
	"context"
	"log/slog"

	audit "campusforum/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Moderation
// requests enqueue and move on; a slow or failing sink never blocks them.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled. Append failures are logged and
// the event dropped; the audit trail is best-effort, the forum is not.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
