package audit

import (
	"context"
	"log/slog"
	"time"
)

// AsyncPublisher queues events for a Worker instead of writing inline. When
// the inbox is full the event is dropped and counted; audit is best-effort.
type AsyncPublisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewAsyncPublisher(buffer int, logger *slog.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 1024
	}
	return &AsyncPublisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the receive side for wiring a Worker.
func (p *AsyncPublisher) Inbox() <-chan Event {
	return p.inbox
}

// Emit stamps and enqueues an event without blocking the caller.
func (p *AsyncPublisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	base.Category = AuditEvent(base.Action).Category()

	select {
	case p.inbox <- base:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", base.Action,
		)
	}
	return nil
}
