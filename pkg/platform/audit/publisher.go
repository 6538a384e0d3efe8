package audit

import (
	"context"
	"time"
)

// Publisher captures structured audit events. It is append-only and uses the
// store for persistence so tests can swap sinks easily.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit stamps and appends an event. Category is always derived from the
// action so the eventCategories map stays the single source of truth.
func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	base.Category = AuditEvent(base.Action).Category()
	return p.store.Append(ctx, base)
}
