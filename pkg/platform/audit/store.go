package audit

import "context"

// Store is the audit sink contract. Append must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}
