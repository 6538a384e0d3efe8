package authz

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campusforum/internal/authz/metrics"
	dErrors "campusforum/pkg/domain-errors"
)

// Engine wraps the pure rule chain with observability and domain-error
// translation. Services fetch ownership from their stores and hand the
// resulting Resource to the engine; evaluation itself does no I/O.
type Engine struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewEngine constructs the authorization engine.
func NewEngine(logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("campusforum/authz"),
	}
}

// Authorize evaluates the rule chain and records the outcome.
func (e *Engine) Authorize(ctx context.Context, actor Actor, op Operation, resource Resource) Decision {
	_, span := e.tracer.Start(ctx, "authz.Authorize",
		trace.WithAttributes(
			attribute.String("authz.operation", string(op)),
			attribute.String("authz.actor_role", actor.Role.String()),
			attribute.String("authz.resource_kind", string(resource.Kind)),
		),
	)
	defer span.End()

	decision := Decide(actor, op, resource)

	outcome := "allow"
	if !decision.Allowed {
		outcome = "deny"
		span.SetAttributes(attribute.String("authz.deny_reason", decision.Reason))
		if e.logger != nil {
			e.logger.DebugContext(ctx, "authorization denied",
				"operation", op,
				"actor_id", actor.ID,
				"actor_role", actor.Role,
				"reason", decision.Reason,
			)
		}
	}
	e.metrics.IncrementDecision(string(op), outcome)

	return decision
}

// Require evaluates like Authorize but converts a deny into a Forbidden
// domain error carrying the deny reason.
func (e *Engine) Require(ctx context.Context, actor Actor, op Operation, resource Resource) error {
	decision := e.Authorize(ctx, actor, op, resource)
	if !decision.Allowed {
		return dErrors.New(dErrors.CodeForbidden, decision.Reason)
	}
	return nil
}
