package retention

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"campusforum/internal/retention/metrics"
	"campusforum/pkg/platform/audit"
	"campusforum/pkg/requestcontext"
)

// ThreadPurger removes threads created before a cutoff, cascading their
// replies and subscriptions. Implemented by the thread service.
type ThreadPurger interface {
	PurgeCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// AuditPublisher records completed sweeps.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Sweeper executes a single retention pass. Scheduling lives in Scheduler;
// keeping Run standalone makes the policy testable without timers.
type Sweeper struct {
	purger  ThreadPurger
	auditor AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

func NewSweeper(purger ThreadPurger, auditor AuditPublisher, logger *slog.Logger, m *metrics.Metrics) *Sweeper {
	return &Sweeper{
		purger:  purger,
		auditor: auditor,
		logger:  logger,
		metrics: m,
		tracer:  otel.Tracer("campusforum/retention"),
	}
}

// Run deletes threads older than thresholdDays. A threshold of zero or less
// disables retention entirely; nothing is deleted.
func (s *Sweeper) Run(ctx context.Context, thresholdDays int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "retention.Sweep",
		trace.WithAttributes(attribute.Int("retention.threshold_days", thresholdDays)),
	)
	defer span.End()

	if thresholdDays <= 0 {
		s.logger.DebugContext(ctx, "retention disabled, skipping sweep",
			"threshold_days", thresholdDays,
		)
		return 0, nil
	}

	start := time.Now()
	cutoff := requestcontext.Now(ctx).AddDate(0, 0, -thresholdDays)

	purged, err := s.purger.PurgeCreatedBefore(ctx, cutoff)
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "retention sweep failed",
			"cutoff", cutoff,
			"purged", purged,
			"error", err,
		)
		return purged, err
	}

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("retention.purged", purged))
	s.metrics.ObserveSweep(purged, elapsed.Seconds())
	s.logger.InfoContext(ctx, "retention sweep completed",
		"cutoff", cutoff,
		"purged", purged,
		"duration_ms", elapsed.Milliseconds(),
	)

	if s.auditor != nil && purged > 0 {
		event := audit.Event{
			Action:    string(audit.EventRetentionSweep),
			SubjectID: strconv.Itoa(purged),
			Reason:    "threads older than " + strconv.Itoa(thresholdDays) + " days",
		}
		if err := s.auditor.Emit(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "failed to emit retention audit event", "error", err)
		}
	}
	return purged, nil
}
