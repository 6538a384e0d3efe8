package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SchedulerStatus reports what the scheduler is doing right now.
type SchedulerStatus string

const (
	StatusIdle    SchedulerStatus = "idle"
	StatusRunning SchedulerStatus = "running"
)

// Scheduler triggers sweeps on a fixed interval. The threshold is re-read
// from settings before every sweep so admin changes apply without a restart.
// A TryLock guard keeps a slow sweep from overlapping the next tick.
type Scheduler struct {
	sweeper  *Sweeper
	settings SettingsProvider
	interval time.Duration
	logger   *slog.Logger

	running sync.Mutex
	mu      sync.RWMutex
	status  SchedulerStatus
}

func NewScheduler(sweeper *Sweeper, settings SettingsProvider, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		settings: settings,
		interval: interval,
		logger:   logger,
		status:   StatusIdle,
	}
}

// Status returns the current scheduler state.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Scheduler) setStatus(status SchedulerStatus) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Run sweeps once immediately, then on every interval tick until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single sweep unless one is already in flight.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if !s.running.TryLock() {
		s.logger.WarnContext(ctx, "previous retention sweep still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	s.setStatus(StatusRunning)
	defer s.setStatus(StatusIdle)

	days, err := s.settings.AutoDeleteDays(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read retention settings", "error", err)
		return
	}
	if _, err := s.sweeper.Run(ctx, days); err != nil {
		// Already logged by the sweeper; the next tick retries.
		return
	}
}
