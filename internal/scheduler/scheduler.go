package scheduler

import (
	"context"
	"log/slog"
	"time"

	"notifeed/internal/domain"
)

// Poller runs one poll cycle over all feeds.
type Poller interface {
	Poll(ctx context.Context) (*domain.PollStats, error)
}

// IntervalSource provides the current poll interval. It is consulted
// again before every sleep so operator changes apply on the next
// cycle without a restart.
type IntervalSource interface {
	PollInterval(ctx context.Context, fallback time.Duration) (time.Duration, error)
}

type Scheduler struct {
	poller       Poller
	intervals    IntervalSource
	fallback     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger
}

func NewScheduler(poller Poller, intervals IntervalSource, fallback, cycleTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		poller:       poller,
		intervals:    intervals,
		fallback:     fallback,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

// Start polls immediately and then keeps polling until ctx is
// cancelled, sleeping the configured interval between cycles.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started")

	for {
		s.runCycle(ctx)

		interval, err := s.intervals.PollInterval(ctx, s.fallback)
		if err != nil {
			s.logger.Error("failed to read poll interval", "error", err)
			interval = s.fallback
		}
		s.logger.Debug("sleeping until next cycle", "interval", interval)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	cycleCtx := ctx
	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()
	}

	if _, err := s.poller.Poll(cycleCtx); err != nil && ctx.Err() == nil {
		s.logger.Error("poll cycle failed", "error", err)
	}
}
