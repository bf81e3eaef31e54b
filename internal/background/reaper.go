package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const reapTimeout = 30 * time.Second

// StaleEngagementStore fails pending engagements older than a cutoff
type StaleEngagementStore interface {
	FailStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// EngagementReaper periodically fails engagements that never got an
// outcome from the automation subsystem.
type EngagementReaper struct {
	store      StaleEngagementStore
	logger     *slog.Logger
	interval   time.Duration
	staleAfter time.Duration
	now        func() time.Time
	stopCh     chan struct{}
	stopOnce   sync.Once
}

// NewEngagementReaper creates a new reaper
func NewEngagementReaper(
	store StaleEngagementStore,
	logger *slog.Logger,
	interval time.Duration,
	staleAfter time.Duration,
) *EngagementReaper {
	return &EngagementReaper{
		store:      store,
		logger:     logger,
		interval:   interval,
		staleAfter: staleAfter,
		now:        time.Now,
		stopCh:     make(chan struct{}),
	}
}

// Start runs the reaper until ctx is cancelled or Stop is called
func (er *EngagementReaper) Start(ctx context.Context) {
	ticker := time.NewTicker(er.interval)
	defer ticker.Stop()

	// Run immediately on startup
	er.reap(ctx)

	for {
		select {
		case <-ticker.C:
			er.reap(ctx)
		case <-er.stopCh:
			er.logger.Info("engagement reaper stopped")
			return
		case <-ctx.Done():
			er.logger.Info("engagement reaper context cancelled")
			return
		}
	}
}

func (er *EngagementReaper) reap(ctx context.Context) {
	reapCtx, cancel := context.WithTimeout(ctx, reapTimeout)
	defer cancel()

	cutoff := er.now().Add(-er.staleAfter)
	failed, err := er.store.FailStale(reapCtx, cutoff)
	if err != nil {
		er.logger.Error("failed to reap stale engagements", slog.Any("error", err))
		return
	}

	if failed > 0 {
		er.logger.Info("stale engagements marked failed",
			slog.Int64("count", failed),
			slog.Time("cutoff", cutoff))
	}
}

// Stop signals the reaper to stop. Safe to call more than once.
func (er *EngagementReaper) Stop() {
	er.stopOnce.Do(func() { close(er.stopCh) })
}
