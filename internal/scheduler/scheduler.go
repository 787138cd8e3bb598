package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/meeeeeooooowwwwwww/updates/internal/domain"
)

// Syncer defines the interface for sync operations.
type Syncer interface {
	Sync(ctx context.Context) (*domain.SyncStats, error)
}

// Scheduler triggers runs on a fixed interval and guarantees at most one
// run is active process-wide: when a tick fires while the previous run
// is still going, the old run's context is cancelled and the scheduler
// waits for it to finish before starting the newer one. The pipeline
// relies on this guarantee instead of internal locking.
type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	var cancelRun context.CancelFunc
	var runDone chan struct{}

	startRun := func() {
		runCtx, cancel := context.WithTimeout(ctx, s.interval)
		done := make(chan struct{})
		cancelRun, runDone = cancel, done

		go func() {
			defer close(done)
			defer cancel()
			if _, err := s.syncer.Sync(runCtx); err != nil {
				s.logger.Error("sync failed", "error", err)
			}
		}()
	}

	stopRun := func() {
		if cancelRun == nil {
			return
		}
		select {
		case <-runDone:
		default:
			s.logger.Warn("previous run still active, cancelling in favor of newer trigger")
			cancelRun()
			<-runDone
		}
		cancelRun, runDone = nil, nil
	}

	startRun()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			stopRun()
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			stopRun()
			startRun()
		}
	}
}
