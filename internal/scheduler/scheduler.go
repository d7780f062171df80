package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultJobTimeout bounds a single job run.
const DefaultJobTimeout = 5 * time.Minute

// OrphanCleaner removes user activities whose catalog activity is gone.
type OrphanCleaner interface {
	CleanupOrphans(ctx context.Context) (int, error)
}

// Scheduler runs background maintenance jobs on cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

// New creates a scheduler. Jobs are added before Start.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger}))),
		logger:  logger,
		timeout: DefaultJobTimeout,
	}
}

// AddOrphanCleanup schedules the orphan sweep. schedule accepts standard cron
// expressions and descriptors such as "@daily".
func (s *Scheduler) AddOrphanCleanup(schedule string, cleaner OrphanCleaner) error {
	if _, err := s.cron.AddFunc(schedule, s.orphanCleanupJob(cleaner)); err != nil {
		return fmt.Errorf("schedule orphan cleanup %q: %w", schedule, err)
	}
	s.logger.Info("orphan cleanup scheduled", "schedule", schedule)
	return nil
}

func (s *Scheduler) orphanCleanupJob(cleaner OrphanCleaner) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		started := time.Now()
		n, err := cleaner.CleanupOrphans(ctx)
		if err != nil {
			s.logger.Error("orphan cleanup failed", "error", err)
			return
		}
		s.logger.Info("orphan cleanup finished", "deleted", n, "duration", time.Since(started))
	}
}

// Start runs the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
