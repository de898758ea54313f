// Package jobs runs background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pkordes/travel-desk/internal/service"
)

// Runner is one reconciliation pass. *service.Reconciler satisfies it.
type Runner interface {
	Run(ctx context.Context) (service.SyncReport, error)
}

// Scheduler runs a Runner once at start and then on a cron schedule, so
// vehicle and driver status follows the calendar even when no trip is
// edited on the day a trip starts or ends.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
	log     *slog.Logger
}

// NewScheduler constructs a Scheduler. timeout bounds each pass.
func NewScheduler(runner Runner, timeout time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		runner:  runner,
		timeout: timeout,
		log:     log,
	}
}

// Start registers spec (standard five-field cron syntax or a descriptor such
// as "@every 15m"), runs one pass immediately, and starts the schedule.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("jobs.Scheduler.Start: schedule %q: %w", spec, err)
	}
	s.RunOnce(ctx)
	s.cron.Start()
	s.log.Info("reconciliation scheduled", "schedule", spec)
	return nil
}

// RunOnce runs a single pass and logs the outcome.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	report, err := s.runner.Run(ctx)
	if err != nil {
		s.log.Error("reconciliation failed", "error", err)
		return
	}
	s.log.Info("reconciliation pass",
		"checked", report.Checked,
		"updated", report.Updated,
		"failed", len(report.Failed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Stop halts the schedule and waits for a running pass to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
