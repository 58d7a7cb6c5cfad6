// Package scheduler 负责后台定时任务。
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Pruner drops stale per-day cache entries. quota.Guard implements it.
type Pruner interface {
	Prune(now time.Time) int
}

// Scheduler wraps a gocron scheduler running the maintenance jobs.
type Scheduler struct {
	cron  gocron.Scheduler
	prune gocron.Job
}

// New registers the daily prune job shortly after UTC midnight. Call Start to
// begin running jobs.
func New(pruner Pruner, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	job, err := cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(0, 0, 5))),
		gocron.NewTask(func() {
			removed := pruner.Prune(time.Now())
			logger.Info("pruned quota cache", zap.Int("removed", removed))
		}),
		gocron.WithName("quota-prune"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = cron.Shutdown()
		return nil, fmt.Errorf("register quota-prune job: %w", err)
	}

	return &Scheduler{cron: cron, prune: job}, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// RunPruneNow triggers the prune job immediately.
func (s *Scheduler) RunPruneNow() error { return s.prune.RunNow() }

// NextPrune reports when the prune job runs next.
func (s *Scheduler) NextPrune() (time.Time, error) { return s.prune.NextRun() }

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error { return s.cron.Shutdown() }
