package sweepscheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"listingtrendgo/internal/services/trending"
)

// Stats are process-lifetime counters around the scheduled sweep. They
// reset on restart; nothing is persisted.
type Stats struct {
	LastRun           time.Time `json:"lastRun"`
	LastSuccessfulRun time.Time `json:"lastSuccessfulRun"`
	TotalRuns         int64     `json:"totalRuns"`
	SuccessfulRuns    int64     `json:"successfulRuns"`
	FailedRuns        int64     `json:"failedRuns"`
	ProductsUpdated   int64     `json:"productsUpdated"`
}

type sweeper interface {
	SweepAll(ctx context.Context) (trending.SweepResult, error)
}

// Scheduler drives the periodic bulk reconciliation on a cron schedule
// and owns the sweep stats.
type Scheduler struct {
	svc      sweeper
	schedule string
	cron     *cron.Cron
	startAt  time.Time

	mu    sync.Mutex
	stats Stats
}

func New(svc sweeper, schedule string) *Scheduler {
	return &Scheduler{svc: svc, schedule: schedule}
}

// Start registers the cron entry and begins firing sweeps. The returned
// error only reflects a bad schedule expression.
func (s *Scheduler) Start(ctx context.Context) error {
	s.startAt = time.Now()
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() { s.runOnce(ctx) })
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Schedule returns the configured cron expression.
func (s *Scheduler) Schedule() string { return s.schedule }

// Uptime is the time since Start.
func (s *Scheduler) Uptime() time.Duration { return time.Since(s.startAt) }

// Snapshot returns a copy of the counters for the health endpoint.
func (s *Scheduler) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()
	res, err := s.svc.SweepAll(ctx)
	if errors.Is(err, trending.ErrSweepInProgress) {
		// previous pass still holds the lease; not counted as a run
		zap.L().Warn("sweep.skipped_overlap")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.LastRun = started
	s.stats.TotalRuns++
	switch {
	case err != nil:
		s.stats.FailedRuns++
		zap.L().Error("sweep.failed", zap.Error(err))
	default:
		s.stats.SuccessfulRuns++
		s.stats.LastSuccessfulRun = started
		s.stats.ProductsUpdated += res.UpdatedCount
		zap.L().Info("sweep.done",
			zap.Int64("updated", res.UpdatedCount),
			zap.Int64("trending", res.TrendingCount),
			zap.Duration("took", time.Since(started)))
	}
}
