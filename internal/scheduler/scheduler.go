package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/config"
	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// BatchRunner evaluates every farm.
type BatchRunner interface {
	RunAll(ctx context.Context, now time.Time) ([]models.BatchReport, error)
}

// Scheduler runs the nightly evaluation of all farms.
type Scheduler struct {
	cron    *cron.Cron
	runner  BatchRunner
	cfg     config.ReportingConfig
	now     func() time.Time
	logger  *zap.Logger
	entryID cron.EntryID
}

// NewScheduler creates a scheduler in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, runner BatchRunner, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	// Standard 5-field cron expressions; a run still in progress makes the next tick a no-op.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	s := &Scheduler{
		cron:   c,
		runner: runner,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}

	s.entryID, err = c.AddFunc(cfg.CronSchedule, s.runNightly)
	if err != nil {
		return nil, fmt.Errorf("schedule nightly batch %q: %w", cfg.CronSchedule, err)
	}
	return s, nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.cfg.CronSchedule), zap.Time("next_run", s.Next()))
}

// Stop stops the scheduler and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// Next returns the next planned run. It is zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) runNightly() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BatchTimeout)
	defer cancel()

	started := s.now()
	s.logger.Info("nightly batch started")

	reports, err := s.runner.RunAll(ctx, started)
	if err != nil {
		s.logger.Error("nightly batch finished with errors", zap.Int("farms", len(reports)), zap.Error(err))
		return
	}
	s.logger.Info("nightly batch finished", zap.Int("farms", len(reports)), zap.Duration("duration", time.Since(started)))
}
