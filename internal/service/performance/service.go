package performance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/aquaperf/internal/analytics"
	"github.com/mamadbah2/aquaperf/internal/config"
	"github.com/mamadbah2/aquaperf/internal/domain/models"
	"github.com/mamadbah2/aquaperf/pkg/cache"
	"github.com/mamadbah2/aquaperf/pkg/metrics"
)

// UnitStore lists production units.
type UnitStore interface {
	ListUnits(ctx context.Context, farmID string) ([]models.ProductionUnit, error)
	ListFarmIDs(ctx context.Context) ([]string, error)
}

// RecordSource reads the raw records of several units in one pass.
type RecordSource interface {
	FarmRecords(ctx context.Context, unitIDs []string, start, end time.Time) (map[string]models.UnitRecords, error)
}

// SnapshotStore keeps the snapshot history.
type SnapshotStore interface {
	RecentSnapshots(ctx context.Context, unitID string, limit int) ([]models.MetricsSnapshot, error)
	SaveSnapshots(ctx context.Context, snapshots []models.MetricsSnapshot) error
}

// AlertStore persists alerts and returns the ones that were new.
type AlertStore interface {
	SaveAlerts(ctx context.Context, alerts []models.PredictiveAlert) ([]models.PredictiveAlert, error)
}

// ReportCache caches the last report of each farm.
type ReportCache interface {
	GetJSON(ctx context.Context, key string, dst any) error
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Notifier delivers alerts to people.
type Notifier interface {
	NotifyAlerts(ctx context.Context, alerts []models.PredictiveAlert) error
}

// Deps groups the collaborators of the service. Cache, Notifier and Metrics
// are optional.
type Deps struct {
	Units     UnitStore
	Records   RecordSource
	Snapshots SnapshotStore
	Alerts    AlertStore
	Cache     ReportCache
	Notifier  Notifier
	Metrics   *metrics.Metrics
}

// Options tunes a batch.
type Options struct {
	Params      analytics.Params
	HistorySize int
	Concurrency int
	CacheTTL    time.Duration
}

// ParamsFromConfig maps engine configuration to engine parameters.
func ParamsFromConfig(cfg config.EngineConfig) analytics.Params {
	return analytics.Params{
		TargetFCR:        cfg.TargetFCR,
		TargetMassKg:     cfg.TargetMassKg,
		JuvenileMassKg:   cfg.JuvenileMassKg,
		FeedUnitPrice:    cfg.FeedUnitPrice,
		SalePricePerKg:   cfg.SalePricePerKg,
		RecentWindowDays: cfg.RecentWindowDays,
	}
}

// OptionsFromConfig builds batch options from configuration.
func OptionsFromConfig(engine config.EngineConfig, redis config.RedisConfig) Options {
	return Options{
		Params:      ParamsFromConfig(engine),
		HistorySize: engine.HistorySize,
		Concurrency: engine.FetchConcurrency,
		CacheTTL:    redis.ReportTTL,
	}
}

// Service evaluates farms: it gathers inputs for the analytics engine and
// stores, caches and forwards what the engine produces.
type Service struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// NewService wires a performance service.
func NewService(deps Deps, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Service{deps: deps, opts: opts, logger: logger}
}

func reportKey(farmID string) string {
	return "report:" + farmID
}

// RunBatch evaluates every unit of a farm. A unit whose inputs cannot be
// loaded is reported in Failures and the rest of the batch continues. The
// returned error is set when units cannot be listed, when the context ends,
// or when results cannot be persisted; in the last two cases the report is
// still returned.
func (s *Service) RunBatch(ctx context.Context, farmID string, now time.Time) (models.BatchReport, error) {
	started := time.Now()
	log := s.logger.With(zap.String("farm_id", farmID))

	units, err := s.deps.Units.ListUnits(ctx, farmID)
	if err != nil {
		s.deps.Metrics.RecordBatch("failed", time.Since(started), 0, 0)
		return models.BatchReport{}, fmt.Errorf("list units of farm %s: %w", farmID, err)
	}

	inputs, loadErrs := s.loadUnits(ctx, units, now)

	loaded := make([]analytics.UnitInput, 0, len(units))
	var failures []models.UnitFailure
	for i, unit := range units {
		if loadErrs[i] != nil {
			log.Warn("unit skipped", zap.String("unit_id", unit.ID), zap.Error(loadErrs[i]))
			failures = append(failures, models.UnitFailure{UnitID: unit.ID, Error: loadErrs[i].Error()})
			continue
		}
		loaded = append(loaded, inputs[i])
	}

	report := analytics.EvaluateBatch(farmID, loaded, s.opts.Params, now)
	report.Failures = failures

	for _, a := range report.Alerts {
		s.deps.Metrics.RecordAlert(string(a.Rule), string(a.Severity))
	}

	persistErr := s.persist(ctx, log, report)
	s.cacheReport(ctx, log, report)

	outcome := batchOutcome(len(units), len(report.Failures))
	s.deps.Metrics.RecordBatch(outcome, time.Since(started), len(loaded), len(report.Failures))
	log.Info("batch completed",
		zap.String("outcome", outcome),
		zap.Int("units", len(units)),
		zap.Int("failures", len(report.Failures)),
		zap.Int("alerts", len(report.Alerts)),
		zap.Duration("duration", time.Since(started)))

	return report, errors.Join(ctx.Err(), persistErr)
}

// loadUnits reads the records of every unit at once, then the snapshot
// history of each unit concurrently. When the records cannot be read every
// unit fails with the same error.
func (s *Service) loadUnits(ctx context.Context, units []models.ProductionUnit, now time.Time) ([]analytics.UnitInput, []error) {
	inputs := make([]analytics.UnitInput, len(units))
	errs := make([]error, len(units))

	ids := make([]string, len(units))
	for i, unit := range units {
		ids[i] = unit.ID
	}

	records, err := s.deps.Records.FarmRecords(ctx, ids, s.opts.Params.WindowStart(now), now)
	if err != nil {
		err = fmt.Errorf("load records: %w", err)
		for i := range errs {
			errs[i] = err
		}
		return inputs, errs
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, unit := range units {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			history, err := s.deps.Snapshots.RecentSnapshots(ctx, unit.ID, s.opts.HistorySize)
			if err != nil {
				errs[i] = fmt.Errorf("load snapshot history: %w", err)
				return nil
			}
			inputs[i] = analytics.UnitInput{Unit: unit, Records: records[unit.ID], History: history}
			return nil
		})
	}
	_ = g.Wait()

	return inputs, errs
}

// persist stores snapshots and alerts, then notifies about alerts that were
// not already open.
func (s *Service) persist(ctx context.Context, log *zap.Logger, report models.BatchReport) error {
	var errs []error

	if err := s.deps.Snapshots.SaveSnapshots(ctx, report.Snapshots); err != nil {
		log.Error("failed to save snapshots", zap.Error(err))
		errs = append(errs, err)
	}

	fresh, err := s.deps.Alerts.SaveAlerts(ctx, report.Alerts)
	if err != nil {
		log.Error("failed to save alerts", zap.Error(err))
		errs = append(errs, err)
	}

	if s.deps.Notifier != nil && len(fresh) > 0 {
		if err := s.deps.Notifier.NotifyAlerts(ctx, fresh); err != nil {
			log.Warn("alert notification failed", zap.Error(err))
		}
	}

	return errors.Join(errs...)
}

// cacheReport caches complete reports only, so a degraded batch is retried
// on the next request.
func (s *Service) cacheReport(ctx context.Context, log *zap.Logger, report models.BatchReport) {
	if s.deps.Cache == nil {
		return
	}
	if len(report.Failures) > 0 {
		log.Debug("degraded report not cached", zap.Int("failures", len(report.Failures)))
		return
	}
	if err := s.deps.Cache.SetJSON(ctx, reportKey(report.FarmID), report, s.opts.CacheTTL); err != nil {
		log.Warn("failed to cache report", zap.Error(err))
	}
}

func batchOutcome(units, failures int) string {
	switch {
	case failures == 0:
		return "ok"
	case failures < units:
		return "partial"
	default:
		return "failed"
	}
}

// InvalidateReport drops the cached report of a farm so the next Report
// runs a fresh batch.
func (s *Service) InvalidateReport(ctx context.Context, farmID string) error {
	if s.deps.Cache == nil {
		return nil
	}
	if err := s.deps.Cache.Delete(ctx, reportKey(farmID)); err != nil {
		return fmt.Errorf("invalidate report of farm %s: %w", farmID, err)
	}
	return nil
}

// Report returns the cached report of a farm, running a batch on a miss or
// when refresh is set.
func (s *Service) Report(ctx context.Context, farmID string, refresh bool, now time.Time) (models.BatchReport, error) {
	if s.deps.Cache != nil && !refresh {
		var cached models.BatchReport
		err := s.deps.Cache.GetJSON(ctx, reportKey(farmID), &cached)
		switch {
		case err == nil:
			s.deps.Metrics.RecordCache(true)
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			s.deps.Metrics.RecordCache(false)
		default:
			s.logger.Warn("report cache read failed", zap.String("farm_id", farmID), zap.Error(err))
		}
	}
	return s.RunBatch(ctx, farmID, now)
}

// RunAll evaluates every farm concurrently. A failing farm does not stop the
// others; the returned error joins every farm error.
func (s *Service) RunAll(ctx context.Context, now time.Time) ([]models.BatchReport, error) {
	farms, err := s.deps.Units.ListFarmIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list farms: %w", err)
	}

	reports := make([]models.BatchReport, len(farms))
	farmErrs := make([]error, len(farms))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, farmID := range farms {
		g.Go(func() error {
			report, err := s.RunBatch(ctx, farmID, now)
			reports[i] = report
			if err != nil {
				farmErrs[i] = fmt.Errorf("farm %s: %w", farmID, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return reports, errors.Join(farmErrs...)
}
