// Package app wires configuration, storage, clients and services into a
// runnable application shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/config"
	"github.com/mamadbah2/aquaperf/internal/repository/mongodb"
	"github.com/mamadbah2/aquaperf/internal/repository/sheets"
	"github.com/mamadbah2/aquaperf/internal/server/handlers"
	"github.com/mamadbah2/aquaperf/internal/server/router"
	alertsvc "github.com/mamadbah2/aquaperf/internal/service/alerts"
	"github.com/mamadbah2/aquaperf/internal/service/notify"
	"github.com/mamadbah2/aquaperf/internal/service/performance"
	"github.com/mamadbah2/aquaperf/pkg/cache"
	"github.com/mamadbah2/aquaperf/pkg/clients/anthropic"
	"github.com/mamadbah2/aquaperf/pkg/clients/whatsapp"
	"github.com/mamadbah2/aquaperf/pkg/metrics"
)

// App holds the wired services.
type App struct {
	Performance *performance.Service
	Alerts      *alertsvc.Service
	Metrics     *metrics.Metrics

	mongo  *mongo.Client
	cache  *cache.Client
	logger *zap.Logger
}

// Build connects to every backing service and wires the application.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{logger: logger}

	sheetsRepo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("repo.sheets"))
	if err != nil {
		return nil, fmt.Errorf("init sheets repository: %w", err)
	}
	records := sheets.NewRecordSource(sheetsRepo, logger.Named("repo.sheets"))

	a.mongo, err = mongodb.Connect(ctx, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("init mongodb: %w", err)
	}
	store := mongodb.NewStore(a.mongo.Database(cfg.MongoDB.DBName), logger.Named("repo.mongo"))
	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to ensure mongodb indexes", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.Metrics = metrics.New(registry)

	deps := performance.Deps{
		Units:     store,
		Records:   records,
		Snapshots: store,
		Alerts:    store,
		Metrics:   a.Metrics,
	}

	if cfg.Redis.URL != "" {
		a.cache, err = cache.NewClient(ctx, cfg.Redis.URL, "aquaperf:")
		if err != nil {
			logger.Warn("report cache disabled", zap.Error(err))
		} else {
			deps.Cache = a.cache
			logger.Info("report cache enabled", zap.Duration("ttl", cfg.Redis.ReportTTL))
		}
	}

	if cfg.WhatsApp.AccessToken != "" {
		var phraser notify.Phraser
		if cfg.AI.AnthropicKey != "" {
			phraser = anthropic.NewClient(cfg.AI.AnthropicKey, "")
			logger.Info("anthropic alert phrasing enabled")
		}
		deps.Notifier = notify.NewService(whatsapp.NewClient(cfg.WhatsApp), phraser, cfg.WhatsApp.NotifyTo, a.Metrics, logger.Named("svc.notify"))
		logger.Info("whatsapp alert notifications enabled")
	} else {
		logger.Warn("whatsapp token missing, alert notifications disabled")
	}

	a.Performance = performance.NewService(deps, performance.OptionsFromConfig(cfg.Engine, cfg.Redis), logger.Named("svc.performance"))
	a.Alerts = alertsvc.NewService(store, a.Performance, logger.Named("svc.alerts"))

	return a, nil
}

// Router builds the HTTP engine for the application.
func (a *App) Router() *gin.Engine {
	return router.New(router.Handlers{
		Performance: handlers.NewPerformanceHandler(a.Performance, a.logger.Named("handlers.performance")),
		Alerts:      handlers.NewAlertHandler(a.Alerts, a.logger.Named("handlers.alerts")),
	}, a.Metrics, a.logger.Named("router"))
}

// Close releases the connections opened by Build.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if a.mongo != nil {
		if err := a.mongo.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close mongodb: %w", err))
		}
	}
	return errors.Join(errs...)
}
