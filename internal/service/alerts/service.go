package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// ErrUnknownStatus is returned when alerts are filtered by an unknown status.
var ErrUnknownStatus = errors.New("unknown alert status")

// Store persists alerts.
type Store interface {
	FindAlert(ctx context.Context, alertID string) (models.PredictiveAlert, error)
	UpdateAlert(ctx context.Context, alert models.PredictiveAlert, from models.AlertStatus) error
	ListAlerts(ctx context.Context, farmID string, status models.AlertStatus) ([]models.PredictiveAlert, error)
}

// ReportInvalidator drops the cached report of a farm.
type ReportInvalidator interface {
	InvalidateReport(ctx context.Context, farmID string) error
}

// Service drives the alert lifecycle: active, acknowledged, resolved.
type Service struct {
	store   Store
	reports ReportInvalidator
	now     func() time.Time
	logger  *zap.Logger
}

// NewService wires the alert service. reports may be nil.
func NewService(store Store, reports ReportInvalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, reports: reports, now: time.Now, logger: logger}
}

// Acknowledge marks an active alert as seen.
func (s *Service) Acknowledge(ctx context.Context, alertID string) (models.PredictiveAlert, error) {
	return s.transition(ctx, alertID, (*models.PredictiveAlert).Acknowledge)
}

// Resolve closes an acknowledged alert.
func (s *Service) Resolve(ctx context.Context, alertID string) (models.PredictiveAlert, error) {
	return s.transition(ctx, alertID, (*models.PredictiveAlert).Resolve)
}

func (s *Service) transition(ctx context.Context, alertID string, apply func(*models.PredictiveAlert, time.Time) error) (models.PredictiveAlert, error) {
	alert, err := s.store.FindAlert(ctx, alertID)
	if err != nil {
		return models.PredictiveAlert{}, err
	}

	from := alert.Status
	if err := apply(&alert, s.now().UTC()); err != nil {
		return models.PredictiveAlert{}, fmt.Errorf("alert %s: %w", alertID, err)
	}

	if err := s.store.UpdateAlert(ctx, alert, from); err != nil {
		return models.PredictiveAlert{}, err
	}

	s.logger.Info("alert status changed",
		zap.String("alert_id", alertID),
		zap.String("from", string(from)),
		zap.String("to", string(alert.Status)))

	// A cached report still lists the alert under its old status.
	if s.reports != nil {
		if err := s.reports.InvalidateReport(ctx, alert.FarmID); err != nil {
			s.logger.Warn("failed to invalidate cached report", zap.String("farm_id", alert.FarmID), zap.Error(err))
		}
	}
	return alert, nil
}

// List returns the alerts of a farm, optionally filtered by status.
func (s *Service) List(ctx context.Context, farmID, status string) ([]models.PredictiveAlert, error) {
	filter := models.AlertStatus(status)
	switch filter {
	case "", models.AlertActive, models.AlertAcknowledged, models.AlertResolved:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	return s.store.ListAlerts(ctx, farmID, filter)
}
