package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
	"github.com/mamadbah2/aquaperf/pkg/metrics"
)

// Sender delivers a text message to a recipient.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Phraser rewrites an alert into farmer-friendly text.
type Phraser interface {
	PhraseAlert(ctx context.Context, alert models.PredictiveAlert) (string, error)
}

// Service pushes high and critical alerts to the farm manager over WhatsApp.
type Service struct {
	sender    Sender
	phraser   Phraser
	recipient string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService wires the notifier. phraser and m may be nil.
func NewService(sender Sender, phraser Phraser, recipient string, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sender: sender, phraser: phraser, recipient: recipient, metrics: m, logger: logger}
}

// NotifyAlerts sends one message per alert of severity high or above. Each
// alert is attempted; the returned error joins every delivery failure.
func (s *Service) NotifyAlerts(ctx context.Context, alerts []models.PredictiveAlert) error {
	var errs []error
	for _, alert := range alerts {
		if alert.Severity.Rank() < models.SeverityHigh.Rank() {
			continue
		}

		body := s.body(ctx, alert)
		id, err := s.sender.SendText(ctx, s.recipient, body)
		s.metrics.RecordNotification(err == nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("notify alert %s: %w", alert.ID, err))
			continue
		}

		s.logger.Info("alert notified",
			zap.String("alert_id", alert.ID),
			zap.String("unit_id", alert.UnitID),
			zap.String("severity", string(alert.Severity)),
			zap.String("message_id", id))
	}
	return errors.Join(errs...)
}

func (s *Service) body(ctx context.Context, alert models.PredictiveAlert) string {
	if s.phraser != nil {
		text, err := s.phraser.PhraseAlert(ctx, alert)
		if err == nil {
			return text
		}
		s.logger.Warn("alert phrasing failed, using template", zap.String("alert_id", alert.ID), zap.Error(err))
	}
	return Format(alert)
}

// Format renders an alert as a plain text message.
func Format(alert models.PredictiveAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s (unit %s)\n", strings.ToUpper(string(alert.Severity)), alert.Title, alert.UnitID)
	b.WriteString(alert.Message)
	if alert.Timeframe != "" {
		fmt.Fprintf(&b, "\nTimeframe: %s", alert.Timeframe)
	}
	if alert.EstimatedImpact > 0 {
		fmt.Fprintf(&b, "\nEstimated impact: %.2f", alert.EstimatedImpact)
	}
	for _, action := range alert.Actions {
		fmt.Fprintf(&b, "\n- %s", action.Text)
	}
	return b.String()
}
