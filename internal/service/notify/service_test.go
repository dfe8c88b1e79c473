package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

type sentMessage struct {
	to, body string
}

type fakeSender struct {
	sent []sentMessage
	fail map[string]bool
}

func (f *fakeSender) SendText(_ context.Context, to, body string) (string, error) {
	if f.fail[body] {
		return "", errors.New("rate limited")
	}
	f.sent = append(f.sent, sentMessage{to: to, body: body})
	return "wamid", nil
}

type fakePhraser struct {
	err error
}

func (f fakePhraser) PhraseAlert(_ context.Context, alert models.PredictiveAlert) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "phrased " + alert.ID, nil
}

func alert(id string, severity models.Severity) models.PredictiveAlert {
	return models.PredictiveAlert{
		ID:        id,
		UnitID:    "T1",
		Severity:  severity,
		Title:     "Mortality risk",
		Message:   "Mortality is rising.",
		Timeframe: "7 days",
		Actions:   []models.RecommendedAction{{Code: "inspect_stock", Text: "Inspect the stock"}},
	}
}

func TestNotifyAlerts(t *testing.T) {
	t.Run("only high and critical alerts are sent", func(t *testing.T) {
		sender := &fakeSender{}
		svc := NewService(sender, nil, "+224620000000", nil, nil)

		err := svc.NotifyAlerts(context.Background(), []models.PredictiveAlert{
			alert("a1", models.SeverityLow),
			alert("a2", models.SeverityHigh),
			alert("a3", models.SeverityMedium),
			alert("a4", models.SeverityCritical),
		})
		require.NoError(t, err)

		require.Len(t, sender.sent, 2)
		assert.Equal(t, "+224620000000", sender.sent[0].to)
		assert.Contains(t, sender.sent[0].body, "[HIGH] Mortality risk (unit T1)")
		assert.Contains(t, sender.sent[1].body, "[CRITICAL]")
	})

	t.Run("phrased text is used when available", func(t *testing.T) {
		sender := &fakeSender{}
		svc := NewService(sender, fakePhraser{}, "+224", nil, nil)

		require.NoError(t, svc.NotifyAlerts(context.Background(), []models.PredictiveAlert{alert("a1", models.SeverityHigh)}))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "phrased a1", sender.sent[0].body)
	})

	t.Run("phrasing failure falls back to the template", func(t *testing.T) {
		sender := &fakeSender{}
		svc := NewService(sender, fakePhraser{err: errors.New("timeout")}, "+224", nil, nil)

		require.NoError(t, svc.NotifyAlerts(context.Background(), []models.PredictiveAlert{alert("a1", models.SeverityHigh)}))

		require.Len(t, sender.sent, 1)
		assert.Equal(t, Format(alert("a1", models.SeverityHigh)), sender.sent[0].body)
	})

	t.Run("one failed delivery does not stop the others", func(t *testing.T) {
		failing := alert("a1", models.SeverityCritical)
		sender := &fakeSender{fail: map[string]bool{Format(failing): true}}
		svc := NewService(sender, nil, "+224", nil, nil)

		err := svc.NotifyAlerts(context.Background(), []models.PredictiveAlert{failing, alert("a2", models.SeverityHigh)})

		assert.ErrorContains(t, err, "notify alert a1")
		assert.Len(t, sender.sent, 1)
	})
}

func TestFormat(t *testing.T) {
	a := alert("a1", models.SeverityCritical)
	a.EstimatedImpact = 88.2

	assert.Equal(t, "[CRITICAL] Mortality risk (unit T1)\nMortality is rising.\nTimeframe: 7 days\nEstimated impact: 88.20\n- Inspect the stock", Format(a))
}
