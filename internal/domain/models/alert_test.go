package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertLifecycle(t *testing.T) {
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	t.Run("active to acknowledged to resolved", func(t *testing.T) {
		alert := PredictiveAlert{Status: AlertActive}

		require.NoError(t, alert.Acknowledge(now))
		assert.Equal(t, AlertAcknowledged, alert.Status)
		require.NotNil(t, alert.AcknowledgedAt)
		assert.Equal(t, now, *alert.AcknowledgedAt)

		require.NoError(t, alert.Resolve(now.Add(time.Hour)))
		assert.Equal(t, AlertResolved, alert.Status)
		require.NotNil(t, alert.ResolvedAt)
	})

	t.Run("cannot resolve an active alert", func(t *testing.T) {
		alert := PredictiveAlert{Status: AlertActive}

		err := alert.Resolve(now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, AlertActive, alert.Status)
		assert.Nil(t, alert.ResolvedAt)
	})

	t.Run("no transitions back", func(t *testing.T) {
		resolved := PredictiveAlert{Status: AlertResolved}
		assert.ErrorIs(t, resolved.Acknowledge(now), ErrInvalidTransition)
		assert.ErrorIs(t, resolved.Resolve(now), ErrInvalidTransition)

		acknowledged := PredictiveAlert{Status: AlertAcknowledged}
		assert.ErrorIs(t, acknowledged.Acknowledge(now), ErrInvalidTransition)
	})
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Zero(t, Severity("unknown").Rank())
}
