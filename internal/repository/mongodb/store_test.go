package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

func TestUnits(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list units of a farm", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "aquaperf.units", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "T1"}, {Key: "farm_id", Value: "F1"}, {Key: "population", Value: 1000}, {Key: "status", Value: "active"}},
			bson.D{{Key: "_id", Value: "T2"}, {Key: "farm_id", Value: "F1"}, {Key: "population", Value: 0}, {Key: "status", Value: "empty"}},
		))

		units, err := store.ListUnits(context.Background(), "F1")
		require.NoError(mt, err)

		require.Len(mt, units, 2)
		assert.Equal(mt, "T1", units[0].ID)
		assert.Equal(mt, 1000, units[0].Population)
		assert.True(mt, units[0].IsActive())
		assert.Equal(mt, models.UnitStatusEmpty, units[1].Status)
	})

	mt.Run("unknown unit", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "aquaperf.units", mtest.FirstBatch))

		_, err := store.GetUnit(context.Background(), "missing")
		assert.ErrorIs(mt, err, models.ErrUnitNotFound)
	})

	mt.Run("distinct farms", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "values", Value: bson.A{"F2", "", "F1"}}))

		farms, err := store.ListFarmIDs(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []string{"F1", "F2"}, farms)
	})
}

func TestSnapshots(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("recent snapshots come back oldest first", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		newer := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
		older := newer.AddDate(0, 0, -1)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "aquaperf.snapshots", mtest.FirstBatch,
			bson.D{{Key: "unit_id", Value: "T1"}, {Key: "taken_at", Value: newer}, {Key: "average_mass_kg", Value: 0.4}},
			bson.D{{Key: "unit_id", Value: "T1"}, {Key: "taken_at", Value: older}, {Key: "average_mass_kg", Value: 0.3}},
		))

		history, err := store.RecentSnapshots(context.Background(), "T1", 2)
		require.NoError(mt, err)

		require.Len(mt, history, 2)
		assert.True(mt, history[0].TakenAt.Equal(older))
		assert.InDelta(mt, 0.4, history[1].AverageMassKg, 1e-9)
	})

	mt.Run("no limit reads nothing", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)

		history, err := store.RecentSnapshots(context.Background(), "T1", 0)
		require.NoError(mt, err)
		assert.Empty(mt, history)
	})
}

func TestSeveritiesFrom(t *testing.T) {
	assert.Equal(t, bson.A{models.SeverityHigh, models.SeverityCritical}, severitiesFrom(models.SeverityHigh))
	assert.Len(t, severitiesFrom(models.SeverityLow), 4)
	assert.Equal(t, bson.A{models.SeverityCritical}, severitiesFrom(models.SeverityCritical))
}

func TestAlerts(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("only new alerts are stored", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		alerts := []models.PredictiveAlert{
			{ID: "a1", UnitID: "T1", Rule: models.RuleMortalityRisk, Status: models.AlertActive},
			{ID: "a2", UnitID: "T1", Rule: models.RuleWaterQuality, Status: models.AlertActive},
		}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 2},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 1}, {Key: "_id", Value: "a2"}}}},
		), mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		stored, err := store.SaveAlerts(context.Background(), alerts)
		require.NoError(mt, err)

		require.Len(mt, stored, 1)
		assert.Equal(mt, "a2", stored[0].ID)
	})

	mt.Run("escalated alert replaces the open one", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		escalated := models.PredictiveAlert{
			ID:       "a3",
			UnitID:   "T1",
			Rule:     models.RuleMortalityRisk,
			Severity: models.SeverityCritical,
			Status:   models.AlertActive,
		}
		// The open medium alert does not match the critical filter, so the
		// new alert is inserted and the medium one is resolved.
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "a3"}}}},
		), mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		stored, err := store.SaveAlerts(context.Background(), []models.PredictiveAlert{escalated})
		require.NoError(mt, err)

		require.Len(mt, stored, 1)
		assert.Equal(mt, models.SeverityCritical, stored[0].Severity)
	})

	mt.Run("failing to resolve replaced alerts is reported", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		escalated := models.PredictiveAlert{ID: "a4", UnitID: "T1", Rule: models.RuleCostOverrun, Severity: models.SeverityHigh}
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: "a4"}}}},
		), mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value", Name: "BadValue"}))

		stored, err := store.SaveAlerts(context.Background(), []models.PredictiveAlert{escalated})
		require.Error(mt, err)
		assert.Len(mt, stored, 1)
	})

	mt.Run("find unknown alert", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "aquaperf.alerts", mtest.FirstBatch))

		_, err := store.FindAlert(context.Background(), "nope")
		assert.ErrorIs(mt, err, models.ErrAlertNotFound)
	})

	mt.Run("update after a concurrent change", func(mt *mtest.T) {
		store := NewStore(mt.DB, nil)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		alert := models.PredictiveAlert{ID: "a1", Status: models.AlertAcknowledged}
		err := store.UpdateAlert(context.Background(), alert, models.AlertActive)
		assert.ErrorIs(mt, err, models.ErrInvalidTransition)
	})
}
