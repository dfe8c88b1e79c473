package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

var openStatuses = bson.A{models.AlertActive, models.AlertAcknowledged}

var severities = []models.Severity{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}

// severitiesFrom lists s and every severity above it.
func severitiesFrom(s models.Severity) bson.A {
	out := bson.A{}
	for _, sev := range severities {
		if sev.Rank() >= s.Rank() {
			out = append(out, sev)
		}
	}
	return out
}

// SaveAlerts stores alerts unless the same unit already has an open alert for
// the same rule at the same or a higher severity. An escalated alert is
// stored and the lower-severity open alerts it replaces are resolved. It
// returns the alerts that were actually stored, together with any error
// from resolving replaced alerts.
func (s *Store) SaveAlerts(ctx context.Context, alerts []models.PredictiveAlert) ([]models.PredictiveAlert, error) {
	if len(alerts) == 0 {
		return nil, nil
	}

	writes := make([]mongo.WriteModel, len(alerts))
	for i, a := range alerts {
		filter := bson.M{
			"unit_id":  a.UnitID,
			"rule":     a.Rule,
			"status":   bson.M{"$in": openStatuses},
			"severity": bson.M{"$in": severitiesFrom(a.Severity)},
		}
		writes[i] = mongo.NewUpdateOneModel().
			SetFilter(filter).
			SetUpdate(bson.M{"$setOnInsert": a}).
			SetUpsert(true)
	}

	res, err := s.alerts.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return nil, fmt.Errorf("failed to store alerts: %w", err)
	}

	stored := make([]models.PredictiveAlert, 0, len(res.UpsertedIDs))
	for i, a := range alerts {
		if _, ok := res.UpsertedIDs[int64(i)]; ok {
			stored = append(stored, a)
		}
	}
	s.logger.Debug("alerts stored",
		zap.Int("generated", len(alerts)),
		zap.Int("stored", len(stored)),
	)

	if err := s.supersede(ctx, stored); err != nil {
		return stored, err
	}
	return stored, nil
}

// supersede resolves the open alerts of the same unit and rule that a newly
// stored alert replaces.
func (s *Store) supersede(ctx context.Context, stored []models.PredictiveAlert) error {
	if len(stored) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, len(stored))
	for i, a := range stored {
		writes[i] = mongo.NewUpdateManyModel().
			SetFilter(bson.M{
				"_id":     bson.M{"$ne": a.ID},
				"unit_id": a.UnitID,
				"rule":    a.Rule,
				"status":  bson.M{"$in": openStatuses},
			}).
			SetUpdate(bson.M{"$set": bson.M{"status": models.AlertResolved, "resolved_at": a.CreatedAt}})
	}

	res, err := s.alerts.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to resolve superseded alerts: %w", err)
	}
	if res.ModifiedCount > 0 {
		s.logger.Info("escalated alerts replaced open ones", zap.Int64("resolved", res.ModifiedCount))
	}
	return nil
}

// FindAlert loads one alert by ID.
func (s *Store) FindAlert(ctx context.Context, alertID string) (models.PredictiveAlert, error) {
	var alert models.PredictiveAlert
	err := s.alerts.FindOne(ctx, bson.M{"_id": alertID}).Decode(&alert)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PredictiveAlert{}, fmt.Errorf("%w: %s", models.ErrAlertNotFound, alertID)
	}
	if err != nil {
		return models.PredictiveAlert{}, fmt.Errorf("find alert %s: %w", alertID, err)
	}
	return alert, nil
}

// UpdateAlert replaces a stored alert if it is still in status from. A
// concurrent change of status is reported as an invalid transition.
func (s *Store) UpdateAlert(ctx context.Context, alert models.PredictiveAlert, from models.AlertStatus) error {
	res, err := s.alerts.ReplaceOne(ctx, bson.M{"_id": alert.ID, "status": from}, alert)
	if err != nil {
		return fmt.Errorf("update alert %s: %w", alert.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: alert %s is no longer %s", models.ErrInvalidTransition, alert.ID, from)
	}
	return nil
}

// ListAlerts returns the alerts of a farm, newest first. An empty status
// returns every status.
func (s *Store) ListAlerts(ctx context.Context, farmID string, status models.AlertStatus) ([]models.PredictiveAlert, error) {
	filter := bson.M{"farm_id": farmID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.alerts.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find alerts of farm %s: %w", farmID, err)
	}

	var alerts []models.PredictiveAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("decode alerts of farm %s: %w", farmID, err)
	}
	return alerts, nil
}
