package mongodb

import (
	"context"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// SaveSnapshots appends snapshots to the history. Snapshots are never updated.
func (s *Store) SaveSnapshots(ctx context.Context, snapshots []models.MetricsSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	docs := make([]interface{}, len(snapshots))
	for i := range snapshots {
		docs[i] = snapshots[i]
	}

	if _, err := s.snapshots.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert snapshots: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit of the latest snapshots of a unit, oldest first.
func (s *Store) RecentSnapshots(ctx context.Context, unitID string, limit int) ([]models.MetricsSnapshot, error) {
	if limit <= 0 {
		return nil, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "taken_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.snapshots.Find(ctx, bson.M{"unit_id": unitID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find snapshots of unit %s: %w", unitID, err)
	}

	var history []models.MetricsSnapshot
	if err := cursor.All(ctx, &history); err != nil {
		return nil, fmt.Errorf("decode snapshots of unit %s: %w", unitID, err)
	}
	slices.Reverse(history)
	return history, nil
}
