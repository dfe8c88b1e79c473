package mongodb

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// ListUnits returns every production unit of a farm, ordered by ID.
func (s *Store) ListUnits(ctx context.Context, farmID string) ([]models.ProductionUnit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.units.Find(ctx, bson.M{"farm_id": farmID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find units of farm %s: %w", farmID, err)
	}

	var units []models.ProductionUnit
	if err := cursor.All(ctx, &units); err != nil {
		return nil, fmt.Errorf("decode units of farm %s: %w", farmID, err)
	}
	return units, nil
}

// GetUnit returns one production unit.
func (s *Store) GetUnit(ctx context.Context, unitID string) (models.ProductionUnit, error) {
	var unit models.ProductionUnit
	err := s.units.FindOne(ctx, bson.M{"_id": unitID}).Decode(&unit)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ProductionUnit{}, fmt.Errorf("%w: %s", models.ErrUnitNotFound, unitID)
	}
	if err != nil {
		return models.ProductionUnit{}, fmt.Errorf("find unit %s: %w", unitID, err)
	}
	return unit, nil
}

// ListFarmIDs returns the distinct farms that own at least one unit.
func (s *Store) ListFarmIDs(ctx context.Context) ([]string, error) {
	values, err := s.units.Distinct(ctx, "farm_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list farm ids: %w", err)
	}

	farms := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok && id != "" {
			farms = append(farms, id)
		}
	}
	slices.Sort(farms)
	return farms, nil
}
