package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/config"
)

const (
	unitsCollection     = "units"
	snapshotsCollection = "snapshots"
	alertsCollection    = "alerts"
)

// Connect opens and pings a MongoDB client.
func Connect(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// Store persists production units, snapshot history and alerts.
type Store struct {
	units     *mongo.Collection
	snapshots *mongo.Collection
	alerts    *mongo.Collection
	logger    *zap.Logger
}

// NewStore builds a store on top of the provided database.
func NewStore(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		units:     db.Collection(unitsCollection),
		snapshots: db.Collection(snapshotsCollection),
		alerts:    db.Collection(alertsCollection),
		logger:    logger,
	}
}

// EnsureIndexes creates the indexes backing the store queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.units, mongo.IndexModel{Keys: bson.D{{Key: "farm_id", Value: 1}}}},
		{s.snapshots, mongo.IndexModel{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "taken_at", Value: -1}}}},
		{s.alerts, mongo.IndexModel{Keys: bson.D{{Key: "farm_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}}}},
		{s.alerts, mongo.IndexModel{Keys: bson.D{{Key: "unit_id", Value: 1}, {Key: "rule", Value: 1}, {Key: "status", Value: 1}}}},
	}

	for _, idx := range indexes {
		name, err := idx.coll.Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
		s.logger.Debug("index ready", zap.String("collection", idx.coll.Name()), zap.String("index", name))
	}
	return nil
}
