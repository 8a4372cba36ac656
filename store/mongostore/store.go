// Package mongostore is the Mongo-backed budget.Store (C6): an append-only
// usage collection (usage_logs by default) with a $match+$group aggregation for window
// stats, mirroring the original implementation's motor-based accounting.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/quotapilot/gateway/types"
)

// Store persists usage rows in a single Mongo collection.
type Store struct {
	col    *mongo.Collection
	logger *zap.Logger
}

// aggregateRow is the shape of the single document $group produces.
type aggregateRow struct {
	Requests int64 `bson:"requests"`
	Tokens   int64 `bson:"tokens"`
}

// Connect dials Mongo, selects database/collection, and ensures the indexes
// the window aggregation relies on. It blocks until the initial connection
// check succeeds or timeout elapses.
func Connect(ctx context.Context, uri, database, collection string, timeout time.Duration, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	col := client.Database(database).Collection(collection)
	s := &Store{col: col, logger: logger.With(zap.String("component", "mongostore"))}

	if err := s.ensureIndexes(connectCtx); err != nil {
		logger.Warn("failed to ensure mongo indexes", zap.Error(err))
	}

	return s, nil
}

// NewFromCollection wraps an already-connected collection, for tests and
// callers that manage the mongo.Client lifecycle themselves.
func NewFromCollection(col *mongo.Collection, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{col: col, logger: logger.With(zap.String("component", "mongostore"))}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "provider", Value: 1}, {Key: "model", Value: 1}, {Key: "ts", Value: -1}},
			Options: options.Index().SetName("provider_model_ts_v1"),
		},
		{
			Keys:    bson.D{{Key: "ts", Value: -1}},
			Options: options.Index().SetName("ts_desc_v1"),
		},
	})
	return err
}

// Insert appends one immutable usage row.
func (s *Store) Insert(ctx context.Context, rec types.UsageRecord) error {
	_, err := s.col.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

// Aggregate runs the $match+$group pipeline for (provider, model, ts >= since).
func (s *Store) Aggregate(ctx context.Context, provider, model string, since time.Time) (types.WindowStats, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "provider", Value: provider},
			{Key: "model", Value: model},
			{Key: "ts", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "requests", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "tokens", Value: bson.D{{Key: "$sum", Value: "$total_tokens"}}},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return types.WindowStats{}, fmt.Errorf("aggregate usage window: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []aggregateRow
	if err := cursor.All(ctx, &rows); err != nil {
		return types.WindowStats{}, fmt.Errorf("decode aggregate result: %w", err)
	}
	if len(rows) == 0 {
		return types.WindowStats{}, nil
	}
	return types.WindowStats{Requests: rows[0].Requests, Tokens: rows[0].Tokens}, nil
}

// Close disconnects the underlying Mongo client.
func (s *Store) Close(ctx context.Context) error {
	return s.col.Database().Client().Disconnect(ctx)
}
