package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/npcforge/dialogue-engine/pkg/memory"
)

const memoriesCollection = "game_memories"

// MongoStore implements MemoryStore on a MongoDB collection, one document
// per memory record.
type MongoStore struct {
	client   *mongo.Client
	database *mongo.Database
	logger   *slog.Logger
}

var _ MemoryStore = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri string, databaseName string, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect: %v", ErrStore, err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("%w: ping failed: %v", ErrStore, err)
	}

	store := &MongoStore{
		client:   client,
		database: client.Database(databaseName),
		logger:   logger,
	}

	if err := store.ensureIndexes(connectCtx); err != nil {
		return nil, err
	}

	logger.Info("Connected to MongoDB", "database", databaseName)
	return store, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	coll := s.database.Collection(memoriesCollection)
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "player_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "memory_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to create indexes: %v", ErrStore, err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: ping failed: %v", ErrStore, err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("Failed to close MongoDB connection", "error", err)
		return err
	}
	return nil
}

// Create persists one record. The record's id and timestamp are assigned
// by the caller; the store never rewrites them.
func (s *MongoStore) Create(ctx context.Context, rec memory.Record) (memory.Record, error) {
	coll := s.database.Collection(memoriesCollection)
	if _, err := coll.InsertOne(ctx, rec); err != nil {
		s.logger.Error("Failed to insert memory", "memory_id", rec.ID, "player_id", rec.PlayerID, "error", err)
		return memory.Record{}, fmt.Errorf("%w: failed to insert memory: %v", ErrStore, err)
	}
	return rec, nil
}

// FindByPlayer returns the player's memories sorted by creation time, which
// matches insertion order for append-only records.
func (s *MongoStore) FindByPlayer(ctx context.Context, playerID string) ([]memory.Record, error) {
	coll := s.database.Collection(memoriesCollection)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := coll.Find(ctx, bson.D{{Key: "player_id", Value: playerID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query memories: %v", ErrStore, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var records []memory.Record
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("%w: failed to decode memories: %v", ErrStore, err)
	}
	return records, nil
}
