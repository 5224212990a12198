package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	productsCollection   = "products"
	ingestionsCollection = "ingestions"
)

type Config struct {
	URI         string
	Database    string
	DialTimeout time.Duration
}

// Open connects to the document store and verifies the connection with a
// ping. Connection failure is startup-fatal for callers.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*mongo.Client, *mongo.Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to document store", "database", cfg.Database)

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		logger.Error("failed to connect to document store", "error", err)
		return nil, nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("document store ping failed", "error", err)
		return nil, nil, err
	}

	db := client.Database(cfg.Database)
	logger.Info("successfully connected to document store")
	return client, db, nil
}

// Close disconnects gracefully.
func Close(ctx context.Context, client *mongo.Client, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing document store connection")
	if client != nil {
		if err := client.Disconnect(ctx); err != nil {
			logger.Error("failed to disconnect from document store", "error", err)
		}
	}
}

// HealthCheck pings the primary to catch URI issues early.
func HealthCheck(ctx context.Context, client *mongo.Client, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging document store")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return client.Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the dedup and idempotency indexes. The unique index
// on the normalized product key makes the merger's lookup-then-write race
// surface as an insert error instead of a silent duplicate record.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	_, err := db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "norm.brand_norm", Value: 1},
			{Key: "norm.name_norm", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("norm_key_unique"),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(ingestionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "file_name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("file_name_unique"),
	})
	if err != nil {
		return err
	}

	logger.Info("document store indexes ensured")
	return nil
}
