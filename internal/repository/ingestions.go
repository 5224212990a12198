package repository

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// IngestionRepository persists the write-once per-document markers that make
// re-runs idempotent.
type IngestionRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewIngestionRepository(db *mongo.Database, logger *slog.Logger) *IngestionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestionRepository{coll: db.Collection(ingestionsCollection), logger: logger}
}

// Exists reports whether a document with this file name was already ingested.
func (r *IngestionRepository) Exists(ctx context.Context, fileName string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"file_name": fileName})
	if err != nil {
		r.logger.Error("failed to check ingestion record", "file_name", fileName, "error", err)
		return false, err
	}
	return n > 0, nil
}

// Record writes the marker. Called once per document, after its candidates
// were processed.
func (r *IngestionRepository) Record(ctx context.Context, rec *entity.IngestionRecord) error {
	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		r.logger.Error("failed to write ingestion record", "file_name", rec.FileName, "error", err)
		return err
	}
	return nil
}

// Count reports how many documents were ever ingested.
func (r *IngestionRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}
