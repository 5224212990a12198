package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// productDoc is the persisted shape of a product record. IDs are stored as
// strings so documents stay readable in shell queries.
type productDoc struct {
	ID          string               `bson:"_id"`
	Name        string               `bson:"name"`
	Brand       string               `bson:"brand"`
	ProductType string               `bson:"product_type,omitempty"`
	SubType     string               `bson:"sub_type,omitempty"`
	Price       *float64             `bson:"price,omitempty"`
	SourceRefs  []entity.SourceRef   `bson:"source_refs"`
	Raw         map[string]any       `bson:"raw,omitempty"`
	Assets      []string             `bson:"assets,omitempty"`
	Norm        entity.NormalizedKey `bson:"norm"`
	CreatedAt   time.Time            `bson:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at"`
}

// ProductRepository implements catalog.ProductStore on the products
// collection and adds the read paths the export service uses.
type ProductRepository struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func NewProductRepository(db *mongo.Database, logger *slog.Logger) *ProductRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductRepository{coll: db.Collection(productsCollection), logger: logger}
}

// FindByKey looks up the record for a normalized (brand, name) pair.
// Returns (nil, nil) when absent.
func (r *ProductRepository) FindByKey(ctx context.Context, brandNorm, nameNorm string) (*entity.ProductRecord, error) {
	var doc productDoc
	err := r.coll.FindOne(ctx, bson.M{
		"norm.brand_norm": brandNorm,
		"norm.name_norm":  nameNorm,
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to look up product", "brand_norm", brandNorm, "name_norm", nameNorm, "error", err)
		return nil, err
	}
	return toRecord(&doc)
}

func (r *ProductRepository) Insert(ctx context.Context, rec *entity.ProductRecord) error {
	if _, err := r.coll.InsertOne(ctx, fromRecord(rec)); err != nil {
		r.logger.Error("failed to insert product", "id", rec.ID, "error", err)
		return err
	}
	return nil
}

// Update applies a field set and optionally appends one provenance ref in a
// single updateOne call.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, set map[string]any, appendRef *entity.SourceRef) error {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if appendRef != nil {
		update["$push"] = bson.M{"source_refs": *appendRef}
	}
	if len(update) == 0 {
		return nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, update)
	if err != nil {
		r.logger.Error("failed to update product", "id", id, "error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

// List returns every product ordered by brand then name.
func (r *ProductRepository) List(ctx context.Context) ([]*entity.ProductRecord, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, listOrder())
	if err != nil {
		r.logger.Error("failed to list products", "error", err)
		return nil, err
	}
	defer func() {
		if err := cur.Close(ctx); err != nil {
			r.logger.Warn("product cursor close error", "error", err)
		}
	}()

	var out []*entity.ProductRecord
	for cur.Next(ctx) {
		var doc productDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		rec, err := toRecord(&doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, cur.Err()
}

// Count reports the catalog size (used by dbhealth and run summaries).
func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func listOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{
		{Key: "norm.brand_norm", Value: 1},
		{Key: "norm.name_norm", Value: 1},
	})
}

func fromRecord(rec *entity.ProductRecord) *productDoc {
	return &productDoc{
		ID:          rec.ID.String(),
		Name:        rec.Name,
		Brand:       rec.Brand,
		ProductType: rec.ProductType,
		SubType:     rec.SubType,
		Price:       rec.Price,
		SourceRefs:  rec.SourceRefs,
		Raw:         rec.Raw,
		Assets:      rec.Assets,
		Norm:        rec.Norm,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

func toRecord(doc *productDoc) (*entity.ProductRecord, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("product %q has a malformed id: %w", doc.ID, err)
	}
	return &entity.ProductRecord{
		ID:          id,
		Name:        doc.Name,
		Brand:       doc.Brand,
		ProductType: doc.ProductType,
		SubType:     doc.SubType,
		Price:       doc.Price,
		SourceRefs:  doc.SourceRefs,
		Raw:         doc.Raw,
		Assets:      doc.Assets,
		Norm:        doc.Norm,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}
