package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// ProductStore is the persistence port the merger writes through. The
// backing store is document-oriented and serializes individual writes but
// offers no multi-document transactions; FindByKey followed by Insert or
// Update is therefore not atomic.
type ProductStore interface {
	// FindByKey returns the record whose normalized key matches, or
	// (nil, nil) when no such record exists.
	FindByKey(ctx context.Context, brandNorm, nameNorm string) (*entity.ProductRecord, error)
	Insert(ctx context.Context, rec *entity.ProductRecord) error
	// Update applies a field set and optionally appends one provenance ref.
	Update(ctx context.Context, id uuid.UUID, set map[string]any, appendRef *entity.SourceRef) error
}
