package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/robostock/catalog-ingest/internal/entity"
	"github.com/robostock/catalog-ingest/internal/normalize"
	"github.com/robostock/catalog-ingest/internal/price"
)

// Outcome reports what an upsert did to the catalog.
type Outcome string

const (
	Inserted  Outcome = "inserted"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
)

// Merger decides whether a candidate is a new product or an update to an
// existing one, keyed by the normalized (brand, name) pair. Merges never
// overwrite stored values with absent ones.
type Merger struct {
	store  ProductStore
	logger *slog.Logger
}

func NewMerger(store ProductStore, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{store: store, logger: logger}
}

// Upsert inserts or merges one candidate. A candidate missing its mandatory
// name or brand fails validation here; the caller counts that as a
// candidate-level failure and moves on to the candidate's siblings.
func (m *Merger) Upsert(ctx context.Context, c entity.CandidateProduct, prov entity.SourceRef) (Outcome, uuid.UUID, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Brand) == "" {
		return "", uuid.Nil, fmt.Errorf("candidate missing mandatory fields: name=%q brand=%q: %w",
			c.Name, c.Brand, errInvalidCandidate)
	}

	// Model-supplied prices go through the same bounds check as the regex
	// fallback; out-of-range values are dropped, not stored.
	if c.Price != nil && !price.Valid(*c.Price) {
		m.logger.Warn("merger.price.out_of_range", "name", c.Name, "price", *c.Price)
		c.Price = nil
	}

	key := normalize.Candidate(c)
	existing, err := m.store.FindByKey(ctx, key.BrandNorm, key.NameNorm)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("lookup %s/%s: %w", key.BrandNorm, key.NameNorm, err)
	}

	now := time.Now().UTC()
	if existing == nil {
		rec := &entity.ProductRecord{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(c.Name),
			Brand:       strings.TrimSpace(c.Brand),
			ProductType: c.ProductType,
			SubType:     c.SubType,
			Price:       c.Price,
			SourceRefs:  []entity.SourceRef{prov},
			Raw:         rawContext(c),
			Norm:        key,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := m.store.Insert(ctx, rec); err != nil {
			return "", uuid.Nil, fmt.Errorf("insert %s/%s: %w", key.BrandNorm, key.NameNorm, err)
		}
		m.logger.Info("merger.inserted", "id", rec.ID, "brand", key.BrandNorm, "name", key.NameNorm)
		return Inserted, rec.ID, nil
	}

	set := map[string]any{
		"updated_at": now,
		"raw":        rawContext(c),
	}
	changed := false
	if c.ProductType != "" && c.ProductType != existing.ProductType {
		set["product_type"] = c.ProductType
		changed = true
	}
	if c.SubType != "" && c.SubType != existing.SubType {
		set["sub_type"] = c.SubType
		changed = true
	}
	if c.Price != nil && (existing.Price == nil || *existing.Price != *c.Price) {
		set["price"] = *c.Price
		changed = true
	}

	var appendRef *entity.SourceRef
	if !hasRef(existing.SourceRefs, prov) {
		appendRef = &prov
		changed = true
	}

	if err := m.store.Update(ctx, existing.ID, set, appendRef); err != nil {
		return "", uuid.Nil, fmt.Errorf("merge %s/%s: %w", key.BrandNorm, key.NameNorm, err)
	}
	if !changed {
		m.logger.Debug("merger.unchanged", "id", existing.ID, "brand", key.BrandNorm, "name", key.NameNorm)
		return Unchanged, existing.ID, nil
	}
	m.logger.Info("merger.updated", "id", existing.ID, "brand", key.BrandNorm, "name", key.NameNorm)
	return Updated, existing.ID, nil
}

func hasRef(refs []entity.SourceRef, ref entity.SourceRef) bool {
	for _, r := range refs {
		if r.Same(ref) {
			return true
		}
	}
	return false
}

// rawContext keeps the last-seen extraction context on the record for later
// diagnosis of bad merges.
func rawContext(c entity.CandidateProduct) map[string]any {
	raw := map[string]any{
		"name":  c.Name,
		"brand": c.Brand,
	}
	if c.ProductType != "" {
		raw["product_type"] = c.ProductType
	}
	if c.SubType != "" {
		raw["sub_type"] = c.SubType
	}
	if c.BOMLayer != "" {
		raw["bom_layer"] = c.BOMLayer
	}
	if c.VendorName != "" {
		raw["vendor_name"] = c.VendorName
	}
	if c.ComponentType != "" {
		raw["component_type"] = c.ComponentType
	}
	if c.Page != nil {
		raw["page"] = *c.Page
	}
	return raw
}
