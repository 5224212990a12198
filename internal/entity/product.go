package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProductRecord is the persisted catalog entry. Uniqueness is governed by
// (Norm.BrandNorm, Norm.NameNorm), not by ID. Records are created on the
// first match of a key and merged in place on every later match; the
// pipeline never deletes them.
type ProductRecord struct {
	ID          uuid.UUID      `json:"id" bson:"_id"`
	Name        string         `json:"name" bson:"name"`
	Brand       string         `json:"brand" bson:"brand"`
	ProductType string         `json:"product_type,omitempty" bson:"product_type,omitempty"`
	SubType     string         `json:"sub_type,omitempty" bson:"sub_type,omitempty"`
	Price       *float64       `json:"price,omitempty" bson:"price,omitempty"`
	SourceRefs  []SourceRef    `json:"source_refs" bson:"source_refs"`
	Raw         map[string]any `json:"raw,omitempty" bson:"raw,omitempty"`
	Assets      []string       `json:"assets,omitempty" bson:"assets,omitempty"`
	Norm        NormalizedKey  `json:"norm" bson:"norm"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// SourceRef is one append-only provenance entry linking a product back to the
// document it was found in.
type SourceRef struct {
	Source        SourceKind `json:"source" bson:"source"`
	Collection    string     `json:"collection" bson:"collection"`
	SourceID      string     `json:"source_id" bson:"source_id"`
	Page          *int       `json:"page,omitempty" bson:"page,omitempty"`
	FileName      string     `json:"file_name" bson:"file_name"`
	FilePath      string     `json:"file_path,omitempty" bson:"file_path,omitempty"`
	ComponentType string     `json:"component_type,omitempty" bson:"component_type,omitempty"`
}

// Same reports structural equality for provenance dedup: two refs are the
// same entry when source, collection, source id and file name all match.
func (r SourceRef) Same(o SourceRef) bool {
	return r.Source == o.Source &&
		r.Collection == o.Collection &&
		r.SourceID == o.SourceID &&
		r.FileName == o.FileName
}
