package entity

import "time"

// IngestionRecord is the write-once per-document marker. Its existence for a
// file name is the idempotency guard that makes the orchestrator skip a
// document on re-runs.
type IngestionRecord struct {
	FileName             string     `json:"file_name" bson:"file_name"`
	SourceKey            string     `json:"source_key" bson:"source_key"`
	Source               SourceKind `json:"source" bson:"source"`
	ExtractedText        string     `json:"extracted_text" bson:"extracted_text"`
	PageMap              []PageText `json:"page_map,omitempty" bson:"page_map,omitempty"`
	MatchedProductsCount int        `json:"matched_products_count" bson:"matched_products_count"`
	CreatedAt            time.Time  `json:"created_at" bson:"created_at"`
}
