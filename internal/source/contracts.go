// Package source defines the collaborator ports the pipeline pulls documents
// through, plus the adapters for structured-file sources.
package source

import (
	"context"

	"github.com/robostock/catalog-ingest/internal/entity"
)

// Lister enumerates the ingestible documents of one origin.
type Lister interface {
	List(ctx context.Context) ([]entity.SourceDocument, error)
}

// TextProvider derives the extracted text for one source document. For
// OCR-backed origins this hides a long-running asynchronous job; for
// structured files it is a synchronous parse-and-flatten.
type TextProvider interface {
	FetchText(ctx context.Context, doc entity.SourceDocument) (entity.ExtractedDocument, error)
}
