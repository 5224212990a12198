package entity

// SourceKind identifies which extraction path produced a document's text.
type SourceKind string

const (
	SourcePDFExtract  SourceKind = "pdf_extract"
	SourceURDFExtract SourceKind = "urdf_extract"
)

// SourceDocument is an opaque reference to one ingestible document: the file
// name the idempotency guard keys on plus the origin key understood by the
// text provider that will fetch it.
type SourceDocument struct {
	FileName  string
	OriginKey string
	FilePath  string
	Kind      SourceKind
}

// ExtractedDocument is the text derived from a source document. PageMap is
// ordered by page number but not necessarily contiguous; it may be empty for
// sources without page structure.
type ExtractedDocument struct {
	FullText string
	PageMap  []PageText
}

// PageText is one page's extracted text.
type PageText struct {
	Page int    `json:"page" bson:"page"`
	Text string `json:"text" bson:"text"`
}
