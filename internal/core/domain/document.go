package domain

import (
	"time"

	"github.com/google/uuid"
)

// documentNamespace is the UUID namespace for content-derived document IDs.
var documentNamespace = uuid.MustParse("7a1c3c62-9c1e-4dc0-bb6a-55f4b1a0d9e4")

// SourceKind identifies the kind of source a document came from.
// The core is agnostic to how the text was obtained; the kind is
// metadata used for filtering and display only.
type SourceKind string

// Recognised source kinds.
const (
	// SourceWeb is content extracted from a web page.
	SourceWeb SourceKind = "web"

	// SourcePDF is text extracted from a PDF file.
	SourcePDF SourceKind = "pdf"

	// SourceNote is a locally authored note.
	SourceNote SourceKind = "note"

	// SourceTrend is content gathered from a search-trend lookup.
	SourceTrend SourceKind = "trend"

	// SourceOther is any source not covered by the kinds above.
	SourceOther SourceKind = "other"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceWeb, SourcePDF, SourceNote, SourceTrend, SourceOther:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Document is the canonical representation of an ingested piece of
// content. Documents are immutable once ingested; re-ingesting under
// the same ID replaces the document and all derived chunks and vectors.
type Document struct {
	// ID is the stable identifier, caller-supplied or derived from
	// the content via DeriveDocumentID.
	ID string

	// Kind is the source kind (web, pdf, note, trend, other).
	Kind SourceKind

	// Title is the human-readable title.
	Title string

	// Origin is the original locator (file path, URL, topic name).
	Origin string

	// Content is the full raw text handed to the core by a producer.
	Content string

	// IngestedAt is when the document was ingested.
	IngestedAt time.Time

	// Metadata contains arbitrary producer-supplied key-value pairs.
	Metadata map[string]any
}

// Chunk is a bounded span of a document's text, the unit of retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk. Chunk IDs are
	// deterministic for a given document ID and offset range.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Content is the text of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Start and End are the rune offset range into the document's
	// raw text, with Start inclusive and End exclusive.
	Start int
	End   int

	// Embedding is the vector representation for similarity search.
	// All embeddings inside one index share a single dimensionality.
	Embedding []float32
}

// DeriveDocumentID returns a stable identifier for a document based on
// its origin and content. The same origin and content always derive
// the same ID, which makes content-addressed re-ingestion idempotent.
func DeriveDocumentID(origin, content string) string {
	return uuid.NewSHA1(documentNamespace, []byte(origin+"\x00"+content)).String()
}
