package driven

import "github.com/arkive-labs/arkive-cli/internal/core/domain"

// Chunker splits a document's content into retrievable chunks.
//
// Implementations must be deterministic: identical content and
// configuration always yield identical chunk boundaries, ordering, and
// IDs. No state is retained between calls.
type Chunker interface {
	// Split returns the ordered chunks of the document's content.
	// Empty content yields zero chunks; content shorter than the
	// configured chunk size yields exactly one chunk spanning it all.
	Split(doc *domain.Document) ([]domain.Chunk, error)
}
