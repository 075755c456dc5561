// Package chunker provides a fixed-size text splitter with configurable
// overlap. Chunk boundaries and IDs are deterministic, so splitting the
// same document twice yields byte-identical chunk sets.
package chunker

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.Chunker = (*Splitter)(nil)

// chunkNamespace is the UUID namespace for deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("f6c2bf0a-2d47-44f1-97bd-3c8a0c1e5b21")

// Splitter splits document content into fixed-size chunks measured in
// characters (runes), with overlapping windows when configured.
type Splitter struct {
	chunkSize int
	overlap   int
}

// New creates a splitter. The chunk size must be positive and the
// overlap must be non-negative and smaller than the chunk size;
// anything else is a configuration error.
func New(chunkSize, overlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrConfig, overlap, chunkSize)
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}, nil
}

// Split returns the ordered chunks of the document's content. Empty
// content yields zero chunks; content shorter than the chunk size
// yields exactly one chunk spanning the whole text. Offsets are rune
// positions into the raw text, Start inclusive and End exclusive.
func (s *Splitter) Split(doc *domain.Document) ([]domain.Chunk, error) {
	if doc.Content == "" {
		return nil, nil
	}

	runes := []rune(doc.Content)
	total := len(runes)
	step := s.chunkSize - s.overlap

	chunks := make([]domain.Chunk, 0, total/step+1)
	position := 0

	for start := 0; start < total; start += step {
		end := start + s.chunkSize
		if end > total {
			end = total
		}

		chunks = append(chunks, domain.Chunk{
			ID:         ChunkID(doc.ID, start, end),
			DocumentID: doc.ID,
			Content:    string(runes[start:end]),
			Position:   position,
			Start:      start,
			End:        end,
		})
		position++

		if end == total {
			break
		}
	}

	return chunks, nil
}

// ChunkID derives the deterministic chunk identifier for a document ID
// and rune offset range.
func ChunkID(documentID string, start, end int) string {
	name := fmt.Sprintf("%s:%d:%d", documentID, start, end)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}
