package driven

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// DocumentStore persists canonical documents and chunks, independent
// of the vector index. In the Ready state the index's entries are in
// one-to-one correspondence with the chunks tracked here.
type DocumentStore interface {
	// SaveDocument stores or replaces a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores the chunk set of a document, replacing any
	// previous set.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks of a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Counts returns the number of documents and chunks stored.
	Counts(ctx context.Context) (documents, chunks int, err error)

	// Close releases resources.
	Close() error
}
