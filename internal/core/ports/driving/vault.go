package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// VaultService is the lifecycle surface of the shared vault instance:
// one explicit context object owning the document store and vector
// index, initialised on start and flushed on stop.
type VaultService interface {
	IngestService
	QueryService

	// Status reports the index state and document/chunk counts.
	Status(ctx context.Context) (*domain.Status, error)

	// Rebuild re-derives the whole index from the document store and
	// atomically swaps it in.
	Rebuild(ctx context.Context) error

	// Save persists a snapshot of the index and document metadata.
	Save(ctx context.Context) error

	// Close flushes and releases all held resources.
	Close() error
}
