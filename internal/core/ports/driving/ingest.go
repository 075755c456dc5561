package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// IngestService brings documents into the vault: chunking, embedding,
// indexing, and recording happen in one logical transaction per
// document.
type IngestService interface {
	// Ingest adds one document and returns its ID. Re-ingesting under
	// an existing ID fully replaces the document's chunks and vectors.
	Ingest(ctx context.Context, doc *domain.Document) (string, error)

	// IngestAll ingests a batch with per-document failure isolation:
	// a malformed document is skipped and recorded in the report
	// while the rest of the batch continues.
	IngestAll(ctx context.Context, docs []domain.Document) (*IngestReport, error)

	// Remove deletes a document, its chunks, and its vectors.
	Remove(ctx context.Context, id string) error
}

// IngestReport summarises a batch ingestion.
type IngestReport struct {
	// Ingested lists the IDs of successfully ingested documents.
	Ingested []string

	// Failed records per-document failures keyed by document ID.
	Failed []IngestFailure
}

// IngestFailure pairs a document ID with the error that skipped it.
type IngestFailure struct {
	DocumentID string
	Err        error
}
