package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// DocumentProducer is the capability interface ingestion adapters
// implement: produce documents from some source. The core's only
// contract with a producer is the text-and-metadata shape of
// domain.Document; it does not care how the source was fetched.
//
// Producers that reach the network must refuse to run when the vault
// is in offline mode. The core itself never performs network I/O.
type DocumentProducer interface {
	// Name identifies the producer for logging and reports.
	Name() string

	// Produce returns the documents currently available from the
	// source.
	Produce(ctx context.Context) ([]domain.Document, error)
}
