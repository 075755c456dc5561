package driven

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// Snapshot is a versioned, persisted copy of the index and document
// metadata, captured and restored together.
type Snapshot struct {
	// Dimension is the embedding dimensionality of the vectors.
	Dimension int

	// Metric is the similarity metric the index was built with.
	Metric domain.Metric

	// Entries are the live index vectors keyed by chunk ID.
	Entries []VectorEntry

	// Documents and Chunks mirror the document store contents.
	Documents []domain.Document
	Chunks    []domain.Chunk
}

// SnapshotStore durably saves and loads snapshots.
//
// Save is atomic: the snapshot is written to a temporary location and
// only then published, so a crash mid-write never corrupts the
// previously valid snapshot. Load never crashes on a bad file; it
// returns an error wrapping domain.ErrIndexCorrupt so the caller can
// rebuild from the document store, or domain.ErrNotFound when no
// snapshot exists.
type SnapshotStore interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)

	// Path returns the location of the published snapshot.
	Path() string
}
