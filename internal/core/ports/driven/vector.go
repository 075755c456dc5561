package driven

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over chunk embeddings.
//
// Mutations (Add, Remove, Rebuild) are serialised by the
// implementation; Search may run concurrently with other searches and,
// via copy-on-write, with an in-progress Rebuild. Exact and
// approximate implementations share this contract: ordered top-k by
// similarity, ties broken by chunk ID ascending.
type VectorIndex interface {
	// Add inserts one vector for the given chunk ID. Fails with a
	// domain.DimensionMismatchError if the vector's length does not
	// match the index dimension.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Remove logically removes a vector. Implementations may defer
	// physical compaction but must never return the removed ID from
	// Search afterwards.
	Remove(ctx context.Context, chunkID string) error

	// Search returns up to k hits ordered by non-increasing score.
	// Fails with a query error if the index is empty or the vector's
	// length does not match the index dimension.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Rebuild atomically replaces the index contents. Readers observe
	// either the fully-old or fully-new structure, never a partial
	// one. A cancelled rebuild leaves the published index untouched.
	Rebuild(ctx context.Context, entries []VectorEntry) error

	// Entries returns a copy of all live entries, ordered by chunk ID.
	Entries() []VectorEntry

	// Len returns the number of live vectors.
	Len() int

	// Dimension returns the index dimensionality, fixed at creation.
	Dimension() int

	// Metric returns the configured similarity metric.
	Metric() domain.Metric

	// State returns the index lifecycle state.
	State() domain.IndexState

	// Close releases resources.
	Close() error
}

// VectorHit is a single similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the similarity score. Cosine similarity for the cosine
	// metric; 1/(1+distance) for the Euclidean metric, so higher is
	// closer under both.
	Score float64
}

// VectorEntry associates a chunk ID with its vector, used for bulk
// rebuilds and snapshotting.
type VectorEntry struct {
	ChunkID string
	Vector  []float32
}
