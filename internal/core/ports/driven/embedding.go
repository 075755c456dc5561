package driven

import "context"

// EmbeddingService maps text to fixed-dimensional vectors.
//
// Implementations hold one model instance for the process lifetime
// (initialise once, release via Close) and must work without network
// access beyond the local machine. Inference is deterministic for a
// fixed model version and input, and batching must not alter per-item
// results versus single-item calls.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order and length.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. This must match
	// the vector index configuration.
	Dimensions() int

	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Ping validates the backend is usable. In-process backends
	// return nil immediately.
	Ping(ctx context.Context) error

	// Close releases the model instance.
	Close() error
}
