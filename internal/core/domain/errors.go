package domain

import (
	"errors"
	"fmt"
)

// Domain errors classify failures so callers can decide retry vs abort.
// Adapters wrap these sentinels with context; callers match them with
// errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConfig indicates invalid or contradictory configuration.
	ErrConfig = errors.New("invalid configuration")

	// ErrIngest indicates a malformed or unreadable document.
	// Batch ingestion skips the document and continues.
	ErrIngest = errors.New("ingest failed")

	// ErrEmbedding indicates the embedding model is unavailable or an
	// input exceeds its supported length. Never silently zero-filled.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates a vector's dimensionality does
	// not match the index. Always fatal to the operation, never coerced.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexCorrupt indicates a persisted snapshot failed
	// validation. Triggers a rebuild path, never process termination.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrQuery indicates a malformed query or an unqueryable index.
	ErrQuery = errors.New("query failed")

	// ErrEmptyIndex indicates a search against an index with no
	// vectors. It is a kind of query error.
	ErrEmptyIndex = fmt.Errorf("%w: index is empty", ErrQuery)

	// ErrIndexClosed indicates an operation on a closed index.
	ErrIndexClosed = errors.New("index closed")
)

// DimensionMismatchError reports the expected and actual vector
// dimensionality. It matches ErrDimensionMismatch via errors.Is.
type DimensionMismatchError struct {
	Want int
	Got  int
}

// Error implements the error interface.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: index expects %d, got %d", e.Want, e.Got)
}

// Is reports whether the target is the ErrDimensionMismatch sentinel.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}
