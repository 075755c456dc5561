// Package flat provides an exact vector index that scans every stored
// vector per query. Recall is always 100%; query cost grows linearly
// with the number of vectors, which is fine for personal-vault scale.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index/metric"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// checkInterval is how many entries a rebuild processes between
// cancellation checks.
const checkInterval = 1024

type entry struct {
	vector    []float32
	magnitude float32
}

// Index is an exact, in-memory vector index.
//
// Mutations are serialised by writeMu (single-writer discipline);
// searches take only the read side of mu, so they run concurrently
// with each other and with the off-lock construction phase of Rebuild.
type Index struct {
	writeMu sync.Mutex

	mu      sync.RWMutex
	entries map[string]entry
	state   domain.IndexState
	closed  bool

	dimension int
	metric    domain.Metric
}

// New creates an empty flat index with the given dimensionality,
// fixed for the index's lifetime.
func New(dimension int, m domain.Metric) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", domain.ErrConfig, dimension)
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrConfig, m)
	}
	return &Index{
		entries:   make(map[string]entry),
		state:     domain.IndexStateEmpty,
		dimension: dimension,
		metric:    m,
	}, nil
}

// Add inserts one vector for the given chunk ID.
func (i *Index) Add(_ context.Context, chunkID string, embedding []float32) error {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return domain.ErrIndexClosed
	}
	if len(embedding) != i.dimension {
		return &domain.DimensionMismatchError{Want: i.dimension, Got: len(embedding)}
	}

	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	i.entries[chunkID] = entry{vector: vec, magnitude: metric.Magnitude(vec)}
	i.state = domain.IndexStateReady
	return nil
}

// Remove deletes a vector. Removing an unknown ID is a no-op.
func (i *Index) Remove(_ context.Context, chunkID string) error {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return domain.ErrIndexClosed
	}
	delete(i.entries, chunkID)
	if len(i.entries) == 0 && i.state == domain.IndexStateReady {
		i.state = domain.IndexStateEmpty
	}
	return nil
}

// Search returns up to k hits ordered by non-increasing score, ties
// broken by chunk ID ascending.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, domain.ErrIndexClosed
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrQuery, k)
	}
	if len(i.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: %w", domain.ErrQuery,
			&domain.DimensionMismatchError{Want: i.dimension, Got: len(query)})
	}

	queryMag := metric.Magnitude(query)
	hits := make([]driven.VectorHit, 0, len(i.entries))
	for id, e := range i.entries {
		hits = append(hits, driven.VectorHit{
			ChunkID: id,
			Score:   metric.Score(i.metric, query, e.vector, queryMag, e.magnitude),
		})
	}

	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Rebuild atomically replaces the index contents. The new structure is
// built off the read lock, so searches keep serving the previously
// published entries until the single pointer swap. Cancellation
// abandons the new structure and leaves the published one untouched.
func (i *Index) Rebuild(ctx context.Context, entries []driven.VectorEntry) error {
	i.writeMu.Lock()
	defer i.writeMu.Unlock()

	i.mu.Lock()
	if i.closed {
		i.mu.Unlock()
		return domain.ErrIndexClosed
	}
	prev := i.state
	if prev == domain.IndexStateEmpty {
		i.state = domain.IndexStateBuilding
	} else {
		i.state = domain.IndexStateRebuilding
	}
	i.mu.Unlock()

	next := make(map[string]entry, len(entries))
	for n, e := range entries {
		if n%checkInterval == 0 && ctx.Err() != nil {
			i.setState(prev)
			return fmt.Errorf("rebuild cancelled: %w", ctx.Err())
		}
		if len(e.Vector) != i.dimension {
			// Inconsistent rebuild input: the previous structure stays
			// published, but the index needs operator attention.
			i.setState(domain.IndexStateFailed)
			return fmt.Errorf("rebuild entry %q: %w", e.ChunkID,
				&domain.DimensionMismatchError{Want: i.dimension, Got: len(e.Vector)})
		}
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		next[e.ChunkID] = entry{vector: vec, magnitude: metric.Magnitude(vec)}
	}

	if ctx.Err() != nil {
		i.setState(prev)
		return fmt.Errorf("rebuild cancelled: %w", ctx.Err())
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries = next
	if len(next) == 0 {
		i.state = domain.IndexStateEmpty
	} else {
		i.state = domain.IndexStateReady
	}
	return nil
}

// Entries returns a copy of all live entries ordered by chunk ID.
func (i *Index) Entries() []driven.VectorEntry {
	i.mu.RLock()
	defer i.mu.RUnlock()

	out := make([]driven.VectorEntry, 0, len(i.entries))
	for id, e := range i.entries {
		vec := make([]float32, len(e.vector))
		copy(vec, e.vector)
		out = append(out, driven.VectorEntry{ChunkID: id, Vector: vec})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ChunkID < out[b].ChunkID })
	return out
}

// Len returns the number of live vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Dimension returns the index dimensionality.
func (i *Index) Dimension() int {
	return i.dimension
}

// Metric returns the configured similarity metric.
func (i *Index) Metric() domain.Metric {
	return i.metric
}

// State returns the index lifecycle state.
func (i *Index) State() domain.IndexState {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.state
}

// Close releases the index. Further operations fail with ErrIndexClosed.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.closed = true
	i.entries = nil
	return nil
}

func (i *Index) setState(s domain.IndexState) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

// sortHits orders hits by non-increasing score, ties broken by chunk
// ID ascending for determinism.
func sortHits(hits []driven.VectorHit) {
	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})
}
