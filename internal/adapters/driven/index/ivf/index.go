// Package ivf provides an approximate vector index using an
// inverted-file layout: vectors are partitioned into clusters around
// k-means centroids and a query scans only the closest few clusters.
//
// Recall trade-off: with nlist clusters and nprobe probes a query
// inspects roughly nprobe/nlist of the stored vectors, so a true
// neighbour that fell into an unprobed cluster is missed. Raising
// nprobe recovers recall at the cost of scan time; nprobe == nlist
// degenerates to an exact scan. The external contract (ordered top-k,
// deterministic tie-break) is identical to the flat index.
package ivf

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/vec/search"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index/metric"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Default training parameters.
const (
	DefaultClusters = 16
	DefaultProbes   = 4

	kmeansRounds = 10
)

type entry struct {
	vector    []float32
	magnitude float32
}

// cluster is one inverted list. A nil centroid marks the untrained
// catch-all cluster, which is always probed.
type cluster struct {
	centroid    []float32
	centroidMag float32
	members     map[string]entry
}

// structure is the copy-on-write index body swapped atomically on
// rebuild.
type structure struct {
	clusters []*cluster
	assign   map[string]int
}

func newStructure() *structure {
	return &structure{
		clusters: []*cluster{{members: make(map[string]entry)}},
		assign:   make(map[string]int),
	}
}

// Index is an approximate inverted-file vector index.
type Index struct {
	writeMu sync.Mutex

	mu     sync.RWMutex
	body   *structure
	state  domain.IndexState
	closed bool

	dimension int
	metric    domain.Metric
	nlist     int
	nprobe    int
}

// Option configures the index.
type Option func(*Index)

// WithClusters sets the number of k-means clusters trained on rebuild.
func WithClusters(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.nlist = n
		}
	}
}

// WithProbes sets how many clusters a query scans.
func WithProbes(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.nprobe = n
		}
	}
}

// New creates an empty IVF index. Until the first Rebuild trains
// centroids, all vectors live in a single catch-all cluster and
// searches are exact.
func New(dimension int, m domain.Metric, opts ...Option) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: index dimension must be positive, got %d", domain.ErrConfig, dimension)
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: unknown metric %q", domain.ErrConfig, m)
	}

	i := &Index{
		body:      newStructure(),
		state:     domain.IndexStateEmpty,
		dimension: dimension,
		metric:    m,
		nlist:     DefaultClusters,
		nprobe:    DefaultProbes,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.nprobe > i.nlist {
		i.nprobe = i.nlist
	}
	return i, nil
}

// Add inserts one vector into the cluster with the nearest centroid.
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
	e := entry{vector: vec, magnitude: metric.Magnitude(vec)}

	// Replacing an existing ID must not leave the stale copy behind
	// in another cluster.
	if prev, ok := i.body.assign[chunkID]; ok {
		delete(i.body.clusters[prev].members, chunkID)
	}

	target := i.body.nearestCluster(vec)
	i.body.clusters[target].members[chunkID] = e
	i.body.assign[chunkID] = target
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
	if c, ok := i.body.assign[chunkID]; ok {
		delete(i.body.clusters[c].members, chunkID)
		delete(i.body.assign, chunkID)
	}
	if len(i.body.assign) == 0 && i.state == domain.IndexStateReady {
		i.state = domain.IndexStateEmpty
	}
	return nil
}

// Search scans the nprobe clusters with the closest centroids and
// returns up to k hits ordered by non-increasing score, ties broken by
// chunk ID ascending.
func (i *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if i.closed {
		return nil, domain.ErrIndexClosed
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrQuery, k)
	}
	if len(i.body.assign) == 0 {
		return nil, domain.ErrEmptyIndex
	}
	if len(query) != i.dimension {
		return nil, fmt.Errorf("%w: %w", domain.ErrQuery,
			&domain.DimensionMismatchError{Want: i.dimension, Got: len(query)})
	}

	queryMag := metric.Magnitude(query)

	var hits []driven.VectorHit
	for _, c := range i.body.probeClusters(i.metric, query, queryMag, i.nprobe) {
		for id, e := range c.members {
			hits = append(hits, driven.VectorHit{
				ChunkID: id,
				Score:   metric.Score(i.metric, query, e.vector, queryMag, e.magnitude),
			})
		}
	}

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ChunkID < hits[b].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Rebuild trains k-means centroids over the given entries and swaps in
// the fully built structure. Readers see the old structure until the
// swap; cancellation abandons the new one.
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

	for _, e := range entries {
		if len(e.Vector) != i.dimension {
			i.setState(domain.IndexStateFailed)
			return fmt.Errorf("rebuild entry %q: %w", e.ChunkID,
				&domain.DimensionMismatchError{Want: i.dimension, Got: len(e.Vector)})
		}
	}

	body, err := i.train(ctx, entries)
	if err != nil {
		i.setState(prev)
		return err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.body = body
	if len(body.assign) == 0 {
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

	out := make([]driven.VectorEntry, 0, len(i.body.assign))
	for _, c := range i.body.clusters {
		for id, e := range c.members {
			vec := make([]float32, len(e.vector))
			copy(vec, e.vector)
			out = append(out, driven.VectorEntry{ChunkID: id, Vector: vec})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ChunkID < out[b].ChunkID })
	return out
}

// Len returns the number of live vectors.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.body.assign)
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
	i.body = newStructure()
	return nil
}

func (i *Index) setState(s domain.IndexState) {
	i.mu.Lock()
	i.state = s
	i.mu.Unlock()
}

// train runs deterministic k-means: entries are processed in chunk-ID
// order, centroids are seeded at evenly spaced positions, and
// assignment uses Euclidean distance regardless of the query metric,
// which is the standard coarse quantiser.
func (i *Index) train(ctx context.Context, entries []driven.VectorEntry) (*structure, error) {
	sorted := make([]driven.VectorEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].ChunkID < sorted[b].ChunkID })

	n := len(sorted)
	if n == 0 {
		return newStructure(), nil
	}

	k := i.nlist
	if k > n {
		k = n
	}

	centroids := make([][]float32, k)
	for c := 0; c < k; c++ {
		seed := sorted[c*n/k].Vector
		centroids[c] = append([]float32(nil), seed...)
	}

	assign := make([]int, n)
	for round := 0; round < kmeansRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rebuild cancelled: %w", err)
		}

		for idx, e := range sorted {
			assign[idx] = nearestCentroid(centroids, e.Vector)
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := 0; c < k; c++ {
			sums[c] = make([]float64, i.dimension)
		}
		for idx, e := range sorted {
			c := assign[idx]
			counts[c]++
			for d, v := range e.Vector {
				sums[c][d] += float64(v)
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its old centroid
			}
			for d := 0; d < i.dimension; d++ {
				centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}
	}

	body := &structure{
		clusters: make([]*cluster, k),
		assign:   make(map[string]int, n),
	}
	for c := 0; c < k; c++ {
		body.clusters[c] = &cluster{
			centroid:    centroids[c],
			centroidMag: metric.Magnitude(centroids[c]),
			members:     make(map[string]entry),
		}
	}
	for idx, e := range sorted {
		c := assign[idx]
		vec := make([]float32, len(e.Vector))
		copy(vec, e.Vector)
		body.clusters[c].members[e.ChunkID] = entry{vector: vec, magnitude: metric.Magnitude(vec)}
		body.assign[e.ChunkID] = c
	}
	return body, nil
}

// nearestCentroid returns the index of the centroid closest to the
// vector by Euclidean distance.
func nearestCentroid(centroids [][]float32, vec []float32) int {
	best := 0
	bestDist := float32(-1)
	for idx, c := range centroids {
		d := search.Float32s(c).EuclideanDistance(vec)
		if bestDist < 0 || d < bestDist {
			best = idx
			bestDist = d
		}
	}
	return best
}

// nearestCluster returns the index of the cluster whose centroid is
// closest to the vector. The catch-all cluster (nil centroid) wins
// only when no trained centroid exists.
func (s *structure) nearestCluster(vec []float32) int {
	best := 0
	bestDist := float32(-1)
	for idx, c := range s.clusters {
		if c.centroid == nil {
			if bestDist < 0 {
				best = idx
			}
			continue
		}
		d := search.Float32s(c.centroid).EuclideanDistance(vec)
		if bestDist < 0 || d < bestDist {
			best = idx
			bestDist = d
		}
	}
	return best
}

// probeClusters returns the nprobe clusters with centroids closest to
// the query, plus any catch-all cluster.
func (s *structure) probeClusters(m domain.Metric, query []float32, queryMag float32, nprobe int) []*cluster {
	type scored struct {
		c     *cluster
		score float64
	}

	var catchAll []*cluster
	ranked := make([]scored, 0, len(s.clusters))
	for _, c := range s.clusters {
		if c.centroid == nil {
			catchAll = append(catchAll, c)
			continue
		}
		ranked = append(ranked, scored{
			c:     c,
			score: metric.Score(m, query, c.centroid, queryMag, c.centroidMag),
		})
	}

	sort.SliceStable(ranked, func(a, b int) bool { return ranked[a].score > ranked[b].score })
	if len(ranked) > nprobe {
		ranked = ranked[:nprobe]
	}

	out := make([]*cluster, 0, len(ranked)+len(catchAll))
	for _, r := range ranked {
		out = append(out, r.c)
	}
	return append(out, catchAll...)
}
