package flat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

func newIndex(t *testing.T, m domain.Metric) *Index {
	t.Helper()
	idx, err := New(3, m)
	require.NoError(t, err)
	return idx
}

func TestNew_RejectsBadConfig(t *testing.T) {
	_, err := New(0, domain.MetricCosine)
	assert.ErrorIs(t, err, domain.ErrConfig)

	_, err = New(3, "manhattan")
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	err := idx.Add(context.Background(), "c1", []float32{1, 2})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_EmptyIndex(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	_, err := idx.Search(context.Background(), []float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
	assert.ErrorIs(t, err, domain.ErrQuery)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	require.NoError(t, idx.Add(context.Background(), "c1", []float32{1, 0, 0}))

	_, err := idx.Search(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrQuery)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_OrderingAndKBound(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "far", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "near", []float32{1, 0.1, 0}))
	require.NoError(t, idx.Add(ctx, "exact", []float32{1, 0, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "exact", hits[0].ChunkID)
	assert.Equal(t, "near", hits[1].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestSearch_TieBrokenByChunkIDAscending(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	// Identical vectors score identically.
	require.NoError(t, idx.Add(ctx, "b", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "c", []float32{1, 0, 0}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"a", "b", "c"},
		[]string{hits[0].ChunkID, hits[1].ChunkID, hits[2].ChunkID})
}

func TestSearch_EuclideanCloserFirst(t *testing.T) {
	idx := newIndex(t, domain.MetricEuclidean)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "near", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "far", []float32{9, 9, 9}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "near", hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRemove_NeverReturnedAfter(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "keep", []float32{1, 0, 0}))
	require.NoError(t, idx.Add(ctx, "drop", []float32{1, 0, 0}))
	require.NoError(t, idx.Remove(ctx, "drop"))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "keep", hits[0].ChunkID)
}

func TestStateTransitions(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	assert.Equal(t, domain.IndexStateEmpty, idx.State())

	require.NoError(t, idx.Add(ctx, "c1", []float32{1, 0, 0}))
	assert.Equal(t, domain.IndexStateReady, idx.State())

	require.NoError(t, idx.Remove(ctx, "c1"))
	assert.Equal(t, domain.IndexStateEmpty, idx.State())
}

func TestRebuild_ReplacesContents(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "old", []float32{1, 0, 0}))
	require.NoError(t, idx.Rebuild(ctx, []driven.VectorEntry{
		{ChunkID: "new-1", Vector: []float32{0, 1, 0}},
		{ChunkID: "new-2", Vector: []float32{0, 0, 1}},
	}))

	assert.Equal(t, domain.IndexStateReady, idx.State())
	assert.Equal(t, 2, idx.Len())

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 10)
	require.NoError(t, err)
	for _, h := range hits {
		assert.NotEqual(t, "old", h.ChunkID)
	}
}

func TestRebuild_CancelledLeavesPublishedIndex(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "keep", []float32{1, 0, 0}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := idx.Rebuild(cancelled, []driven.VectorEntry{
		{ChunkID: "never", Vector: []float32{0, 1, 0}},
	})
	require.Error(t, err)

	assert.Equal(t, domain.IndexStateReady, idx.State())
	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "keep", hits[0].ChunkID)
}

func TestRebuild_BadEntryFailsIndex(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "keep", []float32{1, 0, 0}))

	err := idx.Rebuild(ctx, []driven.VectorEntry{
		{ChunkID: "bad", Vector: []float32{1}},
	})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, domain.IndexStateFailed, idx.State())
}

func TestEntries_SortedCopy(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "b", []float32{0, 1, 0}))
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0, 0}))

	entries := idx.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].ChunkID)
	assert.Equal(t, "b", entries[1].ChunkID)

	// Mutating the copy must not affect the index.
	entries[0].Vector[0] = 99
	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
}

func TestClose(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "c1", []float32{1, 0, 0}))
	require.NoError(t, idx.Close())

	assert.ErrorIs(t, idx.Add(ctx, "c2", []float32{1, 0, 0}), domain.ErrIndexClosed)
	_, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexClosed)
}

func TestSearch_ConcurrentReaders(t *testing.T) {
	idx := newIndex(t, domain.MetricCosine)
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "c1", []float32{1, 0, 0}))

	done := make(chan struct{})
	for g := 0; g < 8; g++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for q := 0; q < 100; q++ {
				_, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
				assert.NoError(t, err)
			}
		}()
	}
	for g := 0; g < 8; g++ {
		<-done
	}
}
