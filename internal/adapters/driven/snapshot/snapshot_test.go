package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

func sample() *driven.Snapshot {
	return &driven.Snapshot{
		Dimension: 3,
		Metric:    domain.MetricCosine,
		Entries: []driven.VectorEntry{
			{ChunkID: "chunk-a", Vector: []float32{1, 0, 0.5}},
			{ChunkID: "chunk-b", Vector: []float32{0, 1, -0.25}},
		},
		Documents: []domain.Document{
			{ID: "doc-1", Kind: domain.SourceNote, Title: "Notes", Origin: "/notes/a.md",
				Content: "some note text", IngestedAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)},
		},
		Chunks: []domain.Chunk{
			{ID: "chunk-a", DocumentID: "doc-1", Content: "some note", Start: 0, End: 9},
			{ID: "chunk-b", DocumentID: "doc-1", Content: "note text", Start: 5, End: 14},
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestLoad_MissingSnapshot(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoad_TruncatedByOneByte(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.Path(), data[:len(data)-1], 0600))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestLoad_FlippedByte(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	require.NoError(t, os.WriteFile(store.Path(), data, 0600))

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestLoad_BadMagic(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Path(), []byte("not a snapshot, definitely"), 0600))

	_, err = store.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrIndexCorrupt)
}

func TestSave_OverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))

	second := sample()
	second.Entries = second.Entries[:1]
	second.Chunks = second.Chunks[:1]
	require.NoError(t, store.Save(ctx, second))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Entries, 1)

	// No temporary files left behind.
	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSave_EmptySnapshot(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &driven.Snapshot{Dimension: 4, Metric: domain.MetricEuclidean}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Dimension)
	assert.Equal(t, domain.MetricEuclidean, got.Metric)
	assert.Empty(t, got.Entries)
}

func TestSave_RejectsMismatchedVector(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	snap := sample()
	snap.Entries[0].Vector = []float32{1}
	err = store.Save(context.Background(), snap)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
