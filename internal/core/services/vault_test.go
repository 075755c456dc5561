package services

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/chunker"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/embedding"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/snapshot"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/storage/memory"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

func TestVault_StatusReflectsContents(t *testing.T) {
	vault := newTestVault(t, t.TempDir(), nil)
	ctx := context.Background()

	status, err := vault.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStateEmpty, status.State)
	assert.Zero(t, status.Documents)

	doc := testDocument("doc-1", "My Notes", strings.Repeat("searchable text ", 10), domain.SourceNote)
	_, err = vault.Ingest(ctx, &doc)
	require.NoError(t, err)

	status, err = vault.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.IndexStateReady, status.State)
	assert.Equal(t, domain.MetricCosine, status.Metric)
	assert.Equal(t, testDimensions, status.Dimension)
	assert.Equal(t, 1, status.Documents)
	assert.Equal(t, status.Chunks, status.Vectors)
	assert.Equal(t, []string{"My Notes"}, status.Titles)
}

func TestVault_SaveAndRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first := newTestVault(t, dir, nil)
	doc := testDocument("doc-1", "Persisted", "vectors survive restarts", domain.SourceNote)
	_, err := first.Ingest(ctx, &doc)
	require.NoError(t, err)

	before, err := first.Query(ctx, "vectors survive restarts", domain.QueryOptions{K: 5})
	require.NoError(t, err)
	require.NotEmpty(t, before)

	require.NoError(t, first.Save(ctx))

	// Fresh adapters, same snapshot directory.
	second := newTestVault(t, dir, nil)
	require.NoError(t, second.Restore(ctx))

	after, err := second.Query(ctx, "vectors survive restarts", domain.QueryOptions{K: 5})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Chunk.ID, after[i].Chunk.ID)
		assert.InDelta(t, before[i].Score, after[i].Score, 1e-9)
	}

	status, err := second.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Documents)
	assert.Equal(t, status.Chunks, status.Vectors)
}

func TestVault_RestoreWithoutSnapshot(t *testing.T) {
	vault := newTestVault(t, t.TempDir(), nil)

	require.NoError(t, vault.Restore(context.Background()))
	assert.Zero(t, vault.index.Len())
}

func TestVault_CorruptSnapshotRebuildsFromStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	vault := newTestVault(t, dir, nil)
	doc := testDocument("doc-1", "Survivor", "content that outlives a bad snapshot", domain.SourceNote)
	_, err := vault.Ingest(ctx, &doc)
	require.NoError(t, err)
	require.NoError(t, vault.Save(ctx))

	before, err := vault.Query(ctx, "content that outlives a bad snapshot", domain.QueryOptions{K: 5})
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// Truncate the snapshot so the checksum no longer matches.
	path := vault.snapshots.Path()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-1))

	// New vault sharing the same document store but a fresh index.
	recovered := newTestVault(t, dir, vault.store)
	require.NoError(t, recovered.Restore(ctx))

	after, err := recovered.Query(ctx, "content that outlives a bad snapshot", domain.QueryOptions{K: 5})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	assert.Equal(t, before[0].Chunk.ID, after[0].Chunk.ID)
}

func TestVault_RebuildPreservesResults(t *testing.T) {
	vault := newTestVault(t, t.TempDir(), nil)
	ctx := context.Background()

	doc := testDocument("doc-1", "Stable", strings.Repeat("stable retrieval results ", 8), domain.SourceNote)
	_, err := vault.Ingest(ctx, &doc)
	require.NoError(t, err)

	before, err := vault.Query(ctx, "stable retrieval", domain.QueryOptions{K: 5})
	require.NoError(t, err)
	vectorsBefore := vault.index.Len()

	require.NoError(t, vault.Rebuild(ctx))

	assert.Equal(t, vectorsBefore, vault.index.Len())
	assert.Equal(t, domain.IndexStateReady, vault.index.State())

	after, err := vault.Query(ctx, "stable retrieval", domain.QueryOptions{K: 5})
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Chunk.ID, after[i].Chunk.ID)
	}
}

func TestVault_RebuildEmptyStore(t *testing.T) {
	vault := newTestVault(t, t.TempDir(), nil)

	require.NoError(t, vault.Rebuild(context.Background()))
	assert.Zero(t, vault.index.Len())
}

func TestVault_ResultsIdenticalAcrossOfflineModes(t *testing.T) {
	corpus := []domain.Document{
		testDocument("doc-1", "Pipelines", "goroutines and channels for concurrent pipelines", domain.SourceWeb),
		testDocument("doc-2", "Storage", "b-tree storage engines and write ahead logging", domain.SourcePDF),
		testDocument("doc-3", "Groceries", "apples oranges bananas and bread", domain.SourceNote),
	}

	// The whole stack is built from settings, so the two runs differ
	// only in the offline flag.
	run := func(offline bool) []domain.QueryResult {
		settings := domain.DefaultSettings()
		settings.Offline = offline
		settings.ChunkSize = 50
		settings.ChunkOverlap = 10
		settings.Dimensions = testDimensions
		require.NoError(t, settings.Validate())

		split, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
		require.NoError(t, err)
		embedder, err := embedding.New(settings)
		require.NoError(t, err)
		idx, err := index.New(settings.IndexKind, embedder.Dimensions(), settings.Metric)
		require.NoError(t, err)
		snapshots, err := snapshot.New(t.TempDir())
		require.NoError(t, err)
		vault := NewVault(split, embedder, idx, memory.NewDocumentStore(), snapshots)

		ctx := context.Background()
		docs := make([]domain.Document, len(corpus))
		copy(docs, corpus)
		report, err := vault.IngestAll(ctx, docs)
		require.NoError(t, err)
		require.Len(t, report.Ingested, len(corpus))

		results, err := vault.Query(ctx, "storage engines and logging", domain.QueryOptions{K: 10})
		require.NoError(t, err)
		return results
	}

	online := run(false)
	offline := run(true)

	require.NotEmpty(t, online)
	require.Equal(t, len(online), len(offline))
	for i := range online {
		assert.Equal(t, online[i].Chunk.ID, offline[i].Chunk.ID)
		assert.Equal(t, online[i].Document.ID, offline[i].Document.ID)
		assert.Equal(t, online[i].Score, offline[i].Score)
	}
}

func TestVault_CloseWritesSnapshot(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	vault := newTestVault(t, dir, nil)
	doc := testDocument("doc-1", "Flushed", "flushed on close", domain.SourceNote)
	_, err := vault.Ingest(ctx, &doc)
	require.NoError(t, err)

	path := vault.snapshots.Path()
	require.NoError(t, vault.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
