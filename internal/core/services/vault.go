package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure Vault implements the interface.
var _ driving.VaultService = (*Vault)(nil)

// Vault is the single explicit context object owning the document
// store, vector index, and embedder. It is created on startup,
// restored from the latest snapshot, and flushed on Close.
type Vault struct {
	*IngestService
	*QueryService

	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	store     driven.DocumentStore
	snapshots driven.SnapshotStore
}

// NewVault wires the services around the injected adapters.
func NewVault(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.DocumentStore,
	snapshots driven.SnapshotStore,
) *Vault {
	return &Vault{
		IngestService: NewIngestService(chunker, embedder, index, store),
		QueryService:  NewQueryService(embedder, index, store),
		embedder:      embedder,
		index:         index,
		store:         store,
		snapshots:     snapshots,
	}
}

// Restore loads the latest snapshot into the index and store. A
// missing snapshot is a fresh vault; a corrupt or incompatible one
// triggers a rebuild from the document store instead of failing.
func (v *Vault) Restore(ctx context.Context) error {
	snap, err := v.snapshots.Load(ctx)
	if isNotFound(err) {
		logger.Debug("no snapshot found, starting empty")
		return nil
	}
	if errors.Is(err, domain.ErrIndexCorrupt) {
		logger.Warn("snapshot corrupt, rebuilding from document store: %v", err)
		return v.Rebuild(ctx)
	}
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	if snap.Dimension != v.index.Dimension() || snap.Metric != v.index.Metric() {
		logger.Warn("snapshot built with dimension=%d metric=%s, index wants dimension=%d metric=%s; rebuilding",
			snap.Dimension, snap.Metric, v.index.Dimension(), v.index.Metric())
		return v.Rebuild(ctx)
	}

	// Snapshots carry the document metadata so stores without their
	// own durability come back populated. Saves are upserts, so a
	// durable store is unaffected.
	for i := range snap.Documents {
		if err := v.store.SaveDocument(ctx, &snap.Documents[i]); err != nil {
			return fmt.Errorf("restoring document %s: %w", snap.Documents[i].ID, err)
		}
	}
	byDoc := make(map[string][]domain.Chunk)
	for _, c := range snap.Chunks {
		byDoc[c.DocumentID] = append(byDoc[c.DocumentID], c)
	}
	for docID, chunks := range byDoc {
		if err := v.store.SaveChunks(ctx, chunks); err != nil {
			return fmt.Errorf("restoring chunks for %s: %w", docID, err)
		}
	}

	if err := v.index.Rebuild(ctx, snap.Entries); err != nil {
		return fmt.Errorf("restoring index: %w", err)
	}
	logger.Debug("restored %d documents, %d vectors from snapshot", len(snap.Documents), len(snap.Entries))
	return nil
}

// Status reports the index state and document store contents.
func (v *Vault) Status(ctx context.Context) (*domain.Status, error) {
	docs, chunks, err := v.store.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting store contents: %w", err)
	}

	documents, err := v.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	titles := make([]string, 0, len(documents))
	for _, d := range documents {
		titles = append(titles, d.Title)
	}

	return &domain.Status{
		State:     v.index.State(),
		Metric:    v.index.Metric(),
		Dimension: v.index.Dimension(),
		Documents: docs,
		Chunks:    chunks,
		Vectors:   v.index.Len(),
		Titles:    titles,
	}, nil
}

// Rebuild re-derives the whole index from the document store and
// atomically swaps it in. Stored embeddings of the right
// dimensionality are reused; anything else is re-embedded.
func (v *Vault) Rebuild(ctx context.Context) error {
	documents, err := v.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	var entries []driven.VectorEntry
	for _, doc := range documents {
		chunks, err := v.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}

		var stale []domain.Chunk
		for _, c := range chunks {
			if len(c.Embedding) == v.index.Dimension() {
				entries = append(entries, driven.VectorEntry{ChunkID: c.ID, Vector: c.Embedding})
			} else {
				stale = append(stale, c)
			}
		}
		if len(stale) == 0 {
			continue
		}

		texts := make([]string, len(stale))
		for i, c := range stale {
			texts[i] = c.Content
		}
		vectors, err := v.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("re-embedding chunks for %s: %w", doc.ID, err)
		}
		for i, c := range stale {
			c.Embedding = vectors[i]
			entries = append(entries, driven.VectorEntry{ChunkID: c.ID, Vector: vectors[i]})
		}
	}

	if err := v.index.Rebuild(ctx, entries); err != nil {
		return fmt.Errorf("rebuilding index: %w", err)
	}
	logger.Info("rebuilt index with %d vectors from %d documents", len(entries), len(documents))
	return nil
}

// Save persists a snapshot of the index and document metadata.
func (v *Vault) Save(ctx context.Context) error {
	documents, err := v.store.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}
	var chunks []domain.Chunk
	for _, doc := range documents {
		docChunks, err := v.store.GetChunks(ctx, doc.ID)
		if err != nil {
			return fmt.Errorf("loading chunks for %s: %w", doc.ID, err)
		}
		chunks = append(chunks, docChunks...)
	}

	snap := &driven.Snapshot{
		Dimension: v.index.Dimension(),
		Metric:    v.index.Metric(),
		Entries:   v.index.Entries(),
		Documents: documents,
		Chunks:    chunks,
	}
	if err := v.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	logger.Debug("saved snapshot with %d vectors to %s", len(snap.Entries), v.snapshots.Path())
	return nil
}

// Close flushes a final snapshot and releases all held resources.
func (v *Vault) Close() error {
	var errs []error
	if err := v.Save(context.Background()); err != nil {
		errs = append(errs, err)
	}
	if err := v.index.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := v.embedder.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := v.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
