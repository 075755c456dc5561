package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService chunks, embeds, indexes, and records documents. Each
// document is one logical transaction: on failure the index is rolled
// back to the pre-ingest vectors and the store is left untouched.
type IngestService struct {
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	store    driven.DocumentStore
}

// NewIngestService creates an ingest service.
func NewIngestService(
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.DocumentStore,
) *IngestService {
	return &IngestService{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

// Ingest adds one document and returns its ID. Re-ingesting an
// existing ID replaces the document's chunks and vectors completely.
func (s *IngestService) Ingest(ctx context.Context, doc *domain.Document) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("%w: nil document", domain.ErrIngest)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", fmt.Errorf("%w: document has no content", domain.ErrIngest)
	}
	if doc.ID == "" {
		doc.ID = domain.DeriveDocumentID(doc.Origin, doc.Content)
	}
	if doc.Kind == "" {
		doc.Kind = domain.SourceOther
	}
	if !doc.Kind.IsValid() {
		return "", fmt.Errorf("%w: unknown source kind %q", domain.ErrIngest, doc.Kind)
	}
	if doc.IngestedAt.IsZero() {
		doc.IngestedAt = time.Now().UTC()
	}

	chunks, err := s.chunker.Split(doc)
	if err != nil {
		return "", fmt.Errorf("%w: chunking document %s: %v", domain.ErrIngest, doc.ID, err)
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("%w: document %s produced no chunks", domain.ErrIngest, doc.ID)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return "", err
	}
	if len(vectors) != len(chunks) {
		return "", fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbedding, len(vectors), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	// Re-ingest replaces: capture the previous document and chunk set
	// so both the index and the store can be restored if anything
	// after this point fails.
	previousDoc, err := s.store.GetDocument(ctx, doc.ID)
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%w: reading previous document %s: %v", domain.ErrIngest, doc.ID, err)
	}
	previous, err := s.store.GetChunks(ctx, doc.ID)
	if err != nil && !isNotFound(err) {
		return "", fmt.Errorf("%w: reading previous chunks for %s: %v", domain.ErrIngest, doc.ID, err)
	}
	for _, old := range previous {
		if err := s.index.Remove(ctx, old.ID); err != nil {
			return "", fmt.Errorf("%w: removing stale vector %s: %v", domain.ErrIngest, old.ID, err)
		}
	}

	added := make([]string, 0, len(chunks))
	rollback := func() {
		for _, id := range added {
			if err := s.index.Remove(context.WithoutCancel(ctx), id); err != nil {
				logger.Warn("ingest rollback: removing %s: %v", id, err)
			}
		}
		for _, old := range previous {
			if len(old.Embedding) == 0 {
				continue
			}
			if err := s.index.Add(context.WithoutCancel(ctx), old.ID, old.Embedding); err != nil {
				logger.Warn("ingest rollback: restoring %s: %v", old.ID, err)
			}
		}
	}

	for _, c := range chunks {
		if err := s.index.Add(ctx, c.ID, c.Embedding); err != nil {
			rollback()
			return "", fmt.Errorf("indexing chunk %s: %w", c.ID, err)
		}
		added = append(added, c.ID)
	}

	if err := s.store.SaveDocument(ctx, doc); err != nil {
		rollback()
		return "", fmt.Errorf("%w: saving document %s: %v", domain.ErrIngest, doc.ID, err)
	}
	if err := s.store.SaveChunks(ctx, chunks); err != nil {
		rollback()
		// The new document row is already in; put the old one back so
		// the stored document never disagrees with its chunk set.
		restoreCtx := context.WithoutCancel(ctx)
		if previousDoc != nil {
			if restoreErr := s.store.SaveDocument(restoreCtx, previousDoc); restoreErr != nil {
				logger.Warn("ingest rollback: restoring document %s: %v", doc.ID, restoreErr)
			}
		} else if deleteErr := s.store.DeleteDocument(restoreCtx, doc.ID); deleteErr != nil {
			logger.Warn("ingest rollback: deleting document %s: %v", doc.ID, deleteErr)
		}
		return "", fmt.Errorf("%w: saving chunks for %s: %v", domain.ErrIngest, doc.ID, err)
	}

	logger.Debug("ingested document %s (%d chunks)", doc.ID, len(chunks))
	return doc.ID, nil
}

// IngestAll ingests a batch with per-document failure isolation.
func (s *IngestService) IngestAll(ctx context.Context, docs []domain.Document) (*driving.IngestReport, error) {
	report := &driving.IngestReport{}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		id, err := s.Ingest(ctx, &docs[i])
		if err != nil {
			failedID := docs[i].ID
			if failedID == "" {
				failedID = docs[i].Origin
			}
			logger.Warn("skipping document %s: %v", failedID, err)
			report.Failed = append(report.Failed, driving.IngestFailure{
				DocumentID: failedID,
				Err:        err,
			})
			continue
		}
		report.Ingested = append(report.Ingested, id)
	}
	return report, nil
}

// Remove deletes a document, its chunks, and its vectors.
func (s *IngestService) Remove(ctx context.Context, id string) error {
	if _, err := s.store.GetDocument(ctx, id); err != nil {
		return err
	}
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("reading chunks for %s: %w", id, err)
	}
	for _, c := range chunks {
		if err := s.index.Remove(ctx, c.ID); err != nil {
			return fmt.Errorf("removing vector %s: %w", c.ID, err)
		}
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	logger.Debug("removed document %s (%d chunks)", id, len(chunks))
	return nil
}
