package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// defaultK is the result count used when the caller passes zero.
const defaultK = 10

// QueryService embeds query text and ranks stored chunks against it.
type QueryService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	store    driven.DocumentStore
}

// NewQueryService creates a query service.
func NewQueryService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.DocumentStore,
) *QueryService {
	return &QueryService{
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

// Query embeds the text, searches the index, and assembles ranked,
// filtered, hydrated results. An empty index yields an empty slice.
func (s *QueryService) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query text", domain.ErrQuery)
	}
	if opts.K < 0 {
		return nil, fmt.Errorf("%w: k must not be negative, got %d", domain.ErrQuery, opts.K)
	}
	if opts.K == 0 {
		opts.K = defaultK
	}
	if opts.MinScore < 0 {
		return nil, fmt.Errorf("%w: minimum score must not be negative", domain.ErrQuery)
	}

	if s.index.Len() == 0 {
		return []domain.QueryResult{}, nil
	}

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// Filters drop candidates after the search, so over-fetch to keep
	// k results reachable. Escalate to a full fetch if one pass comes
	// up short.
	fetch := opts.K * 2
	if s.filtered(opts) {
		fetch = opts.K * 4
	}
	for {
		if fetch > s.index.Len() {
			fetch = s.index.Len()
		}

		hits, err := s.index.Search(ctx, vector, fetch)
		if errors.Is(err, domain.ErrEmptyIndex) {
			return []domain.QueryResult{}, nil
		}
		if err != nil {
			return nil, err
		}

		results, exhausted := s.assemble(ctx, hits, opts)
		if len(results) >= opts.K || exhausted || fetch == s.index.Len() {
			logger.Debug("query returned %d results (fetched %d candidates)", len(results), len(hits))
			return results, nil
		}
		fetch = s.index.Len()
	}
}

// filtered reports whether any post-search filter is active.
func (s *QueryService) filtered(opts domain.QueryOptions) bool {
	return len(opts.Kinds) > 0 || len(opts.DocumentIDs) > 0 ||
		opts.PerDocument > 0 || opts.MinScore > 0
}

// assemble hydrates hits into results, applying filters, the
// per-document cap, and the score threshold. The second return value
// reports whether the threshold cut the candidate stream, in which
// case fetching more candidates cannot add results.
func (s *QueryService) assemble(ctx context.Context, hits []driven.VectorHit, opts domain.QueryOptions) ([]domain.QueryResult, bool) {
	kinds := make(map[domain.SourceKind]bool, len(opts.Kinds))
	for _, k := range opts.Kinds {
		kinds[k] = true
	}
	docIDs := make(map[string]bool, len(opts.DocumentIDs))
	for _, id := range opts.DocumentIDs {
		docIDs[id] = true
	}

	results := make([]domain.QueryResult, 0, opts.K)
	perDoc := make(map[string]int)

	for _, hit := range hits {
		if len(results) == opts.K {
			return results, false
		}
		// Hits are ordered by score, so the first sub-threshold hit
		// ends the stream.
		if opts.MinScore > 0 && hit.Score < opts.MinScore {
			return results, true
		}

		chunk, err := s.store.GetChunk(ctx, hit.ChunkID)
		if isNotFound(err) {
			logger.Warn("query: chunk %s in index but not in store", hit.ChunkID)
			continue
		}
		if err != nil {
			logger.Warn("query: loading chunk %s: %v", hit.ChunkID, err)
			continue
		}

		if len(docIDs) > 0 && !docIDs[chunk.DocumentID] {
			continue
		}
		if opts.PerDocument > 0 && perDoc[chunk.DocumentID] >= opts.PerDocument {
			continue
		}

		doc, err := s.store.GetDocument(ctx, chunk.DocumentID)
		if isNotFound(err) {
			logger.Warn("query: document %s missing for chunk %s", chunk.DocumentID, chunk.ID)
			continue
		}
		if err != nil {
			logger.Warn("query: loading document %s: %v", chunk.DocumentID, err)
			continue
		}
		if len(kinds) > 0 && !kinds[doc.Kind] {
			continue
		}

		perDoc[chunk.DocumentID]++
		results = append(results, domain.QueryResult{
			Chunk:    *chunk,
			Document: *doc,
			Score:    hit.Score,
		})
	}
	return results, false
}
