package driving

import (
	"context"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// QueryService answers similarity queries against the vault.
type QueryService interface {
	// Query embeds the text, searches the index, applies filters,
	// per-document caps, and the similarity threshold, and returns up
	// to opts.K results ordered by non-increasing score. An empty
	// index or fully filtered candidate set yields an empty slice,
	// not an error.
	Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error)
}
