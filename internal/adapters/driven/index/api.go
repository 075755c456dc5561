// Package index constructs vector index implementations from
// configuration. The flat index is exact; the IVF index is approximate
// and documents its recall trade-off. Both honour the same contract.
package index

import (
	"fmt"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index/flat"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index/ivf"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// New creates a vector index of the given kind, dimensionality, and
// metric. The dimensionality is fixed for the index's lifetime.
func New(kind domain.IndexKind, dimension int, metric domain.Metric) (driven.VectorIndex, error) {
	switch kind {
	case domain.IndexFlat:
		return flat.New(dimension, metric)
	case domain.IndexIVF:
		return ivf.New(dimension, metric)
	default:
		return nil, fmt.Errorf("%w: unknown index kind %q", domain.ErrConfig, kind)
	}
}
