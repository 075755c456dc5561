// Package metric implements the similarity kernels shared by the
// vector index implementations, on top of the SIMD-accelerated float32
// operations in github.com/viant/vec.
package metric

import (
	"github.com/viant/vec/search"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

// Magnitude returns the L2 norm of the vector. Index implementations
// precompute candidate magnitudes at insert time so degenerate
// zero-magnitude vectors are screened without touching the candidate
// data per query.
func Magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// Score returns the similarity between query and candidate under the
// given metric. Higher always means closer: cosine similarity for the
// cosine metric, 1/(1+distance) for Euclidean. Mapping Euclidean
// distance through 1/(1+d) keeps the non-increasing ordering invariant
// and a uniform minimum-score threshold across both metrics.
//
// Cosine scoring goes through CosineDistance rather than the
// magnitude-taking variants, which are only exported on arm64.
func Score(m domain.Metric, query, candidate []float32, queryMag, candidateMag float32) float64 {
	switch m {
	case domain.MetricEuclidean:
		d := search.Float32s(query).EuclideanDistance(candidate)
		return 1 / (1 + float64(d))
	default:
		if queryMag == 0 || candidateMag == 0 {
			// Zero-magnitude vectors have no direction; they match nothing.
			return 0
		}
		d := search.Float32s(query).CosineDistance(candidate)
		return 1 - float64(d)
	}
}
