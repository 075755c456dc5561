package domain

const unknownDescription = "Unknown"

// Metric selects the similarity metric used by a vector index.
type Metric string

// Available similarity metrics.
const (
	// MetricCosine ranks by cosine similarity (higher is closer).
	MetricCosine Metric = "cosine"

	// MetricEuclidean ranks by Euclidean distance. Scores are mapped
	// through 1/(1+distance) so that higher scores still mean closer,
	// keeping result ordering non-increasing for both metrics.
	MetricEuclidean Metric = "euclidean"
)

// IsValid returns true if the metric is recognised.
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricEuclidean:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Metric) String() string {
	return string(m)
}

// Description returns a human-readable description of the metric.
func (m Metric) Description() string {
	switch m {
	case MetricCosine:
		return "Cosine similarity"
	case MetricEuclidean:
		return "Euclidean distance"
	default:
		return unknownDescription
	}
}

// IndexKind selects the vector index implementation.
type IndexKind string

// Available index kinds.
const (
	// IndexFlat is an exact, brute-force scan over all vectors.
	IndexFlat IndexKind = "flat"

	// IndexIVF is an approximate inverted-file index that scans only
	// the clusters nearest the query. Trades recall for speed.
	IndexIVF IndexKind = "ivf"
)

// IsValid returns true if the index kind is recognised.
func (k IndexKind) IsValid() bool {
	switch k {
	case IndexFlat, IndexIVF:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k IndexKind) String() string {
	return string(k)
}

// IndexState describes the lifecycle state of a vector index.
type IndexState string

// Index lifecycle states.
const (
	// IndexStateEmpty means the index holds no vectors.
	IndexStateEmpty IndexState = "empty"

	// IndexStateBuilding means a bulk insert is in progress.
	IndexStateBuilding IndexState = "building"

	// IndexStateReady means the index is queryable and consistent
	// with the document store.
	IndexStateReady IndexState = "ready"

	// IndexStateRebuilding means a rebuild is in progress; readers
	// continue to see the previously published structure.
	IndexStateRebuilding IndexState = "rebuilding"

	// IndexStateFailed means a rebuild failed irrecoverably and the
	// index requires operator intervention or full re-ingestion.
	IndexStateFailed IndexState = "failed"
)

// String returns the string representation.
func (s IndexState) String() string {
	return string(s)
}

// QueryOptions configures a similarity query.
type QueryOptions struct {
	// K is the maximum number of results to return. Defaults to 10.
	K int

	// Kinds restricts results to documents of these source kinds.
	Kinds []SourceKind

	// DocumentIDs restricts results to chunks of these documents.
	DocumentIDs []string

	// PerDocument caps how many chunks of a single document may
	// appear in the results. Zero means unlimited.
	PerDocument int

	// MinScore excludes candidates scoring below this threshold,
	// even if fewer than K results remain. Zero disables the check.
	MinScore float64
}

// QueryResult is a single ranked hit. Results for one query are
// ordered by non-increasing score, ties broken by chunk ID ascending.
type QueryResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Document is the chunk's owning document.
	Document Document

	// Score is the similarity score for the configured metric.
	Score float64
}

// Status reports the vault's current index state and contents.
type Status struct {
	// State is the index lifecycle state.
	State IndexState

	// Metric is the configured similarity metric.
	Metric Metric

	// Dimension is the embedding dimensionality of the index.
	Dimension int

	// Documents and Chunks are the document store counts.
	Documents int
	Chunks    int

	// Vectors is the number of vectors currently in the index.
	Vectors int

	// Titles lists the titles of all stored documents.
	Titles []string
}
