package domain

import "fmt"

// EmbeddingProvider identifies the embedding backend.
type EmbeddingProvider string

// Available embedding providers. Both run without network access to
// anything beyond the local machine.
const (
	// ProviderHash is the in-process deterministic feature-hashing
	// embedder. It needs no model files and works fully offline.
	ProviderHash EmbeddingProvider = "hash"

	// ProviderOllama uses a local Ollama inference runtime.
	ProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case ProviderHash, ProviderOllama:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case ProviderHash:
		return "Feature hashing (in-process)"
	case ProviderOllama:
		return "Ollama (local runtime)"
	default:
		return unknownDescription
	}
}

// TruncationPolicy controls what happens when an input exceeds the
// embedding model's maximum supported length. There is no implicit
// behaviour; the policy must be configured.
type TruncationPolicy string

// Available truncation policies.
const (
	// TruncateError rejects over-length inputs with an embedding error.
	TruncateError TruncationPolicy = "error"

	// TruncateClip silently clips over-length inputs to the maximum.
	TruncateClip TruncationPolicy = "truncate"
)

// IsValid returns true if the policy is recognised.
func (p TruncationPolicy) IsValid() bool {
	return p == TruncateError || p == TruncateClip
}

// Settings is the full configuration surface of the vault.
type Settings struct {
	// Profile names the vault; each profile owns one data directory.
	Profile string

	// DataDir is the root data directory. Empty means ~/.arkive.
	DataDir string

	// ChunkSize is the chunk length in characters (runes).
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in
	// characters. Must be smaller than ChunkSize.
	ChunkOverlap int

	// Metric is the similarity metric (cosine or euclidean).
	Metric Metric

	// IndexKind selects the index implementation (flat or ivf).
	IndexKind IndexKind

	// Provider selects the embedding backend.
	Provider EmbeddingProvider

	// Model is the embedding model identifier.
	Model string

	// BaseURL is the local runtime endpoint (Ollama only).
	BaseURL string

	// Dimensions is the embedding vector size. Zero means the
	// provider default.
	Dimensions int

	// MaxInputChars is the embedding model's maximum input length in
	// characters. Zero means unlimited.
	MaxInputChars int

	// Truncation is the over-length input policy.
	Truncation TruncationPolicy

	// Offline gates network access for ingestion producers. The core
	// itself never performs network I/O in either mode.
	Offline bool

	// PerDocument caps chunks per document in query results.
	// Zero means unlimited.
	PerDocument int

	// MinScore is the default minimum similarity threshold for
	// query results. Zero disables the threshold.
	MinScore float64
}

// Default configuration values.
const (
	DefaultProfile      = "default"
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultDimensions   = 256
)

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Profile:      DefaultProfile,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Metric:       MetricCosine,
		IndexKind:    IndexFlat,
		Provider:     ProviderHash,
		Dimensions:   DefaultDimensions,
		Truncation:   TruncateError,
	}
}

// Validate checks the settings for contradictions. All failures wrap
// ErrConfig.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrConfig, s.ChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must not be negative, got %d", ErrConfig, s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrConfig, s.ChunkOverlap, s.ChunkSize)
	}
	if !s.Metric.IsValid() {
		return fmt.Errorf("%w: unknown metric %q", ErrConfig, s.Metric)
	}
	if !s.IndexKind.IsValid() {
		return fmt.Errorf("%w: unknown index kind %q", ErrConfig, s.IndexKind)
	}
	if !s.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrConfig, s.Provider)
	}
	if !s.Truncation.IsValid() {
		return fmt.Errorf("%w: unknown truncation policy %q", ErrConfig, s.Truncation)
	}
	if s.Dimensions < 0 {
		return fmt.Errorf("%w: dimensions must not be negative, got %d", ErrConfig, s.Dimensions)
	}
	if s.MinScore < 0 {
		return fmt.Errorf("%w: minimum score must not be negative, got %f", ErrConfig, s.MinScore)
	}
	return nil
}
