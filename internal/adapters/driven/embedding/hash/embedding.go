// Package hash provides an in-process embedding service based on
// feature hashing. It needs no model files or local runtime, so it is
// the vault's fully offline default backend. Vectors from this model
// capture lexical overlap rather than deep semantics; the Ollama
// backend is the upgrade path when a real model is available.
package hash

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/viant/vec/search"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default configuration values.
const (
	DefaultDimensions = 256

	modelName = "feature-hash-v1"
)

// Config holds configuration for the feature-hashing embedder.
type Config struct {
	// Dimensions is the embedding vector size (default 256).
	Dimensions int

	// MaxInputChars is the maximum input length in characters.
	// Zero means unlimited.
	MaxInputChars int

	// Truncation is the over-length input policy. Must be set when
	// MaxInputChars is; there is no implicit behaviour.
	Truncation domain.TruncationPolicy
}

// Service embeds text by hashing word unigrams and bigrams into a
// fixed number of buckets and L2-normalising the result. Inference is
// pure arithmetic: deterministic, no randomness, no I/O.
type Service struct {
	dimensions    int
	maxInputChars int
	truncation    domain.TruncationPolicy
}

// New creates a feature-hashing embedding service.
func New(cfg Config) *Service {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Truncation == "" {
		cfg.Truncation = domain.TruncateError
	}
	return &Service{
		dimensions:    cfg.Dimensions,
		maxInputChars: cfg.MaxInputChars,
		truncation:    cfg.Truncation,
	}
}

// Embed generates a vector embedding for the given text.
func (s *Service) Embed(_ context.Context, text string) ([]float32, error) {
	text, err := s.bound(text)
	if err != nil {
		return nil, err
	}

	vec := make([]float32, s.dimensions)
	tokens := strings.Fields(strings.ToLower(text))
	for n, tok := range tokens {
		s.accumulate(vec, tok)
		if n > 0 {
			s.accumulate(vec, tokens[n-1]+" "+tok)
		}
	}

	if mag := search.Float32s(vec).Magnitude(); mag > 0 {
		for d := range vec {
			vec[d] /= mag
		}
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts. Each item is
// embedded independently, so batching cannot alter per-item results.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for n, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", n, err)
		}
		out[n] = vec
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *Service) Dimensions() int {
	return s.dimensions
}

// ModelName returns the identifier of the model being used.
func (s *Service) ModelName() string {
	return modelName
}

// Ping always succeeds; the model is in-process arithmetic.
func (s *Service) Ping(_ context.Context) error {
	return nil
}

// Close releases resources. Nothing to release for this backend.
func (s *Service) Close() error {
	return nil
}

// bound applies the configured maximum input length and truncation
// policy.
func (s *Service) bound(text string) (string, error) {
	if s.maxInputChars <= 0 {
		return text, nil
	}
	runes := []rune(text)
	if len(runes) <= s.maxInputChars {
		return text, nil
	}
	if s.truncation == domain.TruncateClip {
		return string(runes[:s.maxInputChars]), nil
	}
	return "", fmt.Errorf("%w: input length %d exceeds model maximum %d",
		domain.ErrEmbedding, len(runes), s.maxInputChars)
}

// accumulate hashes one feature into its bucket, with the hash's top
// bit deciding the sign so collisions tend to cancel.
func (s *Service) accumulate(vec []float32, feature string) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(s.dimensions))
	if sum&(1<<63) != 0 {
		vec[bucket]--
	} else {
		vec[bucket]++
	}
}
