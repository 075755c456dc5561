// Package ollama provides an embedding service backed by a local
// Ollama inference runtime. Requests only ever go to the configured
// local endpoint; the vault's offline flag does not gate this backend
// because no traffic leaves the machine.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.EmbeddingService = (*Service)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text default
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// MaxInputChars is the model's maximum input length in
	// characters. Zero means unlimited.
	MaxInputChars int

	// Truncation is the over-length input policy.
	Truncation domain.TruncationPolicy
}

// Service generates embeddings using a local Ollama runtime. The HTTP
// client is created once and held for the process lifetime.
type Service struct {
	client        *http.Client
	baseURL       string
	model         string
	dimensions    int
	maxInputChars int
	truncation    domain.TruncationPolicy
}

// embedRequest is the Ollama API request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the Ollama API response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// New creates a new Ollama embedding service.
func New(cfg Config) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Truncation == "" {
		cfg.Truncation = domain.TruncateError
	}

	return &Service{
		client:        &http.Client{Timeout: cfg.Timeout},
		baseURL:       cfg.BaseURL,
		model:         cfg.Model,
		dimensions:    cfg.Dimensions,
		maxInputChars: cfg.MaxInputChars,
		truncation:    cfg.Truncation,
	}
}

// Embed generates a vector embedding for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	text, err := s.bound(text)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(embedRequest{Model: s.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama unreachable: %w", domain.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("%w: ollama status %d (unreadable body)", domain.ErrEmbedding, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: ollama status %d: %s", domain.ErrEmbedding, resp.StatusCode, string(msg))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrEmbedding, err)
	}
	if len(embedResp.Embedding) != s.dimensions {
		return nil, fmt.Errorf("%w: model returned %d dimensions, expected %d",
			domain.ErrEmbedding, len(embedResp.Embedding), s.dimensions)
	}

	vec := make([]float32, len(embedResp.Embedding))
	for n, v := range embedResp.Embedding {
		vec[n] = float32(v)
	}
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts, preserving input
// order. Ollama has no native batch API, so items are embedded
// sequentially; per-item results are identical to single-item calls.
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
	return s.model
}

// Ping validates the runtime is reachable via the /api/tags endpoint,
// a lightweight check that runs no inference.
func (s *Service) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama unreachable: %w", domain.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama status %d", domain.ErrEmbedding, resp.StatusCode)
	}
	return nil
}

// Close releases resources. The HTTP client needs no explicit cleanup.
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
