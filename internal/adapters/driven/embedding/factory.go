// Package embedding constructs embedding services from configuration.
// The backend is selected once at startup by an explicit factory keyed
// on the provider enumeration; there is no dynamic discovery.
package embedding

import (
	"fmt"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/embedding/hash"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/embedding/ollama"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// New creates the embedding service for the configured provider.
func New(settings domain.Settings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.ProviderHash:
		return hash.New(hash.Config{
			Dimensions:    settings.Dimensions,
			MaxInputChars: settings.MaxInputChars,
			Truncation:    settings.Truncation,
		}), nil

	case domain.ProviderOllama:
		return ollama.New(ollama.Config{
			BaseURL:       settings.BaseURL,
			Model:         settings.Model,
			Dimensions:    settings.Dimensions,
			MaxInputChars: settings.MaxInputChars,
			Truncation:    settings.Truncation,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfig, settings.Provider)
	}
}
