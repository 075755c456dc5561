// Package file provides a TOML-backed settings store. Each profile
// owns one file under the config directory, so several vaults can
// live side by side on the same machine.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// fileSettings is the on-disk TOML shape. Kept separate from
// domain.Settings so field renames stay a deliberate migration.
type fileSettings struct {
	DataDir string `toml:"data_dir,omitempty"`
	Offline bool   `toml:"offline,omitempty"`

	Chunking struct {
		Size    int `toml:"size,omitempty"`
		Overlap int `toml:"overlap,omitempty"`
	} `toml:"chunking"`

	Index struct {
		Kind   string `toml:"kind,omitempty"`
		Metric string `toml:"metric,omitempty"`
	} `toml:"index"`

	Embedding struct {
		Provider      string `toml:"provider,omitempty"`
		Model         string `toml:"model,omitempty"`
		BaseURL       string `toml:"base_url,omitempty"`
		Dimensions    int    `toml:"dimensions,omitempty"`
		MaxInputChars int    `toml:"max_input_chars,omitempty"`
		Truncation    string `toml:"truncation,omitempty"`
	} `toml:"embedding"`

	Query struct {
		PerDocument int     `toml:"per_document,omitempty"`
		MinScore    float64 `toml:"min_score,omitempty"`
	} `toml:"query"`
}

// SettingsStore is a TOML file implementation of driven.SettingsStore.
type SettingsStore struct {
	mu       sync.Mutex
	profile  string
	filePath string
}

// NewSettingsStore creates a settings store for the given profile.
// If configDir is empty, defaults to ~/.arkive.
func NewSettingsStore(configDir, profile string) (*SettingsStore, error) {
	if profile == "" {
		profile = domain.DefaultProfile
	}
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: resolving home directory: %v", domain.ErrConfig, err)
		}
		configDir = filepath.Join(home, ".arkive")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating config directory: %v", domain.ErrConfig, err)
	}

	return &SettingsStore{
		profile:  profile,
		filePath: filepath.Join(configDir, profile+".toml"),
	}, nil
}

// Load reads the settings file. A missing file yields defaults; a
// present file overrides defaults field by field.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.DefaultSettings()
	settings.Profile = s.profile

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		return settings, nil
	}
	if err != nil {
		return domain.Settings{}, fmt.Errorf("%w: reading %s: %v", domain.ErrConfig, s.filePath, err)
	}

	var fs fileSettings
	if err := toml.Unmarshal(data, &fs); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: parsing %s: %v", domain.ErrConfig, s.filePath, err)
	}

	apply(&settings, fs)
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Save writes the settings to the profile's TOML file.
func (s *SettingsStore) Save(settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fs fileSettings
	fs.DataDir = settings.DataDir
	fs.Offline = settings.Offline
	fs.Chunking.Size = settings.ChunkSize
	fs.Chunking.Overlap = settings.ChunkOverlap
	fs.Index.Kind = settings.IndexKind.String()
	fs.Index.Metric = settings.Metric.String()
	fs.Embedding.Provider = settings.Provider.String()
	fs.Embedding.Model = settings.Model
	fs.Embedding.BaseURL = settings.BaseURL
	fs.Embedding.Dimensions = settings.Dimensions
	fs.Embedding.MaxInputChars = settings.MaxInputChars
	fs.Embedding.Truncation = string(settings.Truncation)
	fs.Query.PerDocument = settings.PerDocument
	fs.Query.MinScore = settings.MinScore

	data, err := toml.Marshal(fs)
	if err != nil {
		return fmt.Errorf("%w: encoding settings: %v", domain.ErrConfig, err)
	}
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", domain.ErrConfig, s.filePath, err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

// apply overlays non-zero file values onto the defaults.
func apply(settings *domain.Settings, fs fileSettings) {
	if fs.DataDir != "" {
		settings.DataDir = fs.DataDir
	}
	settings.Offline = fs.Offline
	if fs.Chunking.Size > 0 {
		settings.ChunkSize = fs.Chunking.Size
	}
	if fs.Chunking.Overlap > 0 {
		settings.ChunkOverlap = fs.Chunking.Overlap
	}
	if fs.Index.Kind != "" {
		settings.IndexKind = domain.IndexKind(fs.Index.Kind)
	}
	if fs.Index.Metric != "" {
		settings.Metric = domain.Metric(fs.Index.Metric)
	}
	if fs.Embedding.Provider != "" {
		settings.Provider = domain.EmbeddingProvider(fs.Embedding.Provider)
	}
	if fs.Embedding.Model != "" {
		settings.Model = fs.Embedding.Model
	}
	if fs.Embedding.BaseURL != "" {
		settings.BaseURL = fs.Embedding.BaseURL
	}
	if fs.Embedding.Dimensions > 0 {
		settings.Dimensions = fs.Embedding.Dimensions
	}
	if fs.Embedding.MaxInputChars > 0 {
		settings.MaxInputChars = fs.Embedding.MaxInputChars
	}
	if fs.Embedding.Truncation != "" {
		settings.Truncation = domain.TruncationPolicy(fs.Embedding.Truncation)
	}
	if fs.Query.PerDocument > 0 {
		settings.PerDocument = fs.Query.PerDocument
	}
	if fs.Query.MinScore > 0 {
		settings.MinScore = fs.Query.MinScore
	}
}
