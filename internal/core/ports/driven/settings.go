package driven

import "github.com/arkive-labs/arkive-cli/internal/core/domain"

// SettingsStore persists vault settings per profile.
// Implementations handle storage (e.g., TOML files) and defaults.
type SettingsStore interface {
	// Load reads the settings for the store's profile. When no
	// configuration exists yet, it returns validated defaults.
	Load() (domain.Settings, error)

	// Save persists the settings to storage.
	Save(settings domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}
