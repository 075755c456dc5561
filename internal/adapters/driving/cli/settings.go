package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	configfile "github.com/arkive-labs/arkive-cli/internal/adapters/driven/config/file"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage vault settings",
	Long: `View and configure chunking, indexing, and embedding settings for
the active profile. Settings live in a per-profile TOML file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a settings value",
	Long: `Set a settings value and persist it to the profile's TOML file.

Available keys:
  chunk-size      chunk length in characters
  chunk-overlap   overlap between consecutive chunks
  metric          similarity metric (cosine, euclidean)
  index           index kind (flat, ivf)
  provider        embedding backend (hash, ollama)
  model           embedding model identifier
  base-url        local runtime endpoint (ollama)
  dimensions      embedding vector size
  max-input-chars embedding input length limit (0 = unlimited)
  truncation      over-length input policy (error, truncate)
  offline         gate network producers (true, false)
  min-score       default minimum similarity score`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	store, err := configfile.NewSettingsStore("", flagProfile)
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return err
	}

	cmd.Printf("Profile: %s (%s)\n", settings.Profile, store.Path())
	cmd.Println()
	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.ChunkOverlap)
	cmd.Println()
	cmd.Println("[Index]")
	cmd.Printf("  Kind: %s\n", settings.IndexKind)
	cmd.Printf("  Metric: %s\n", settings.Metric.Description())
	cmd.Println()
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Provider.Description())
	if settings.Model != "" {
		cmd.Printf("  Model: %s\n", settings.Model)
	}
	if settings.Provider == domain.ProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.BaseURL)
	}
	cmd.Printf("  Dimensions: %d\n", settings.Dimensions)
	if settings.MaxInputChars > 0 {
		cmd.Printf("  Max input: %d characters (%s)\n", settings.MaxInputChars, settings.Truncation)
	}
	cmd.Println()
	cmd.Printf("Offline: %t\n", settings.Offline)
	if settings.MinScore > 0 {
		cmd.Printf("Minimum score: %.3f\n", settings.MinScore)
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := strings.ToLower(args[0]), args[1]

	store, err := configfile.NewSettingsStore("", flagProfile)
	if err != nil {
		return err
	}
	settings, err := store.Load()
	if err != nil {
		return err
	}

	if err := applySetting(&settings, key, value); err != nil {
		return err
	}
	if err := store.Save(settings); err != nil {
		return err
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func applySetting(settings *domain.Settings, key, value string) error {
	switch key {
	case "chunk-size":
		return setInt(&settings.ChunkSize, key, value)
	case "chunk-overlap":
		return setInt(&settings.ChunkOverlap, key, value)
	case "metric":
		settings.Metric = domain.Metric(value)
	case "index":
		settings.IndexKind = domain.IndexKind(value)
	case "provider":
		settings.Provider = domain.EmbeddingProvider(value)
	case "model":
		settings.Model = value
	case "base-url":
		settings.BaseURL = value
	case "dimensions":
		return setInt(&settings.Dimensions, key, value)
	case "max-input-chars":
		return setInt(&settings.MaxInputChars, key, value)
	case "truncation":
		settings.Truncation = domain.TruncationPolicy(value)
	case "offline":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrConfig, key)
		}
		settings.Offline = b
	case "min-score":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrConfig, key)
		}
		settings.MinScore = f
	default:
		return fmt.Errorf("%w: unknown settings key %q", domain.ErrConfig, key)
	}
	return nil
}

func setInt(target *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer", domain.ErrConfig, key)
	}
	*target = n
	return nil
}
