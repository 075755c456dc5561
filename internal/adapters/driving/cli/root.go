// Package cli implements the arkive command-line interface. Commands
// share one vault instance, opened lazily on first use and flushed
// when the process exits.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/chunker"
	configfile "github.com/arkive-labs/arkive-cli/internal/adapters/driven/config/file"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/embedding"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/snapshot"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/storage/sqlite"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/services"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagProfile string
	flagVerbose bool

	vault         *services.Vault
	vaultSettings domain.Settings
)

var rootCmd = &cobra.Command{
	Use:   "arkive",
	Short: "Local semantic retrieval over your documents",
	Long: `Arkive ingests local documents into a searchable vault and answers
natural-language queries by vector similarity. Everything runs on the
local machine; no document content ever leaves it.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", domain.DefaultProfile,
		"configuration profile to use")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable verbose logging")
}

// Execute runs the root command and flushes the vault on exit.
func Execute() {
	err := rootCmd.Execute()
	if closeErr := closeVault(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error: closing vault: %v\n", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// openVault builds the shared vault on first use: settings are loaded
// for the active profile, adapters are wired, and the latest snapshot
// is restored.
func openVault(ctx context.Context) (*services.Vault, error) {
	if vault != nil {
		return vault, nil
	}

	settingsStore, err := configfile.NewSettingsStore("", flagProfile)
	if err != nil {
		return nil, err
	}
	settings, err := settingsStore.Load()
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded settings from %s", settingsStore.Path())

	dataDir := settings.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: resolving home directory: %v", domain.ErrConfig, err)
		}
		dataDir = filepath.Join(home, ".arkive", settings.Profile)
	}

	split, err := chunker.New(settings.ChunkSize, settings.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	embedder, err := embedding.New(settings)
	if err != nil {
		return nil, err
	}
	if err := embedder.Ping(ctx); err != nil {
		return nil, err
	}
	idx, err := index.New(settings.IndexKind, embedder.Dimensions(), settings.Metric)
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	snapshots, err := snapshot.New(dataDir)
	if err != nil {
		return nil, err
	}

	v := services.NewVault(split, embedder, idx, store, snapshots)
	if err := v.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restoring vault: %w", err)
	}

	vault = v
	vaultSettings = settings
	return vault, nil
}

// closeVault flushes and releases the shared vault, if one was opened.
func closeVault() error {
	if vault == nil {
		return nil
	}
	err := vault.Close()
	vault = nil
	return err
}
