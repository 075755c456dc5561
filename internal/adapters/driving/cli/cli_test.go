package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [text]", queryCmd.Use)
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_HasLimitFlag(t *testing.T) {
	flag := queryCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "10", flag.DefValue)
}

func TestQueryCmd_HasFilterFlags(t *testing.T) {
	assert.NotNil(t, queryCmd.Flags().Lookup("kind"))
	assert.NotNil(t, queryCmd.Flags().Lookup("document"))
	assert.NotNil(t, queryCmd.Flags().Lookup("per-document"))
	assert.NotNil(t, queryCmd.Flags().Lookup("min-score"))
	assert.NotNil(t, queryCmd.Flags().Lookup("json"))
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [path]", ingestCmd.Use)
	assert.NotNil(t, ingestCmd.Flags().Lookup("watch"))
}

func TestRemoveCmd_Use(t *testing.T) {
	assert.Equal(t, "remove [document-id]", removeCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	profile := rootCmd.PersistentFlags().Lookup("profile")
	require.NotNil(t, profile)
	assert.Equal(t, domain.DefaultProfile, profile.DefValue)

	verbose := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "arkive version")
}

func TestSnippet_CollapsesAndTruncates(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n b\t\tc", 100))
	assert.Equal(t, "abcd…", snippet("abcdefgh", 4))
}

func TestApplySetting(t *testing.T) {
	settings := domain.DefaultSettings()

	require.NoError(t, applySetting(&settings, "chunk-size", "500"))
	assert.Equal(t, 500, settings.ChunkSize)

	require.NoError(t, applySetting(&settings, "metric", "euclidean"))
	assert.Equal(t, domain.MetricEuclidean, settings.Metric)

	require.NoError(t, applySetting(&settings, "offline", "true"))
	assert.True(t, settings.Offline)

	err := applySetting(&settings, "offline", "maybe")
	assert.ErrorIs(t, err, domain.ErrConfig)

	err = applySetting(&settings, "no-such-key", "x")
	assert.ErrorIs(t, err, domain.ErrConfig)
}
