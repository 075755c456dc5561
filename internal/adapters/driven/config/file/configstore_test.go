package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), "default")
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChunkSize, settings.ChunkSize)
	assert.Equal(t, domain.MetricCosine, settings.Metric)
	assert.Equal(t, domain.ProviderHash, settings.Provider)
	assert.Equal(t, "default", settings.Profile)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSettingsStore(dir, "work")
	require.NoError(t, err)

	want := domain.DefaultSettings()
	want.Profile = "work"
	want.ChunkSize = 500
	want.ChunkOverlap = 50
	want.Metric = domain.MetricEuclidean
	want.IndexKind = domain.IndexIVF
	want.Provider = domain.ProviderOllama
	want.Model = "nomic-embed-text"
	want.BaseURL = "http://localhost:11434"
	want.Dimensions = 768
	want.MaxInputChars = 8000
	want.Truncation = domain.TruncateClip
	want.Offline = true
	want.MinScore = 0.3

	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_RejectsInvalidSettings(t *testing.T) {
	store, err := NewSettingsStore(t.TempDir(), "default")
	require.NoError(t, err)

	bad := domain.DefaultSettings()
	bad.ChunkOverlap = bad.ChunkSize

	assert.ErrorIs(t, store.Save(bad), domain.ErrConfig)
}

func TestLoad_PartialFileOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chunking]\nsize = 400\n"), 0600))

	store, err := NewSettingsStore(dir, "default")
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 400, settings.ChunkSize)
	assert.Equal(t, domain.DefaultChunkOverlap, settings.ChunkOverlap)
	assert.Equal(t, domain.IndexFlat, settings.IndexKind)
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.toml"), []byte("not = [valid"), 0600))

	store, err := NewSettingsStore(dir, "default")
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoad_InvalidValueFailsValidation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.toml"),
		[]byte("[index]\nmetric = \"manhattan\"\n"), 0600))

	store, err := NewSettingsStore(dir, "default")
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestProfilesUseSeparateFiles(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSettingsStore(dir, "alpha")
	require.NoError(t, err)
	b, err := NewSettingsStore(dir, "beta")
	require.NoError(t, err)

	assert.NotEqual(t, a.Path(), b.Path())

	settings := domain.DefaultSettings()
	settings.ChunkSize = 333
	settings.ChunkOverlap = 33
	require.NoError(t, a.Save(settings))

	fromB, err := b.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultChunkSize, fromB.ChunkSize)
}
