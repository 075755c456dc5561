package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings_Valid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero chunk size", func(s *Settings) { s.ChunkSize = 0 }},
		{"negative overlap", func(s *Settings) { s.ChunkOverlap = -1 }},
		{"overlap equals size", func(s *Settings) { s.ChunkOverlap = s.ChunkSize }},
		{"overlap exceeds size", func(s *Settings) { s.ChunkOverlap = s.ChunkSize + 1 }},
		{"unknown metric", func(s *Settings) { s.Metric = "manhattan" }},
		{"unknown index kind", func(s *Settings) { s.IndexKind = "hnsw" }},
		{"unknown provider", func(s *Settings) { s.Provider = "openai" }},
		{"unknown truncation", func(s *Settings) { s.Truncation = "wrap" }},
		{"negative dimensions", func(s *Settings) { s.Dimensions = -1 }},
		{"negative min score", func(s *Settings) { s.MinScore = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrConfig)
		})
	}
}

func TestMetric_IsValid(t *testing.T) {
	assert.True(t, MetricCosine.IsValid())
	assert.True(t, MetricEuclidean.IsValid())
	assert.False(t, Metric("dot").IsValid())
}

func TestIndexKind_IsValid(t *testing.T) {
	assert.True(t, IndexFlat.IsValid())
	assert.True(t, IndexIVF.IsValid())
	assert.False(t, IndexKind("annoy").IsValid())
}
