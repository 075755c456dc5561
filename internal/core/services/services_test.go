package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/chunker"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/embedding/hash"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/index/flat"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/snapshot"
	"github.com/arkive-labs/arkive-cli/internal/adapters/driven/storage/memory"
	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driven"
)

const testDimensions = 64

// newTestVault wires a vault over real in-process adapters: rune
// chunker, feature-hash embedder, flat index, in-memory store, and a
// snapshot store under dir.
func newTestVault(t *testing.T, dir string, store driven.DocumentStore) *Vault {
	t.Helper()

	split, err := chunker.New(50, 10)
	require.NoError(t, err)

	embedder := hash.New(hash.Config{Dimensions: testDimensions})

	index, err := flat.New(testDimensions, domain.MetricCosine)
	require.NoError(t, err)

	snapshots, err := snapshot.New(dir)
	require.NoError(t, err)

	if store == nil {
		store = memory.NewDocumentStore()
	}
	return NewVault(split, embedder, index, store, snapshots)
}

func testDocument(id, title, content string, kind domain.SourceKind) domain.Document {
	return domain.Document{
		ID:         id,
		Kind:       kind,
		Title:      title,
		Origin:     "test://" + id,
		Content:    content,
		IngestedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}
