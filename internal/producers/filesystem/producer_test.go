package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestNew_RejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, domain.ErrIngest)
}

func TestNew_RejectsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hi")

	_, err := New(path)
	assert.ErrorIs(t, err, domain.ErrIngest)
}

func TestProduce_CollectsTextFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.md", "# Heading\n\nbody")
	writeFile(t, dir, "a.txt", "plain text")
	writeFile(t, dir, "sub/c.markdown", "nested")
	writeFile(t, dir, "ignore.pdf", "binary")

	p, err := New(dir)
	require.NoError(t, err)

	docs, err := p.Produce(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	// Sorted by path: a.txt, b.md, sub/c.markdown.
	assert.Equal(t, "a", docs[0].Title)
	assert.Equal(t, "Heading", docs[1].Title)
	assert.Equal(t, domain.SourceNote, docs[0].Kind)
	assert.Equal(t, "plain text", docs[0].Content)
	assert.Equal(t, producerName, docs[0].Metadata["producer"])
}

func TestProduce_SkipsHiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git/notes.txt", "internal")
	writeFile(t, dir, "visible.txt", "hello")

	p, err := New(dir)
	require.NoError(t, err)

	docs, err := p.Produce(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "visible", docs[0].Title)
}

func TestProduce_DeterministicIDs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "same content")

	p, err := New(dir)
	require.NoError(t, err)

	first, err := p.Produce(context.Background())
	require.NoError(t, err)
	second, err := p.Produce(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestProduce_EditedFileKeepsID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "first draft")

	p, err := New(dir)
	require.NoError(t, err)

	before, err := p.Produce(context.Background())
	require.NoError(t, err)
	require.Len(t, before, 1)

	writeFile(t, dir, "a.txt", "second draft, fully rewritten")

	after, err := p.Produce(context.Background())
	require.NoError(t, err)
	require.Len(t, after, 1)

	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, "second draft, fully rewritten", after[0].Content)
}

func TestProduce_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "content")

	p, err := New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Produce(ctx)
	assert.Error(t, err)
}

func TestWatch_EmitsOnWrite(t *testing.T) {
	dir := t.TempDir()

	p, err := New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, err := p.Watch(ctx)
	require.NoError(t, err)

	writeFile(t, dir, "fresh.txt", "new note")

	select {
	case doc := <-out:
		assert.Equal(t, "new note", doc.Content)
		assert.Equal(t, "fresh", doc.Title)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
	}
}

func TestWatch_ClosesOnCancel(t *testing.T) {
	dir := t.TempDir()

	p, err := New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out, err := p.Watch(ctx)
	require.NoError(t, err)

	cancel()

	select {
	case _, open := <-out:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestTitle_FallsBackToFileName(t *testing.T) {
	assert.Equal(t, "notes", title("/tmp/notes.md", "no heading here"))
	assert.Equal(t, "Top", title("/tmp/notes.md", "\n\n# Top\nbody"))
}
