// Package filesystem produces documents from plain-text and Markdown
// files under a local directory. It is the only producer that works in
// offline mode, since it never leaves the machine.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/arkive-labs/arkive-cli/internal/core/domain"
	"github.com/arkive-labs/arkive-cli/internal/core/ports/driving"
	"github.com/arkive-labs/arkive-cli/internal/logger"
)

// Ensure Producer implements the interface.
var _ driving.DocumentProducer = (*Producer)(nil)

// producerName identifies this producer in logs and reports.
const producerName = "filesystem"

// extensions lists the file suffixes treated as ingestible text.
var extensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// Producer walks a directory tree and yields one document per text file.
type Producer struct {
	root string
}

// New creates a producer rooted at dir. The directory must exist.
func New(dir string) (*Producer, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving %s: %v", domain.ErrIngest, dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrIngest, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrIngest, dir)
	}
	return &Producer{root: abs}, nil
}

// Name identifies the producer.
func (p *Producer) Name() string {
	return producerName
}

// Produce walks the root and returns a document per text file, sorted
// by path for deterministic ingestion order.
func (p *Producer) Produce(ctx context.Context) ([]domain.Document, error) {
	var paths []string
	err := filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != p.root {
				return filepath.SkipDir
			}
			return nil
		}
		if extensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %v", domain.ErrIngest, p.root, err)
	}
	sort.Strings(paths)

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		doc, err := p.load(path)
		if err != nil {
			logger.Warn("filesystem: skipping %s: %v", path, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Watch emits a document every time a text file under the root is
// created or written. The channel closes when ctx is cancelled.
func (p *Producer) Watch(ctx context.Context) (<-chan domain.Document, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: creating watcher: %v", domain.ErrIngest, err)
	}

	// Watch the whole tree; fsnotify does not recurse on its own.
	err = filepath.WalkDir(p.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("%w: watching %s: %v", domain.ErrIngest, p.root, err)
	}

	out := make(chan domain.Document)
	go func() {
		defer close(out)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if event.Has(fsnotify.Create) {
						watcher.Add(event.Name)
					}
					continue
				}
				if !extensions[strings.ToLower(filepath.Ext(event.Name))] {
					continue
				}
				doc, err := p.load(event.Name)
				if err != nil {
					logger.Warn("filesystem: skipping %s: %v", event.Name, err)
					continue
				}
				select {
				case out <- doc:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("filesystem: watch error: %v", err)
			}
		}
	}()
	return out, nil
}

// load reads one file into a document.
func (p *Producer) load(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	content := string(data)

	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		rel = path
	}

	// The ID is derived from the path alone: an edited file keeps its
	// identifier, so re-ingesting it replaces the previous chunks and
	// vectors instead of accumulating a second document.
	return domain.Document{
		ID:         domain.DeriveDocumentID(path, ""),
		Kind:       domain.SourceNote,
		Title:      title(path, content),
		Origin:     path,
		Content:    content,
		IngestedAt: time.Now().UTC(),
		Metadata: map[string]any{
			"producer": producerName,
			"path":     rel,
		},
	}, nil
}

// title picks the first Markdown heading if the file has one, and
// falls back to the file name without extension.
func title(path, content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "# "))
		}
		break
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
