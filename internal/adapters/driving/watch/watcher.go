// Package watch ingests PDFs dropped into an inbox directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pagelens/internal/adapters/driving/upload"
	"github.com/custodia-labs/pagelens/internal/core/domain"
	"github.com/custodia-labs/pagelens/internal/core/ports/driving"
	"github.com/custodia-labs/pagelens/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is ingested.
const DefaultSettle = 500 * time.Millisecond

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("watcher is closed")

// ResultFunc receives the outcome of every ingest attempt.
type ResultFunc func(path string, res *domain.IngestResult, err error)

// Options configures a Watcher.
type Options struct {
	// Settle is the quiet period after the last write (default DefaultSettle).
	Settle time.Duration

	// OnResult is called after each ingest attempt. Optional.
	OnResult ResultFunc
}

// Watcher ingests every PDF created or rewritten in a directory.
type Watcher struct {
	dir    string
	ingest driving.IngestService
	settle time.Duration
	report ResultFunc

	mu     sync.Mutex
	closed bool
	fsw    *fsnotify.Watcher
}

// New creates a watcher for dir.
func New(dir string, ingest driving.IngestService, opts Options) *Watcher {
	settle := opts.Settle
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:    dir,
		ingest: ingest,
		settle: settle,
		report: opts.OnResult,
	}
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run creates the directory if needed, ingests PDFs already present, then
// watches for new ones until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating inbox: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		fsw.Close()
		return ErrClosed
	}
	w.fsw = fsw
	w.mu.Unlock()
	defer w.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	if err := w.scan(ctx); err != nil {
		return err
	}

	logger.Infow("watching inbox", "dir", w.dir)
	return w.loop(ctx, fsw)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

// scan ingests PDFs already in the directory, in name order.
func (w *Watcher) scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading inbox: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && isCandidate(e.Name()) {
			paths = append(paths, filepath.Join(w.dir, e.Name()))
		}
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil
		}
		w.ingestFile(ctx, p)
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) error {
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path := w.handleFsEvent(event); path != "" {
				pending[path] = time.Now()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("inbox watcher: %v", err)

		case now := <-ticker.C:
			for _, path := range due(pending, now, w.settle) {
				delete(pending, path)
				w.ingestFile(ctx, path)
			}
		}
	}
}

// handleFsEvent returns the path to ingest for event, or "" to ignore it.
func (w *Watcher) handleFsEvent(event fsnotify.Event) string {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return ""
	}
	if !isCandidate(filepath.Base(event.Name)) {
		return ""
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	return event.Name
}

// due returns the pending paths quiet for at least settle, sorted.
func due(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	data, err := upload.ReadFile(path, w.ingest.Limits().MaxUploadBytes)
	if err != nil {
		w.done(path, nil, err)
		return
	}
	res, err := w.ingest.Ingest(ctx, data, filepath.Base(path))
	w.done(path, res, err)
}

func (w *Watcher) done(path string, res *domain.IngestResult, err error) {
	switch {
	case err != nil:
		logger.Warnw("inbox ingest failed", "file", filepath.Base(path), "error", err)
	case res.IsNew:
		logger.Infow("inbox ingested", "file", filepath.Base(path), "doc_id", res.DocID, "pages", res.NumPages)
	default:
		logger.Debug("inbox file %s already indexed as %s", filepath.Base(path), res.DocID)
	}
	if w.report != nil {
		w.report(path, res, err)
	}
}

// isCandidate reports whether a file name looks like a visible PDF.
func isCandidate(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(strings.ToLower(name), ".pdf")
}
