package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is how long to wait after the last write event before
// processing a file. Exports are often written in several chunks; without
// the delay we would read half a file.
const debounceDelay = 500 * time.Millisecond

// Handler processes one export file. It is called from the watcher goroutine
// once per settled file.
type Handler func(path string)

// Watcher monitors a directory for CSV exports and invokes the handler for
// each new or rewritten file.
type Watcher struct {
	dir     string
	handler Handler

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a Watcher for the given directory. The directory is created if
// it does not exist.
func New(dir string, h Handler) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("watcher: create input dir: %w", err)
	}
	return &Watcher{
		dir:     dir,
		handler: h,
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run processes all CSV files already in the directory, then blocks watching
// for new ones until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", w.dir, err)
	}

	w.processExisting()

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !isCSV(ev.Name) {
				continue
			}
			w.schedule(ev.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

// processExisting handles files that were dropped into the directory before
// the server started.
func (w *Watcher) processExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		slog.Error("cannot list input dir", "dir", w.dir, "error", err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !isCSV(e.Name()) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		slog.Info("processing existing export", "path", path)
		w.handler(path)
	}
}

// schedule arms (or re-arms) the debounce timer for path. The handler runs
// only after the file has been quiet for debounceDelay.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(debounceDelay)
		return
	}
	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.handler(path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
