// Package watcher recursively observes a tenant's project directory and
// triggers a rebuild-and-swap when a relevant file changes. Unlike Viper's
// single-file WatchConfig, this watches an entire directory tree with a
// debounce window and a relevance filter, so it uses fsnotify directly.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/edgerun/edgerun/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last relevant event before
// a rebuild fires, absorbing editor save bursts and bulk file operations.
const DefaultDebounce = 2 * time.Second

// RebuildFunc performs one build-and-swap cycle for the watched directory.
// Its error is logged; the watcher never stops running because one
// rebuild failed.
type RebuildFunc func(ctx context.Context) error

// Watcher recursively watches root and calls Rebuild whenever a batch of
// changes contains at least one relevant path.
type Watcher struct {
	root     string
	debounce time.Duration
	rebuild  RebuildFunc
	logger   *logging.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

// New creates a Watcher for root. debounce <= 0 uses DefaultDebounce.
func New(root string, debounce time.Duration, rebuild RebuildFunc, logger *logging.Logger) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{root: root, debounce: debounce, rebuild: rebuild, logger: logger, fsw: fsw}

	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// isRelevant reports whether path should trigger a rebuild: a path ending
// in config.yml, or a .ts/.mjs script source file.
func isRelevant(path string) bool {
	if strings.HasSuffix(path, "config.yml") {
		return true
	}
	switch filepath.Ext(path) {
	case ".ts", ".mjs":
		return true
	}
	return false
}

// Run blocks, dispatching debounced rebuilds until ctx is cancelled. Build
// failures are logged; the previous bundle stays in effect.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := statIsDir(event.Name); err == nil && info {
					w.fsw.Add(event.Name)
				}
			}

			if !isRelevant(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			w.scheduleRebuild(ctx)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", logging.Err(err))
		}
	}
}

func statIsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

// scheduleRebuild resets the debounce timer; only the last event in a burst
// actually triggers a rebuild.
func (w *Watcher) scheduleRebuild(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		if err := w.rebuild(ctx); err != nil {
			w.logger.Error("rebuild failed, retaining previous bundle",
				"root", w.root, logging.Err(err))
		}
	})
}

// Close stops the underlying fsnotify watcher immediately.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
