// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch reruns a callback when input files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/pubsite/internal/logger"
)

// DefaultDebounce coalesces the burst of events one editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher watches a fixed set of files.
type Watcher struct {
	files    map[string]bool
	dirs     map[string]bool
	debounce time.Duration
}

// New returns a Watcher for files. Empty paths are ignored. The parent
// directories are what is actually watched, since editors often replace a
// file by renaming a new one over it.
func New(files []string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: debounce,
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
		w.dirs[filepath.Dir(abs)] = true
	}
	return w, nil
}

// Empty reports whether there is nothing to watch.
func (w *Watcher) Empty() bool { return len(w.files) == 0 }

// Relevant reports whether ev touches one of the watched files.
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Run calls fn after each settled change until ctx is done. Errors from fn
// are logged and do not stop the loop.
func (w *Watcher) Run(ctx context.Context, fn func() error) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	for dir := range w.dirs {
		if err := fsw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		logger.Debug("watching %s", dir)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.Relevant(ev) {
				logger.Debug("change: %s", ev)
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		case <-timer.C:
			if err := fn(); err != nil {
				logger.Warn("rebuild failed: %v", err)
			}
		}
	}
}
