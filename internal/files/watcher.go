package files

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives the configured paths that changed, sorted
type ChangeFunc func(ctx context.Context, paths []string)

// Watcher watches the directories holding the configured files and reports
// changes once a path has been quiet for the debounce interval
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	paths    map[string]struct{}
	dirs     []string
	debounce time.Duration
	pending  map[string]time.Time
	onChange ChangeFunc
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher creates a watcher for paths. Nothing is watched until Start.
func NewWatcher(paths []string, debounce time.Duration, onChange ChangeFunc, logger *slog.Logger) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watcher needs a change callback")
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fw,
		paths:    make(map[string]struct{}, len(paths)),
		debounce: debounce,
		pending:  make(map[string]time.Time),
		onChange: onChange,
		logger:   logger.With(slog.String("component", "file_watcher")),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	seen := map[string]struct{}{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		w.paths[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}
	sort.Strings(w.dirs)

	return w, nil
}

// Start begins watching. It returns an error only when no directory could be
// watched; the event loop runs until Stop or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}

	watched := 0
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("cannot watch data directory", slog.String("dir", dir), slog.String("error", err.Error()))
			continue
		}
		watched++
	}
	if watched == 0 && len(w.dirs) > 0 {
		w.mu.Unlock()
		return fmt.Errorf("no data directory could be watched")
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("watching data files", slog.Any("dirs", w.dirs), slog.Duration("debounce", w.debounce))
	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for it and releases the watch
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing file watcher", slog.String("error", err.Error()))
	}
	w.logger.Info("file watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	tick := w.debounce / 5
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		path = filepath.Clean(event.Name)
	}
	if _, ok := w.paths[path]; !ok {
		return
	}

	w.logger.Debug("data file event", slog.String("path", path), slog.String("op", event.Op.String()))
	w.pending[path] = time.Now()
}

// flush reports every pending path that has been quiet for the debounce interval
func (w *Watcher) flush(ctx context.Context, now time.Time) {
	var ready []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	if len(ready) == 0 {
		return
	}
	sort.Strings(ready)

	w.logger.Info("data files changed", slog.Any("paths", ready))
	w.onChange(ctx, ready)
}
