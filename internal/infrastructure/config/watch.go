package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 100 * time.Millisecond

// Watcher reloads a config file on change and hands the new value to a
// callback, debounced the same way configwatcher.Plugin coalesces
// bursty filesystem events into a single reload.
type Watcher struct {
	path string

	mu       sync.Mutex
	debounce *time.Timer
}

// NewWatcher creates a Watcher for the config file at path.
func NewWatcher(path string) *Watcher {
	return &Watcher{path: path}
}

// Watch blocks until ctx is cancelled, calling onReload with the
// freshly loaded Config each time the file changes. onReload receives
// a load error instead of a Config if the edited file fails to parse
// or validate — the caller decides whether to keep running on the old
// configuration (pvsimd logs and ignores it). pvsimd applies only
// Logging.Level from a reload; Server.*, Simulation.* and Admin.Port
// changes take effect after a restart.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(ctx, onReload)
		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func (w *Watcher) debounceReload(ctx context.Context, onReload func(*Config, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(watchDebounce, func() {
		if ctx.Err() != nil {
			return
		}
		cfg, err := Load(w.path)
		onReload(cfg, err)
	})
}
