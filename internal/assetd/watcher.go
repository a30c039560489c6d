package assetd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a mesh file must stay quiet before it is announced.
const DefaultDebounce = 250 * time.Millisecond

// Watcher announces meshes that are created or rewritten in a directory.
type Watcher struct {
	Dir      string
	Debounce time.Duration

	log *slog.Logger
}

// NewWatcher returns a Watcher for dir with the default debounce.
func NewWatcher(dir string, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{Dir: dir, Debounce: DefaultDebounce, log: log}
}

// Run watches until ctx is cancelled, calling announce with the file name of every settled mesh.
// A burst of writes to one file yields one call.
func (w *Watcher) Run(ctx context.Context, announce func(name string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("assetd: watch: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("assetd: watch %s: %w", w.Dir, err)
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range pending {
			t.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(event.Name)
			if !IsMesh(name) || !(event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) {
				continue
			}
			mu.Lock()
			if t, ok := pending[name]; ok {
				t.Reset(w.Debounce)
			} else {
				var t *time.Timer
				t = time.AfterFunc(w.Debounce, func() {
					mu.Lock()
					if pending[name] == t {
						delete(pending, name)
					}
					mu.Unlock()
					if ctx.Err() == nil {
						announce(name)
					}
				})
				pending[name] = t
			}
			mu.Unlock()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "dir", w.Dir, "err", err)
		}
	}
}
