package index

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the index whenever a new root/<modelKey> directory is
// published by Write.
type Watcher struct {
	root    string
	key     string
	holder  *Holder
	watcher *fsnotify.Watcher

	// OnSwap, when set, is called after each successful reload.
	OnSwap func(*Index)
}

func NewWatcher(root, modelKey string, holder *Holder) (*Watcher, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(root); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return &Watcher{root: root, key: modelKey, holder: holder, watcher: w}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	log.Printf("Watching %s for index updates (model %s)", w.root, w.key)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != w.key || !event.Has(fsnotify.Create) {
				continue
			}
			idx, err := Load(w.root, w.key)
			if err != nil {
				log.Printf("Warning: index reload failed: %v", err)
				continue
			}
			w.holder.Store(idx)
			log.Printf("Reloaded index %s: %d items, dimension %d", w.key, idx.Stats.NumItems, idx.Stats.Dimension)
			if w.OnSwap != nil {
				w.OnSwap(idx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
