package storage

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ExternalChange reports that a backing file for an unloaded storage changed
// on disk. The core never reloads automatically on receipt of this event;
// it is surfaced so the host can decide whether to reload or warn the user.
type ExternalChange struct {
	Path string
	Op   fsnotify.Op
}

// Watcher optionally watches the backing file paths of unloaded storages for
// external modification (another process writing the file, a git checkout,
// and so on). It is entirely separate from the core write path: nothing
// about apply or chunk loading depends on it.
//
// Grounded in internal/project/watcher/fsnotify.go's fsnotify wiring,
// repurposed here from whole-project-tree watching to single-file
// backing-store watching.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	paths   map[string]bool
	changes chan ExternalChange
	done    chan struct{}
}

// NewWatcher creates a Watcher. Call Close when done to release the
// underlying OS resources.
func NewWatcher() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("storage: create watcher: %w", err)
	}
	w := &Watcher{
		fsw:     fsw,
		paths:   make(map[string]bool),
		changes: make(chan ExternalChange, 16),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch adds a backing file path to the watch set. It is safe to call for
// paths already being watched.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.paths[path] {
		return nil
	}
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("storage: watch %s: %w", path, err)
	}
	w.paths[path] = true
	return nil
}

// Unwatch removes a path from the watch set.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.paths[path] {
		return nil
	}
	delete(w.paths, path)
	return w.fsw.Remove(path)
}

// Changes returns the channel on which ExternalChange events are delivered.
func (w *Watcher) Changes() <-chan ExternalChange {
	return w.changes
}

func (w *Watcher) run() {
	defer close(w.changes)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			select {
			case w.changes <- ExternalChange{Path: ev.Name, Op: ev.Op}:
			case <-w.done:
				return
			}
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher and releases OS resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
