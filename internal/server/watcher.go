package server

import (
	"context"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/pandacode/pandacode/internal/workspace"
)

// ChangeEvent describes one filesystem change inside the workspace,
// pushed to event channel subscribers as an fs.changed frame.
type ChangeEvent struct {
	Path string `json:"path"` // workspace-relative
	Op   string `json:"op"`   // create, write, remove, rename, chmod
}

// Watcher observes the workspace tree with fsnotify and fans events out
// to subscribers. fsnotify does not recurse, so every directory is
// watched individually and new directories are added as they appear.
type Watcher struct {
	resolver *workspace.Resolver
	fsw      *fsnotify.Watcher

	mu     sync.Mutex
	nextID int
	subs   map[int]func(ChangeEvent)
}

// NewWatcher creates a watcher rooted at the resolver's workspace and
// registers all existing non-hidden directories.
func NewWatcher(resolver *workspace.Resolver) (*Watcher, error) {
	if resolver == nil {
		panic("resolver is required")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		resolver: resolver,
		fsw:      fsw,
		subs:     make(map[int]func(ChangeEvent)),
	}

	if err := w.addTree(resolver.Root()); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Subscribe registers a callback for change events and returns its
// unsubscribe function. Callbacks must not block.
func (w *Watcher) Subscribe(fn func(ChangeEvent)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.subs[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

// Run processes fsnotify events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer func() { _ = w.fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watcher: %v", err)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := w.resolver.Rel(ev.Name)
	if err != nil {
		return
	}
	if isHiddenPath(rel) {
		return
	}

	// Newly created directories need their own watch.
	if ev.Op.Has(fsnotify.Create) {
		if abs, err := w.resolver.Abs(rel); err == nil {
			_ = w.addTree(abs)
		}
	}

	w.broadcast(ChangeEvent{Path: rel, Op: opString(ev.Op)})
}

func (w *Watcher) broadcast(ev ChangeEvent) {
	w.mu.Lock()
	subs := make([]func(ChangeEvent), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

// addTree watches path and every non-hidden directory below it. Files
// that vanish mid-walk are skipped.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			log.Printf("watcher add %s: %v", path, err)
		}
		return nil
	})
}

func isHiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

func opString(op fsnotify.Op) string {
	switch {
	case op.Has(fsnotify.Create):
		return "create"
	case op.Has(fsnotify.Write):
		return "write"
	case op.Has(fsnotify.Remove):
		return "remove"
	case op.Has(fsnotify.Rename):
		return "rename"
	case op.Has(fsnotify.Chmod):
		return "chmod"
	default:
		return op.String()
	}
}
