// Package watch reports file-system changes under a tab's root directory.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sokinpui/pcp/internal/debounce"
	"github.com/sokinpui/pcp/internal/logging"
)

// DefaultWait is how long a burst must be quiet before it is reported.
const DefaultWait = 500 * time.Millisecond

var ErrClosed = errors.New("watch manager is closed")

type Kind int

const (
	Created Kind = iota
	Deleted
	Modified
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "modified"
	}
}

// Change is a single observed change.
type Change struct {
	Kind Kind
	Path string
}

// Event is one coalesced burst of changes for a tab.
type Event struct {
	Tab     string
	Root    string
	Changes []Change
}

type watcher struct {
	tab  string
	root string
	fsw  *fsnotify.Watcher
	deb  *debounce.Debouncer
	out  chan<- Event

	mu      sync.Mutex
	pending []Change
}

func skipDir(name string) bool {
	return name == ".git"
}

func (w *watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are left unwatched.
			if path == root {
				return err
			}
			return filepath.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			if path == root {
				return err
			}
			logging.Warn("failed to watch directory", logging.String("path", path), logging.Err(err))
		}
		return nil
	})
}

func (w *watcher) run() {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("watch error", logging.String("root", w.root), logging.Err(err))
		}
	}
}

func (w *watcher) handle(ev fsnotify.Event) {
	var kind Kind
	switch {
	case ev.Has(fsnotify.Create):
		kind = Created
		if isDir(ev.Name) && !skipDir(filepath.Base(ev.Name)) {
			if err := w.addRecursive(ev.Name); err != nil {
				logging.Warn("failed to watch new directory", logging.String("path", ev.Name), logging.Err(err))
			}
		}
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		kind = Deleted
	case ev.Has(fsnotify.Write):
		kind = Modified
	default:
		return
	}

	w.mu.Lock()
	w.pending = append(w.pending, Change{Kind: kind, Path: ev.Name})
	w.mu.Unlock()
	w.deb.Trigger(w.flush)
}

func (w *watcher) flush() {
	w.mu.Lock()
	changes := w.pending
	w.pending = nil
	w.mu.Unlock()
	if len(changes) == 0 {
		return
	}
	select {
	case w.out <- Event{Tab: w.tab, Root: w.root, Changes: changes}:
	default:
		logging.Warn("dropped watch event", logging.String("tab", w.tab), logging.Int("changes", len(changes)))
	}
}

func (w *watcher) close() {
	w.deb.Stop()
	if err := w.fsw.Close(); err != nil {
		logging.Warn("failed to close watcher", logging.String("root", w.root), logging.Err(err))
	}
}

// Manager owns at most one watcher per tab.
type Manager struct {
	wait   time.Duration
	events chan Event

	mu       sync.Mutex
	watchers map[string]*watcher
	closed   bool
}

// NewManager returns a manager that coalesces bursts over wait.
func NewManager(wait time.Duration) *Manager {
	if wait <= 0 {
		wait = DefaultWait
	}
	return &Manager{
		wait:     wait,
		events:   make(chan Event, 64),
		watchers: make(map[string]*watcher),
	}
}

// Events delivers coalesced changes for every watched tab.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Watch starts watching root for tab. Any previous watch of the tab is
// stopped first so notifications never overlap.
func (m *Manager) Watch(tab, root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if prev, ok := m.watchers[tab]; ok {
		prev.close()
		delete(m.watchers, tab)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &watcher{
		tab:  tab,
		root: root,
		fsw:  fsw,
		deb:  debounce.New(m.wait),
		out:  m.events,
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch '%s': %w", root, err)
	}
	m.watchers[tab] = w
	go w.run()
	logging.Debug("watching", logging.String("tab", tab), logging.String("root", root))
	return nil
}

// Stop ends the tab's watch, if any.
func (m *Manager) Stop(tab string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if w, ok := m.watchers[tab]; ok {
		w.close()
		delete(m.watchers, tab)
		logging.Debug("stopped watching", logging.String("tab", tab), logging.String("root", w.root))
	}
}

// Close stops every watcher. The events channel is left open.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for tab, w := range m.watchers {
		w.close()
		delete(m.watchers, tab)
	}
	m.closed = true
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
