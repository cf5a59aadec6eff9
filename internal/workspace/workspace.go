package workspace

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrLastTab = errors.New("cannot close the last tab")
	ErrNoTab   = errors.New("no such tab")
)

// Workspace is the ordered list of tabs plus the active pointer.
type Workspace struct {
	tabs   []Tab
	active int
	// lastID only grows, so a closed tab's id is never handed out again.
	lastID int
}

// New returns a workspace with one empty tab.
func New() *Workspace {
	return &Workspace{tabs: []Tab{NewTab("1")}, lastID: 1}
}

// Tabs returns the tabs in display order.
func (w *Workspace) Tabs() []Tab {
	out := make([]Tab, len(w.tabs))
	copy(out, w.tabs)
	return out
}

func (w *Workspace) Len() int { return len(w.tabs) }

func (w *Workspace) Active() Tab { return w.tabs[w.active] }

func (w *Workspace) ActiveIndex() int { return w.active }

func (w *Workspace) index(id string) int {
	for i, t := range w.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the tab with id.
func (w *Workspace) Get(id string) (Tab, bool) {
	i := w.index(id)
	if i < 0 {
		return Tab{}, false
	}
	return w.tabs[i], true
}

// Add appends an empty tab, makes it active and returns it.
func (w *Workspace) Add() Tab {
	w.lastID++
	tab := NewTab(strconv.Itoa(w.lastID))
	w.tabs = append(w.tabs, tab)
	w.active = len(w.tabs) - 1
	return tab
}

// Close removes a tab and returns it so the caller can release what it
// held. The last tab cannot be closed.
func (w *Workspace) Close(id string) (Tab, error) {
	i := w.index(id)
	if i < 0 {
		return Tab{}, ErrNoTab
	}
	if len(w.tabs) == 1 {
		return Tab{}, ErrLastTab
	}
	closed := w.tabs[i]
	w.tabs = append(w.tabs[:i:i], w.tabs[i+1:]...)
	switch {
	case i < w.active:
		w.active--
	case i == w.active && w.active > 0:
		w.active--
	}
	return closed, nil
}

// Activate makes the tab with id active.
func (w *Workspace) Activate(id string) error {
	i := w.index(id)
	if i < 0 {
		return ErrNoTab
	}
	w.active = i
	return nil
}

// Cycle moves the active pointer by delta, wrapping around.
func (w *Workspace) Cycle(delta int) {
	n := len(w.tabs)
	w.active = ((w.active+delta)%n + n) % n
}

// Update replaces the tab with id by fn applied to it.
func (w *Workspace) Update(id string, fn func(Tab) Tab) bool {
	i := w.index(id)
	if i < 0 {
		return false
	}
	next := fn(w.tabs[i])
	next.ID = w.tabs[i].ID
	w.tabs[i] = next
	return true
}

func baseName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return path
	}
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		return trimmed[i+1:]
	}
	return filepath.Base(trimmed)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
