package pcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sokinpui/pcp/internal/bundle"
	"github.com/sokinpui/pcp/internal/clip"
	"github.com/sokinpui/pcp/internal/config"
	"github.com/sokinpui/pcp/internal/diff"
	"github.com/sokinpui/pcp/internal/fs"
	"github.com/sokinpui/pcp/internal/history"
	"github.com/sokinpui/pcp/internal/logging"
	"github.com/sokinpui/pcp/internal/nvim"
	"github.com/sokinpui/pcp/internal/store"
	"github.com/sokinpui/pcp/internal/theme"
	"github.com/sokinpui/pcp/internal/tree"
	"github.com/sokinpui/pcp/internal/watch"
	"github.com/sokinpui/pcp/internal/workspace"
	"github.com/sokinpui/pcp/model"
)

var (
	ErrNothingChecked = errors.New("no files are checked")
	ErrFileNotInEntry = errors.New("file is not part of this history entry")
	ErrNoCopy         = errors.New("nothing has been copied in this tab yet")
)

// App orchestrates the entire application logic.
type App struct {
	cfg       config.Config
	lister    fs.Lister
	store     *store.Store
	history   *history.Manager
	clipboard clip.Clipboard
	watcher   *watch.Manager
	now       func() time.Time

	viewerMu sync.Mutex
	viewer   *nvim.Manager
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// Option customizes an App.
type Option func(*App)

// WithClipboard replaces the system clipboard.
func WithClipboard(c clip.Clipboard) Option {
	return func(a *App) { a.clipboard = c }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New creates a new App instance.
func New(cfg config.Config, opts ...Option) (*App, error) {
	st, err := store.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data directory: %w", err)
	}
	a := &App{
		cfg:       cfg,
		lister:    fs.Lister{MaxFileSize: cfg.MaxFileSize},
		store:     st,
		history:   history.New(st),
		clipboard: clip.System{},
		watcher:   watch.NewManager(cfg.WatchDebounce),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Close releases the watchers and the viewer connection.
func (a *App) Close() {
	a.watcher.Close()
	a.viewerMu.Lock()
	if a.viewer != nil {
		a.viewer.Close()
		a.viewer = nil
	}
	a.viewerMu.Unlock()
}

// Execute runs fn, turning a panic into a DetailedError.
func (a *App) Execute(fn func() error) (err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()
	return fn()
}

func (a *App) Settings() config.Config { return a.cfg }

func (a *App) History() *history.Manager { return a.history }

func (a *App) Clipboard() clip.Clipboard { return a.clipboard }

// WatchEvents delivers coalesced file-system changes for every tab.
func (a *App) WatchEvents() <-chan watch.Event { return a.watcher.Events() }

// Opened is the result of pointing a tab at a directory.
type Opened struct {
	Root  string
	Files []model.TreeNode
	// WatchErr is set when the listing worked but watching did not. The
	// tab is usable; changes just need a manual refresh.
	WatchErr error
}

// OpenFolder lists path and starts watching it for tab, replacing any
// previous watch of that tab. A listing failure leaves the old watch alone.
func (a *App) OpenFolder(tab, path string) (Opened, error) {
	root, err := filepath.Abs(path)
	if err != nil {
		return Opened{}, fmt.Errorf("failed to resolve '%s': %w", path, err)
	}
	files, err := a.lister.List(root, a.cfg.ListDepth)
	if err != nil {
		return Opened{}, err
	}
	opened := Opened{Root: root, Files: files}
	if err := a.watcher.Watch(tab, root); err != nil {
		logging.Warn("failed to watch folder", logging.String("root", root), logging.Err(err))
		opened.WatchErr = err
	}
	logging.Info("opened folder", logging.String("tab", tab), logging.String("root", root), logging.Int("entries", len(files)))
	return opened, nil
}

// StopWatching ends the tab's watch.
func (a *App) StopWatching(tab string) {
	a.watcher.Stop(tab)
}

// LoadChildren lists one directory level.
func (a *App) LoadChildren(path string) ([]model.TreeNode, error) {
	children, err := a.lister.List(path, 1)
	if err != nil {
		logging.Warn("failed to load children", logging.String("path", path), logging.Err(err))
		return nil, err
	}
	return children, nil
}

// Refresh re-lists the tab's root and every directory that was loaded
// under it, shallowest first. Directories that vanished are skipped.
func (a *App) Refresh(t workspace.Tab) ([]model.TreeNode, error) {
	if t.Root == "" {
		return nil, nil
	}
	files, err := a.lister.List(t.Root, a.cfg.ListDepth)
	if err != nil {
		return nil, err
	}
	for _, dir := range tree.LoadedDirs(t.Files) {
		node, ok := tree.Find(files, dir)
		if !ok || !node.IsDirectory {
			continue
		}
		children, err := a.lister.List(dir, 1)
		if err != nil {
			logging.Debug("skipping directory during refresh", logging.String("path", dir), logging.Err(err))
			continue
		}
		files = tree.MergeChildren(files, dir, children)
	}
	return files, nil
}

// CopyRequest is everything the copy action needs from a tab.
type CopyRequest struct {
	Prompt    string
	Root      string
	Paths     []string
	ScriptFix bool
}

// RequestFromTab builds a copy request from a tab's state.
func RequestFromTab(t workspace.Tab) CopyRequest {
	return CopyRequest{
		Prompt:    t.Prompt,
		Root:      t.Root,
		Paths:     t.Checked.Paths(),
		ScriptFix: t.ScriptFix,
	}
}

// Copy gathers the checked files, records the bundle in history and then
// puts it on the clipboard. If the clipboard write fails the history entry
// is removed again.
func (a *App) Copy(ctx context.Context, req CopyRequest) (model.Summary, error) {
	if len(req.Paths) == 0 {
		return model.Summary{}, ErrNothingChecked
	}

	files := bundle.Gather(ctx, a.lister, req.Paths)
	text := bundle.Format(req.Prompt, req.Root, files, req.ScriptFix)

	receipt, err := a.history.Save(req.Prompt, bundle.HistoryFiles(files), req.ScriptFix, a.now())
	if err != nil {
		logging.Error("copy aborted", logging.Err(err))
		return model.Summary{}, err
	}

	if err := a.clipboard.WriteAll(text); err != nil {
		if derr := a.history.Delete(receipt.Path); derr != nil {
			logging.Error("failed to roll back history entry", logging.String("path", receipt.Path), logging.Err(derr))
		}
		logging.Error("copy aborted", logging.Err(err))
		return model.Summary{}, err
	}

	summary := model.Summary{Bytes: len(text), Receipt: receipt}
	for _, f := range files {
		if f.Err != nil {
			logging.Warn("file left out of bundle", logging.String("path", f.Path), logging.Err(f.Err))
			summary.Failed = append(summary.Failed, f.Path)
			continue
		}
		summary.Copied = append(summary.Copied, bundle.RelativeName(f.Path, req.Root))
	}
	logging.Info("copied bundle",
		logging.String("history", receipt.Path),
		logging.Int("files", len(summary.Copied)),
		logging.Int("failed", len(summary.Failed)),
		logging.Int("bytes", summary.Bytes),
	)
	return summary, nil
}

// MarkSuccess flags a history entry as having worked.
func (a *App) MarkSuccess(rel string) error {
	return a.history.MarkSuccess(rel)
}

// MarkLastSuccess marks the tab's last copy as successful and returns the
// tab with that copy and its prompt cleared.
func (a *App) MarkLastSuccess(t workspace.Tab) (workspace.Tab, error) {
	if t.LastCopy == nil {
		return t, ErrNoCopy
	}
	if err := a.history.MarkSuccess(t.LastCopy.Path); err != nil {
		return t, err
	}
	return workspace.ClearAfterSuccess(t), nil
}

// Dates lists the days that have history, as YYYY-MM-DD.
func (a *App) Dates() ([]string, error) {
	return a.history.Dates()
}

// Day returns one day's history, newest first.
func (a *App) Day(date string) ([]model.HistoryRecord, error) {
	return a.history.Day(date)
}

// DeleteEntry removes a history entry.
func (a *App) DeleteEntry(rel string) error {
	if err := a.history.Delete(rel); err != nil {
		return err
	}
	logging.Info("deleted history entry", logging.String("path", rel))
	return nil
}

// Comparison holds a stored file and its current content on disk.
type Comparison struct {
	Path    string
	Stored  string
	Current string
	Lines   []model.DiffLine
}

// Compare diffs the copy of path stored in a history entry against the
// file as it is now.
func (a *App) Compare(rel, path string) (Comparison, error) {
	entry, err := a.history.Load(rel)
	if err != nil {
		return Comparison{}, err
	}
	stored, ok := history.FindFile(entry, path)
	if !ok {
		return Comparison{}, fmt.Errorf("'%s': %w", path, ErrFileNotInEntry)
	}
	current, err := a.lister.ReadTextFile(path)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{
		Path:    path,
		Stored:  stored.Content,
		Current: current,
		Lines:   diff.Compute(stored.Content, current),
	}, nil
}

// Unified renders a comparison as a unified diff.
func (c Comparison) Unified() (string, error) {
	return diff.Unified(c.Stored, c.Current, "stored/"+filepath.Base(c.Path), c.Path)
}

// ReadFile reads a file the way the copy action does.
func (a *App) ReadFile(path string) (string, error) {
	return a.lister.ReadTextFile(path)
}

// Reveal shows path in the system file manager.
func (a *App) Reveal(path string) error {
	return fs.OpenInFileManager(path)
}

// Theme returns the configured theme, or the saved one when none is set.
func (a *App) Theme() string {
	if a.cfg.Theme != "" {
		return a.cfg.Theme
	}
	name, err := theme.Load(a.store)
	if err != nil {
		logging.Warn("failed to load theme", logging.Err(err))
	}
	return name
}

// SaveTheme persists the selected theme.
func (a *App) SaveTheme(name string) error {
	return theme.Save(a.store, name)
}

// Viewer returns the connection to the companion Neovim, dialing it on
// first use.
func (a *App) Viewer() (*nvim.Manager, error) {
	a.viewerMu.Lock()
	defer a.viewerMu.Unlock()
	if a.viewer != nil {
		return a.viewer, nil
	}
	v, err := nvim.New()
	if err != nil {
		return nil, err
	}
	logging.Info("connected to nvim", logging.String("addr", v.Addr()))
	a.viewer = v
	return v, nil
}

// ViewStored shows the stored copy of path from a history entry in the
// viewer. An empty path shows the whole bundle as it was copied.
func (a *App) ViewStored(rel, path string) (nvim.Buffer, error) {
	entry, err := a.history.Load(rel)
	if err != nil {
		return 0, err
	}
	v, err := a.Viewer()
	if err != nil {
		return 0, err
	}
	if path == "" {
		files := make([]bundle.File, len(entry.Files))
		for i, f := range entry.Files {
			files[i] = bundle.File{Path: f.Path, Content: f.Content}
		}
		text := bundle.Format(entry.Prompt, "", files, entry.AddScriptFix)
		return v.ShowScratch(nvim.ScratchName(entry.Timestamp, "bundle.md"), text)
	}
	stored, ok := history.FindFile(entry, path)
	if !ok {
		return 0, fmt.Errorf("'%s': %w", path, ErrFileNotInEntry)
	}
	return v.ShowScratch(nvim.ScratchName(entry.Timestamp, path), stored.Content)
}

// OpenEntryFiles opens every file of a history entry in the viewer, as it
// is on disk now. progress receives the number of files handled so far.
func (a *App) OpenEntryFiles(rel string, progress func(int)) (opened, failed []string, err error) {
	entry, err := a.history.Load(rel)
	if err != nil {
		return nil, nil, err
	}
	v, err := a.Viewer()
	if err != nil {
		return nil, nil, err
	}
	paths := make([]string, len(entry.Files))
	for i, f := range entry.Files {
		paths[i] = f.Path
	}
	opened, failed = v.OpenFiles(paths, progress)
	return opened, failed, nil
}

// ViewerVisible reports whether buf is still displayed. A lost connection
// counts as hidden.
func (a *App) ViewerVisible(buf nvim.Buffer) bool {
	a.viewerMu.Lock()
	v := a.viewer
	a.viewerMu.Unlock()
	if v == nil {
		return false
	}
	visible, err := v.Visible(buf)
	if err != nil {
		logging.Debug("viewer poll failed", logging.Err(err))
		return false
	}
	return visible
}

// HideViewer closes buf in the viewer.
func (a *App) HideViewer(buf nvim.Buffer) error {
	a.viewerMu.Lock()
	v := a.viewer
	a.viewerMu.Unlock()
	if v == nil {
		return nil
	}
	return v.Hide(buf)
}
