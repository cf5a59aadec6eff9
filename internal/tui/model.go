// Package tui is the interactive browser: tabs of folders, a file tree with
// checkboxes, the prompt, the copy action and the history panel.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/pcp/internal/clip"
	"github.com/sokinpui/pcp/internal/config"
	"github.com/sokinpui/pcp/internal/logging"
	"github.com/sokinpui/pcp/internal/nvim"
	"github.com/sokinpui/pcp/internal/theme"
	"github.com/sokinpui/pcp/internal/watch"
	"github.com/sokinpui/pcp/internal/workspace"
	"github.com/sokinpui/pcp/model"
	"github.com/sokinpui/pcp/pcp"
)

const (
	toastDuration = 3 * time.Second
	viewerPoll    = 500 * time.Millisecond
)

// Backend is what the TUI needs from the application.
type Backend interface {
	Settings() config.Config
	Clipboard() clip.Clipboard

	OpenFolder(tab, path string) (pcp.Opened, error)
	StopWatching(tab string)
	WatchEvents() <-chan watch.Event
	LoadChildren(path string) ([]model.TreeNode, error)
	Refresh(t workspace.Tab) ([]model.TreeNode, error)
	Reveal(path string) error

	Copy(ctx context.Context, req pcp.CopyRequest) (model.Summary, error)
	MarkLastSuccess(t workspace.Tab) (workspace.Tab, error)
	MarkSuccess(rel string) error
	Dates() ([]string, error)
	Day(date string) ([]model.HistoryRecord, error)
	DeleteEntry(rel string) error
	Compare(rel, path string) (pcp.Comparison, error)

	Theme() string
	SaveTheme(name string) error

	ViewStored(rel, path string) (nvim.Buffer, error)
	ViewerVisible(buf nvim.Buffer) bool
	HideViewer(buf nvim.Buffer) error
}

type focus int

const (
	focusTree focus = iota
	focusSearch
	focusPrompt
	focusFolder
	focusChecked
	focusHistory
	focusHistoryFilter
	focusDiff
)

// Model is the bubbletea model of the browser.
type Model struct {
	app    Backend
	ws     *workspace.Workspace
	keys   keyMap
	help   help.Model
	theme  string
	styles theme.Styles
	focus  focus

	search textinput.Model
	folder textinput.Model
	prompt textarea.Model
	// folderTab receives the folder typed into the folder input.
	folderTab string

	checkedCursor int
	history       historyPanel
	diff          diffView

	viewerBuf    nvim.Buffer
	viewerActive bool

	toast    string
	toastErr bool
	toastID  int

	searchDebounce time.Duration
	startDir       string
	now            func() time.Time
	width, height  int
}

// New builds the browser. A non-empty startDir is opened in the first tab.
func New(app Backend, startDir string) Model {
	name := app.Theme()
	if !theme.Valid(name) {
		name = theme.Default
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search files"

	folder := textinput.New()
	folder.Prompt = "Folder: "
	folder.Placeholder = "path to a directory"

	prompt := textarea.New()
	prompt.Placeholder = "Describe what you need..."
	prompt.ShowLineNumbers = false
	prompt.SetHeight(3)
	prompt.CharLimit = 0

	debounce := app.Settings().SearchDebounce
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	now := time.Now
	return Model{
		app:            app,
		ws:             workspace.New(),
		keys:           defaultKeys(),
		help:           help.New(),
		theme:          name,
		styles:         theme.NewStyles(theme.Get(name)),
		search:         search,
		folder:         folder,
		prompt:         prompt,
		history:        newHistoryPanel(now()),
		searchDebounce: debounce,
		startDir:       startDir,
		now:            now,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForWatch(m.app.WatchEvents())}
	if m.startDir != "" {
		cmds = append(cmds, openFolderCmd(m.app, m.ws.Active().ID, m.startDir))
	}
	return tea.Batch(cmds...)
}

// --- Commands ---

func openFolderCmd(app Backend, tab, path string) tea.Cmd {
	return func() tea.Msg {
		opened, err := app.OpenFolder(tab, path)
		return folderOpenedMsg{tab: tab, opened: opened, err: err}
	}
}

func loadChildrenCmd(app Backend, tab, path string) tea.Cmd {
	return func() tea.Msg {
		children, err := app.LoadChildren(path)
		return childrenLoadedMsg{tab: tab, path: path, children: children, err: err}
	}
}

func refreshCmd(app Backend, t workspace.Tab) tea.Cmd {
	return func() tea.Msg {
		files, err := app.Refresh(t)
		return refreshedMsg{tab: t.ID, root: t.Root, files: files, err: err}
	}
}

func stopWatchingCmd(app Backend, tab string) tea.Cmd {
	return func() tea.Msg {
		app.StopWatching(tab)
		return nil
	}
}

func searchTickCmd(tab string, token int, wait time.Duration) tea.Cmd {
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return searchTickMsg{tab: tab, token: token}
	})
}

func waitForWatch(ch <-chan watch.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return watchMsg{ev}
	}
}

func copyCmd(app Backend, t workspace.Tab) tea.Cmd {
	req := pcp.RequestFromTab(t)
	return func() tea.Msg {
		summary, err := app.Copy(context.Background(), req)
		return copiedMsg{tab: t.ID, summary: summary, err: err}
	}
}

func successCmd(app Backend, t workspace.Tab) tea.Cmd {
	path := t.LastCopy.Path
	return func() tea.Msg {
		_, err := app.MarkLastSuccess(t)
		return successMsg{tab: t.ID, path: path, err: err}
	}
}

func revealCmd(app Backend, path string) tea.Cmd {
	return func() tea.Msg {
		return revealedMsg{err: app.Reveal(path)}
	}
}

func saveThemeCmd(app Backend, name string) tea.Cmd {
	return func() tea.Msg {
		return themeSavedMsg{err: app.SaveTheme(name)}
	}
}

func viewStoredCmd(app Backend, rel, path string) tea.Cmd {
	return func() tea.Msg {
		buf, err := app.ViewStored(rel, path)
		return viewerShownMsg{buf: buf, err: err}
	}
}

func pollViewerCmd(buf nvim.Buffer) tea.Cmd {
	return tea.Tick(viewerPoll, func(time.Time) tea.Msg {
		return viewerPollMsg{buf: buf}
	})
}

func checkViewerCmd(app Backend, buf nvim.Buffer) tea.Cmd {
	return func() tea.Msg {
		return viewerStateMsg{buf: buf, visible: app.ViewerVisible(buf)}
	}
}

func hideViewerCmd(app Backend, buf nvim.Buffer) tea.Cmd {
	return func() tea.Msg {
		return viewerHiddenMsg{err: app.HideViewer(buf)}
	}
}

// --- Helpers ---

func (m *Model) notify(text string) tea.Cmd {
	m.toastID++
	m.toast, m.toastErr = text, false
	id := m.toastID
	return tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{id: id} })
}

func (m *Model) fail(err error) tea.Cmd {
	logging.Warn("action failed", logging.Err(err))
	cmd := m.notify(err.Error())
	m.toastErr = true
	return cmd
}

func (m *Model) updateActive(fn func(workspace.Tab) workspace.Tab) {
	m.ws.Update(m.ws.Active().ID, fn)
}

// syncInputs loads the active tab's prompt and query into the inputs.
func (m *Model) syncInputs() {
	t := m.ws.Active()
	m.prompt.SetValue(t.Prompt)
	m.search.SetValue(t.Query)
	m.checkedCursor = 0
}

func (m *Model) openFolderInput(tab, current string) tea.Cmd {
	m.folderTab = tab
	m.folder.SetValue(current)
	m.folder.CursorEnd()
	m.focus = focusFolder
	return m.folder.Focus()
}

// --- Update ---

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.prompt.SetWidth(max(msg.Width-4, 20))
		m.search.Width = max(msg.Width-4, 10)
		m.folder.Width = max(msg.Width-12, 10)
		m.diff.resize(msg.Width, m.diffHeight())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)

	case folderOpenedMsg:
		if msg.err != nil {
			return m, m.fail(fmt.Errorf("failed to open folder: %w", msg.err))
		}
		ok := m.ws.Update(msg.tab, func(t workspace.Tab) workspace.Tab {
			return workspace.OpenRoot(t, msg.opened.Root, msg.opened.Files)
		})
		if !ok {
			// The tab closed while the folder was loading.
			return m, stopWatchingCmd(m.app, msg.tab)
		}
		if m.ws.Active().ID == msg.tab {
			m.search.SetValue("")
		}
		if msg.opened.WatchErr != nil {
			return m, m.fail(fmt.Errorf("opened %s without watching: %w", msg.opened.Root, msg.opened.WatchErr))
		}
		return m, m.notify("Opened " + msg.opened.Root)

	case childrenLoadedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.ws.Update(msg.tab, func(t workspace.Tab) workspace.Tab {
			return workspace.ApplyChildren(t, msg.path, msg.children)
		})
		return m, nil

	case searchTickMsg:
		m.ws.Update(msg.tab, func(t workspace.Tab) workspace.Tab {
			t, _ = workspace.ApplySearch(t, msg.token)
			return t
		})
		return m, nil

	case refreshedMsg:
		if msg.err != nil {
			return m, m.fail(fmt.Errorf("refresh failed: %w", msg.err))
		}
		m.ws.Update(msg.tab, func(t workspace.Tab) workspace.Tab {
			if t.Root != msg.root {
				return t
			}
			return workspace.ApplyRefresh(t, msg.files)
		})
		return m, nil

	case watchMsg:
		cmds := []tea.Cmd{waitForWatch(m.app.WatchEvents())}
		if t, ok := m.ws.Get(msg.Tab); ok && t.Root == msg.Root {
			logging.Debug("folder changed", logging.String("tab", msg.Tab), logging.Int("changes", len(msg.Changes)))
			cmds = append(cmds, refreshCmd(m.app, t))
		}
		return m, tea.Batch(cmds...)

	case copiedMsg:
		if msg.err != nil {
			return m, m.fail(fmt.Errorf("copy failed: %w", msg.err))
		}
		m.ws.Update(msg.tab, func(t workspace.Tab) workspace.Tab {
			return workspace.RecordCopy(t, msg.summary.Receipt)
		})
		text := fmt.Sprintf("Copied %d file(s), %d bytes", len(msg.summary.Copied), msg.summary.Bytes)
		if n := len(msg.summary.Failed); n > 0 {
			text += fmt.Sprintf(", %d unreadable", n)
		}
		return m, m.notify(text)

	case successMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.ws.Update(msg.tab, func(t workspace.Tab) workspace.Tab {
			if t.LastCopy == nil || t.LastCopy.Path != msg.path {
				return t
			}
			return workspace.ClearAfterSuccess(t)
		})
		if m.ws.Active().ID == msg.tab {
			m.prompt.SetValue(m.ws.Active().Prompt)
		}
		return m, m.notify("Marked as success")

	case historyLoadedMsg:
		if msg.date != m.history.dateKey() {
			return m, nil
		}
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.history.apply(msg)
		return m, nil

	case entryMarkedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		return m, tea.Batch(m.notify("Marked as success"), loadHistoryCmd(m.app, m.history.dateKey()))

	case entryDeletedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		for _, t := range m.ws.Tabs() {
			if t.LastCopy != nil && t.LastCopy.Path == msg.path {
				m.ws.Update(t.ID, func(t workspace.Tab) workspace.Tab {
					t.LastCopy = nil
					return t
				})
			}
		}
		m.history.detail = false
		return m, tea.Batch(m.notify("Entry deleted"), loadHistoryCmd(m.app, m.history.dateKey()))

	case comparedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.diff = newDiffView(msg.cmp, m.width, m.diffHeight(), m.styles)
		m.focus = focusDiff
		return m, nil

	case viewerShownMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		m.viewerBuf, m.viewerActive = msg.buf, true
		return m, pollViewerCmd(msg.buf)

	case viewerPollMsg:
		if !m.viewerActive || msg.buf != m.viewerBuf {
			return m, nil
		}
		return m, checkViewerCmd(m.app, msg.buf)

	case viewerStateMsg:
		if !m.viewerActive || msg.buf != m.viewerBuf {
			return m, nil
		}
		if !msg.visible {
			m.viewerActive = false
			return m, nil
		}
		return m, pollViewerCmd(msg.buf)

	case viewerHiddenMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		return m, nil

	case revealedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		return m, nil

	case themeSavedMsg:
		if msg.err != nil {
			return m, m.fail(fmt.Errorf("failed to save theme: %w", msg.err))
		}
		return m, nil

	case unifiedCopiedMsg:
		if msg.err != nil {
			return m, m.fail(msg.err)
		}
		return m, m.notify("Unified diff copied")

	case clearToastMsg:
		if msg.id == m.toastID {
			m.toast, m.toastErr = "", false
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards cursor blinks and similar messages to the input
// that has focus.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusSearch:
		m.search, cmd = m.search.Update(msg)
	case focusFolder:
		m.folder, cmd = m.folder.Update(msg)
	case focusPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case focusHistoryFilter:
		m.history.filter, cmd = m.history.filter.Update(msg)
	case focusDiff:
		m.diff.viewport, cmd = m.diff.viewport.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusSearch:
		return m.updateSearch(msg)
	case focusPrompt:
		return m.updatePrompt(msg)
	case focusFolder:
		return m.updateFolder(msg)
	case focusChecked:
		return m.updateChecked(msg)
	case focusHistory:
		return m.updateHistory(msg)
	case focusHistoryFilter:
		return m.updateHistoryFilter(msg)
	case focusDiff:
		return m.updateDiff(msg)
	}
	return m.updateTree(msg)
}

func (m Model) updateTree(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.ws.Active()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Up):
		m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.MoveCursor(t, -1) })

	case key.Matches(msg, m.keys.Down):
		m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.MoveCursor(t, 1) })

	case key.Matches(msg, m.keys.Check):
		if row, ok := t.CursorRow(); ok && row.More == 0 {
			m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.ToggleCheck(t, row.Node) })
		}

	case key.Matches(msg, m.keys.Expand):
		row, ok := t.CursorRow()
		if !ok || row.More > 0 {
			return m, nil
		}
		if !row.Node.IsDirectory {
			m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.ToggleCheck(t, row.Node) })
			return m, nil
		}
		next, needsLoad := workspace.ToggleExpand(t, row.Node.Path)
		if needsLoad {
			return m, loadChildrenCmd(m.app, t.ID, row.Node.Path)
		}
		m.updateActive(func(workspace.Tab) workspace.Tab { return next })

	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		m.search.SetValue(t.Query)
		m.search.CursorEnd()
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Prompt):
		m.focus = focusPrompt
		return m, m.prompt.Focus()

	case key.Matches(msg, m.keys.Open):
		return m, m.openFolderInput(t.ID, t.Root)

	case key.Matches(msg, m.keys.Copy):
		if t.Checked.Len() == 0 {
			return m, m.fail(pcp.ErrNothingChecked)
		}
		return m, copyCmd(m.app, t)

	case key.Matches(msg, m.keys.Success):
		if t.LastCopy == nil {
			return m, m.fail(pcp.ErrNoCopy)
		}
		return m, successCmd(m.app, t)

	case key.Matches(msg, m.keys.Fix):
		m.updateActive(workspace.ToggleScriptFix)

	case key.Matches(msg, m.keys.Checked):
		m.focus = focusChecked
		m.checkedCursor = 0

	case key.Matches(msg, m.keys.History):
		m.focus = focusHistory
		return m, loadHistoryCmd(m.app, m.history.dateKey())

	case key.Matches(msg, m.keys.Refresh):
		if t.Root == "" {
			return m, nil
		}
		return m, refreshCmd(m.app, t)

	case key.Matches(msg, m.keys.Theme):
		m.theme = theme.Next(m.theme)
		m.styles = theme.NewStyles(theme.Get(m.theme))
		m.diff.restyle(m.styles)
		return m, tea.Batch(saveThemeCmd(m.app, m.theme), m.notify("Theme: "+m.theme))

	case key.Matches(msg, m.keys.View):
		if m.viewerActive {
			m.viewerActive = false
			return m, hideViewerCmd(m.app, m.viewerBuf)
		}
		if t.LastCopy == nil {
			return m, m.fail(pcp.ErrNoCopy)
		}
		return m, viewStoredCmd(m.app, t.LastCopy.Path, "")

	case key.Matches(msg, m.keys.NewTab):
		tab := m.ws.Add()
		m.syncInputs()
		return m, m.openFolderInput(tab.ID, "")

	case key.Matches(msg, m.keys.CloseTab):
		closed, err := m.ws.Close(t.ID)
		if err != nil {
			return m, m.fail(err)
		}
		m.syncInputs()
		return m, stopWatchingCmd(m.app, closed.ID)

	case key.Matches(msg, m.keys.PrevTab):
		m.ws.Cycle(-1)
		m.syncInputs()

	case key.Matches(msg, m.keys.NextTab):
		m.ws.Cycle(1)
		m.syncInputs()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.search.SetValue("")
		m.search.Blur()
		m.focus = focusTree
		m.updateActive(func(t workspace.Tab) workspace.Tab {
			t = workspace.SetQuery(t, "")
			t, _ = workspace.ApplySearch(t, t.SearchToken)
			return t
		})
		return m, nil
	case tea.KeyEnter, tea.KeyDown:
		m.search.Blur()
		m.focus = focusTree
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	query := m.search.Value()
	if query == before {
		return m, cmd
	}
	m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.SetQuery(t, query) })
	t := m.ws.Active()
	return m, tea.Batch(cmd, searchTickCmd(t.ID, t.SearchToken, m.searchDebounce))
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.prompt.Blur()
		m.focus = focusTree
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	prompt := m.prompt.Value()
	m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.SetPrompt(t, prompt) })
	return m, cmd
}

func (m Model) updateFolder(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		// Cancelling the folder prompt is not an error.
		m.folder.Blur()
		m.focus = focusTree
		return m, nil
	case tea.KeyEnter:
		m.folder.Blur()
		m.focus = focusTree
		path := strings.TrimSpace(m.folder.Value())
		if path == "" {
			return m, nil
		}
		return m, openFolderCmd(m.app, m.folderTab, path)
	}
	var cmd tea.Cmd
	m.folder, cmd = m.folder.Update(msg)
	return m, cmd
}

func (m Model) updateChecked(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	t := m.ws.Active()
	paths := t.Checked.Paths()
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Checked):
		m.focus = focusTree
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.checkedCursor = max(m.checkedCursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.checkedCursor = min(m.checkedCursor+1, max(len(paths)-1, 0))
	case key.Matches(msg, m.keys.Remove):
		if m.checkedCursor < len(paths) {
			path := paths[m.checkedCursor]
			m.updateActive(func(t workspace.Tab) workspace.Tab { return workspace.Uncheck(t, path) })
			m.checkedCursor = min(m.checkedCursor, max(len(paths)-2, 0))
		}
	case key.Matches(msg, m.keys.Open):
		if m.checkedCursor < len(paths) {
			return m, revealCmd(m.app, paths[m.checkedCursor])
		}
	}
	return m, nil
}

func (m Model) updateDiff(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.focus = focusHistory
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Unified):
		return m, copyUnifiedCmd(m.app.Clipboard(), m.diff.cmp)
	}
	var cmd tea.Cmd
	m.diff.viewport, cmd = m.diff.viewport.Update(msg)
	return m, cmd
}
