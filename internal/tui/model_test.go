package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/pcp/internal/clip"
	"github.com/sokinpui/pcp/internal/config"
	"github.com/sokinpui/pcp/internal/nvim"
	"github.com/sokinpui/pcp/internal/watch"
	"github.com/sokinpui/pcp/internal/workspace"
	"github.com/sokinpui/pcp/model"
	"github.com/sokinpui/pcp/pcp"
)

type fakeBackend struct {
	board    clip.Memory
	events   chan watch.Event
	opened   map[string]pcp.Opened
	stopped  []string
	copies   []pcp.CopyRequest
	loads    []string
	childErr error
	visible  bool
	theme    string

	days    map[string][]model.HistoryRecord
	marked  []string
	deleted []string
}

func newFake() *fakeBackend {
	return &fakeBackend{
		events: make(chan watch.Event),
		opened: map[string]pcp.Opened{},
		theme:  "dark",
		days:   map[string][]model.HistoryRecord{},
	}
}

func (f *fakeBackend) Settings() config.Config {
	return config.Config{SearchDebounce: 10 * time.Millisecond}
}
func (f *fakeBackend) Clipboard() clip.Clipboard { return &f.board }
func (f *fakeBackend) OpenFolder(tab, path string) (pcp.Opened, error) {
	if o, ok := f.opened[path]; ok {
		return o, nil
	}
	return pcp.Opened{}, errors.New("no such folder")
}
func (f *fakeBackend) StopWatching(tab string)          { f.stopped = append(f.stopped, tab) }
func (f *fakeBackend) WatchEvents() <-chan watch.Event { return f.events }
func (f *fakeBackend) LoadChildren(path string) ([]model.TreeNode, error) {
	f.loads = append(f.loads, path)
	if f.childErr != nil {
		return nil, f.childErr
	}
	return []model.TreeNode{{Name: "inner.go", Path: path + "/inner.go"}}, nil
}
func (f *fakeBackend) Refresh(t workspace.Tab) ([]model.TreeNode, error) { return t.Files, nil }
func (f *fakeBackend) Reveal(path string) error                          { return nil }
func (f *fakeBackend) Copy(_ context.Context, req pcp.CopyRequest) (model.Summary, error) {
	f.copies = append(f.copies, req)
	return model.Summary{
		Copied:  req.Paths,
		Bytes:   42,
		Receipt: model.CopyReceipt{Path: "prompt-copy/history/2024/03/05/1.json", Timestamp: "2024-03-05T10:00:00.000Z"},
	}, nil
}
func (f *fakeBackend) MarkLastSuccess(t workspace.Tab) (workspace.Tab, error) {
	return workspace.ClearAfterSuccess(t), nil
}
func (f *fakeBackend) MarkSuccess(rel string) error {
	f.marked = append(f.marked, rel)
	for _, records := range f.days {
		for i := range records {
			if records[i].Path == rel {
				records[i].Entry.Success = true
			}
		}
	}
	return nil
}
func (f *fakeBackend) Dates() ([]string, error) {
	var dates []string
	for d, records := range f.days {
		if len(records) > 0 {
			dates = append(dates, d)
		}
	}
	return dates, nil
}
func (f *fakeBackend) Day(date string) ([]model.HistoryRecord, error) { return f.days[date], nil }
func (f *fakeBackend) DeleteEntry(rel string) error {
	f.deleted = append(f.deleted, rel)
	for d, records := range f.days {
		kept := records[:0]
		for _, r := range records {
			if r.Path != rel {
				kept = append(kept, r)
			}
		}
		f.days[d] = kept
	}
	return nil
}
func (f *fakeBackend) Compare(rel, path string) (pcp.Comparison, error) {
	return pcp.Comparison{
		Path:    path,
		Stored:  "old\n",
		Current: "new\n",
		Lines:   []model.DiffLine{{Text: "old", Kind: model.Removed}, {Text: "new", Kind: model.Added}},
	}, nil
}
func (f *fakeBackend) Theme() string                                 { return f.theme }
func (f *fakeBackend) SaveTheme(name string) error                   { f.theme = name; return nil }
func (f *fakeBackend) ViewStored(rel, path string) (nvim.Buffer, error) { return 7, nil }
func (f *fakeBackend) ViewerVisible(buf nvim.Buffer) bool            { return f.visible }
func (f *fakeBackend) HideViewer(buf nvim.Buffer) error              { return nil }

var sampleTree = []model.TreeNode{
	{Name: "src", Path: "/p/src", IsDirectory: true},
	{Name: "main.go", Path: "/p/main.go"},
	{Name: "readme.md", Path: "/p/readme.md"},
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+t":
		return tea.KeyMsg{Type: tea.KeyCtrlT}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func opened(t *testing.T, f *fakeBackend) Model {
	t.Helper()
	m := New(f, "")
	m, _ = update(t, m, folderOpenedMsg{tab: "1", opened: pcp.Opened{Root: "/p", Files: sampleTree}})
	return m
}

func TestFolderOpenedResetsTab(t *testing.T) {
	m := opened(t, newFake())
	tab := m.ws.Active()
	require.Equal(t, "/p", tab.Root)
	require.Len(t, tab.Rows(), 3)
	require.Equal(t, "Opened /p", m.toast)
}

func TestFolderOpenFailureKeepsTab(t *testing.T) {
	m := opened(t, newFake())
	m, _ = update(t, m, folderOpenedMsg{tab: "1", err: errors.New("denied")})
	require.Equal(t, "/p", m.ws.Active().Root)
	require.True(t, m.toastErr)
}

func TestFolderInputEscIsNotAnError(t *testing.T) {
	m := New(newFake(), "")
	m, _ = update(t, m, keyPress("o"))
	require.Equal(t, focusFolder, m.focus)
	m, cmd := update(t, m, keyPress("esc"))
	require.Equal(t, focusTree, m.focus)
	require.Nil(t, cmd)
	require.Empty(t, m.toast)
}

func TestFolderInputOpens(t *testing.T) {
	f := newFake()
	f.opened["/p"] = pcp.Opened{Root: "/p", Files: sampleTree}
	m := New(f, "")
	m, _ = update(t, m, keyPress("o"))
	m.folder.SetValue("/p")
	m, cmd := update(t, m, keyPress("enter"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Equal(t, "/p", m.ws.Active().Root)
}

func TestStaleSearchTickIgnored(t *testing.T) {
	m := opened(t, newFake())
	m, _ = update(t, m, keyPress("/"))
	require.Equal(t, focusSearch, m.focus)

	m, _ = update(t, m, keyPress("m"))
	first := m.ws.Active().SearchToken
	m, _ = update(t, m, keyPress("a"))
	second := m.ws.Active().SearchToken
	require.Greater(t, second, first)

	m, _ = update(t, m, searchTickMsg{tab: "1", token: first})
	require.Len(t, m.ws.Active().Visible, 3, "stale token must not recompute")

	m, _ = update(t, m, searchTickMsg{tab: "1", token: second})
	visible := m.ws.Active().Visible
	require.Len(t, visible, 1)
	require.Equal(t, "main.go", visible[0].Name)
}

func TestSearchEscClears(t *testing.T) {
	m := opened(t, newFake())
	m, _ = update(t, m, keyPress("/"))
	m, _ = update(t, m, keyPress("z"))
	m, _ = update(t, m, keyPress("esc"))
	require.Equal(t, focusTree, m.focus)
	require.Empty(t, m.ws.Active().Query)
	require.Len(t, m.ws.Active().Visible, 3)
}

func TestCheckAndCopy(t *testing.T) {
	f := newFake()
	m := opened(t, f)

	// Directories cannot be checked.
	m, _ = update(t, m, keyPress("space"))
	require.Equal(t, 0, m.ws.Active().Checked.Len())

	m, _ = update(t, m, keyPress("down"))
	m, _ = update(t, m, keyPress("space"))
	require.True(t, m.ws.Active().Checked.Has("/p/main.go"))

	m, _ = update(t, m, keyPress("f"))
	m, cmd := update(t, m, keyPress("y"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	require.Len(t, f.copies, 1)
	require.Equal(t, []string{"/p/main.go"}, f.copies[0].Paths)
	require.True(t, f.copies[0].ScriptFix)
	require.NotNil(t, m.ws.Active().LastCopy)
	require.Contains(t, m.toast, "Copied 1 file(s)")
}

func TestCopyWithNothingChecked(t *testing.T) {
	f := newFake()
	m := opened(t, f)
	m, _ = update(t, m, keyPress("y"))
	require.True(t, m.toastErr)
	require.Empty(t, f.copies)
}

func TestMarkSuccessClearsPrompt(t *testing.T) {
	m := opened(t, newFake())
	m.ws.Update("1", func(tab workspace.Tab) workspace.Tab {
		tab = workspace.SetPrompt(tab, "fix")
		return workspace.RecordCopy(tab, model.CopyReceipt{Path: "prompt-copy/history/2024/03/05/1.json"})
	})
	m.prompt.SetValue("fix")

	m, cmd := update(t, m, keyPress("s"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Nil(t, m.ws.Active().LastCopy)
	require.Empty(t, m.ws.Active().Prompt)
	require.Empty(t, m.prompt.Value())
}

func TestExpandLoadsChildrenOnce(t *testing.T) {
	m := opened(t, newFake())
	m, cmd := update(t, m, keyPress("enter"))
	require.NotNil(t, cmd)
	require.False(t, m.ws.Active().Expanded.Has("/p/src"), "expansion waits for the load")

	m, _ = update(t, m, cmd())
	tab := m.ws.Active()
	require.True(t, tab.Expanded.Has("/p/src"))
	require.Len(t, tab.Rows(), 4)

	m, cmd = update(t, m, keyPress("enter"))
	require.Nil(t, cmd)
	require.False(t, m.ws.Active().Expanded.Has("/p/src"))
}

func TestFailedChildLoadKeepsTreeAndRetries(t *testing.T) {
	f := newFake()
	f.childErr = errors.New("permission denied")
	m := opened(t, f)
	before := m.ws.Active()

	m, cmd := update(t, m, keyPress("enter"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	tab := m.ws.Active()
	require.Equal(t, before.Files, tab.Files)
	require.Equal(t, before.Expanded.Paths(), tab.Expanded.Paths())
	require.True(t, m.toastErr)
	require.Contains(t, m.toast, "permission denied")

	f.childErr = nil
	m, cmd = update(t, m, keyPress("enter"))
	require.NotNil(t, cmd, "toggling again retries the load")
	m, _ = update(t, m, cmd())
	require.Equal(t, []string{"/p/src", "/p/src"}, f.loads)
	require.True(t, m.ws.Active().Expanded.Has("/p/src"))
}

func TestTabs(t *testing.T) {
	f := newFake()
	m := opened(t, f)

	m, _ = update(t, m, keyPress("ctrl+w"))
	require.True(t, m.toastErr, "the last tab cannot be closed")
	require.Equal(t, 1, m.ws.Len())

	m, _ = update(t, m, keyPress("ctrl+t"))
	require.Equal(t, 2, m.ws.Len())
	require.Equal(t, "2", m.ws.Active().ID)
	require.Equal(t, focusFolder, m.focus)
	m, _ = update(t, m, keyPress("esc"))

	m, cmd := update(t, m, keyPress("ctrl+w"))
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"2"}, f.stopped)
	require.Equal(t, "1", m.ws.Active().ID)
}

func TestFolderOpenedForClosedTabStopsWatch(t *testing.T) {
	f := newFake()
	m := New(f, "")
	_, cmd := update(t, m, folderOpenedMsg{tab: "9", opened: pcp.Opened{Root: "/p"}})
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, []string{"9"}, f.stopped)
}

func TestLateFolderForClosedTabSkipsNewTab(t *testing.T) {
	f := newFake()
	m := New(f, "")
	m, _ = update(t, m, keyPress("ctrl+t"))
	m, _ = update(t, m, keyPress("esc"))
	m, _ = update(t, m, keyPress("ctrl+w"))
	m, _ = update(t, m, keyPress("ctrl+t"))
	m, _ = update(t, m, keyPress("esc"))
	require.Equal(t, "3", m.ws.Active().ID)

	m, cmd := update(t, m, folderOpenedMsg{tab: "2", opened: pcp.Opened{Root: "/late", Files: sampleTree}})
	require.NotNil(t, cmd)
	cmd()
	require.Contains(t, f.stopped, "2")
	require.Empty(t, m.ws.Active().Root)
}

func TestWatchEventRefreshesOwningTab(t *testing.T) {
	m := opened(t, newFake())
	_, cmd := update(t, m, watchMsg{watch.Event{Tab: "1", Root: "/p"}})
	require.NotNil(t, cmd)

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
}

func TestViewerPollStopsWhenHidden(t *testing.T) {
	f := newFake()
	m := New(f, "")

	m, cmd := update(t, m, viewerShownMsg{buf: 7})
	require.NotNil(t, cmd)
	require.True(t, m.viewerActive)

	f.visible = true
	m, cmd = update(t, m, viewerPollMsg{buf: 7})
	require.NotNil(t, cmd)
	state := cmd().(viewerStateMsg)
	require.True(t, state.visible)

	f.visible = false
	m, cmd = update(t, m, viewerPollMsg{buf: 7})
	m, cmd = update(t, m, cmd())
	require.Nil(t, cmd)
	require.False(t, m.viewerActive)

	_, cmd = update(t, m, viewerPollMsg{buf: 7})
	require.Nil(t, cmd)
}

func TestToastClearsOnlyLatest(t *testing.T) {
	m := New(newFake(), "")
	m.notify("first")
	first := m.toastID
	m.notify("second")

	m, _ = update(t, m, clearToastMsg{id: first})
	require.Equal(t, "second", m.toast)
	m, _ = update(t, m, clearToastMsg{id: m.toastID})
	require.Empty(t, m.toast)
}

func TestThemeCycles(t *testing.T) {
	f := newFake()
	m := New(f, "")
	require.Equal(t, "dark", m.theme)
	m, cmd := update(t, m, keyPress("t"))
	require.Equal(t, "cosmic", m.theme)
	require.NotNil(t, cmd)
}

func TestViewRenders(t *testing.T) {
	m := opened(t, newFake())
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	out := m.View()
	require.Contains(t, out, "/p")
	require.Contains(t, out, "main.go")
	require.Contains(t, out, "src/")
}

const entryPath = "prompt-copy/history/2024/03/05/1.json"

func historyModel(t *testing.T, f *fakeBackend) Model {
	t.Helper()
	f.days["2024-03-05"] = []model.HistoryRecord{{
		Path: entryPath,
		Entry: model.HistoryEntry{
			Timestamp: "2024-03-05T10:00:00.000Z",
			Prompt:    "fix the parser",
			Files:     []model.HistoryFile{{Path: "/p/main.go", Content: "old\n"}},
		},
	}}
	m := opened(t, f)
	now := time.Date(2024, 3, 5, 15, 0, 0, 0, time.Local)
	m.now = func() time.Time { return now }
	m.history = newHistoryPanel(now)

	m, cmd := update(t, m, keyPress("h"))
	require.Equal(t, focusHistory, m.focus)
	m, _ = update(t, m, cmd())
	require.Len(t, m.history.records, 1)
	require.True(t, m.history.dates["2024-03-05"])
	return m
}

// reload runs the history reload that follows a toast in a batch.
func reload(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)
	m, _ = update(t, m, batch[1]())
	return m
}

func TestHistoryNavigationStopsAtToday(t *testing.T) {
	m := historyModel(t, newFake())

	m, cmd := update(t, m, keyPress("right"))
	require.Nil(t, cmd)
	m, cmd = update(t, m, keyPress(">"))
	require.Nil(t, cmd)
	require.Equal(t, "2024-03-05", m.history.dateKey())

	m, cmd = update(t, m, keyPress("left"))
	require.NotNil(t, cmd)
	require.Equal(t, "2024-03-04", m.history.dateKey())
	require.Empty(t, m.history.records)

	m, _ = update(t, m, keyPress("<"))
	require.Equal(t, "2024-02-04", m.history.dateKey())
	m, cmd = update(t, m, keyPress(">"))
	require.NotNil(t, cmd)
	require.Equal(t, "2024-03-04", m.history.dateKey())

	m, _ = update(t, m, historyLoadedMsg{date: "2024-03-05", records: []model.HistoryRecord{{Path: entryPath}}})
	require.Empty(t, m.history.records, "a load for another day is ignored")

	m, _ = update(t, m, keyPress("esc"))
	require.Equal(t, focusTree, m.focus)
}

func TestHistoryMarkSuccessReloads(t *testing.T) {
	f := newFake()
	m := historyModel(t, f)

	m, cmd := update(t, m, keyPress("s"))
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())
	require.Equal(t, []string{entryPath}, f.marked)
	require.Equal(t, "Marked as success", m.toast)

	m = reload(t, m, cmd)
	require.True(t, m.history.records[0].Entry.Success)

	_, cmd = update(t, m, keyPress("s"))
	require.Nil(t, cmd, "an entry already marked is left alone")
}

func TestHistoryDeleteClearsLastCopy(t *testing.T) {
	f := newFake()
	m := historyModel(t, f)
	m.ws.Update("1", func(t workspace.Tab) workspace.Tab {
		return workspace.RecordCopy(t, model.CopyReceipt{Path: entryPath})
	})

	m, cmd := update(t, m, keyPress("x"))
	require.NotNil(t, cmd)
	m, cmd = update(t, m, cmd())
	require.Equal(t, []string{entryPath}, f.deleted)
	require.Nil(t, m.ws.Active().LastCopy)

	m = reload(t, m, cmd)
	require.Empty(t, m.history.records)
	require.False(t, m.history.dates["2024-03-05"])
}

func TestHistoryFilter(t *testing.T) {
	m := historyModel(t, newFake())

	m, _ = update(t, m, keyPress("/"))
	require.Equal(t, focusHistoryFilter, m.focus)
	m, _ = update(t, m, keyPress("zzz"))
	require.Empty(t, m.history.visible())

	m, _ = update(t, m, keyPress("esc"))
	require.Equal(t, focusHistory, m.focus)
	require.Len(t, m.history.visible(), 1)

	m, _ = update(t, m, keyPress("/"))
	m, _ = update(t, m, keyPress("parser"))
	m, _ = update(t, m, keyPress("enter"))
	require.Equal(t, focusHistory, m.focus)
	require.Len(t, m.history.visible(), 1)
}

func TestHistoryCompareOpensDiff(t *testing.T) {
	f := newFake()
	m := historyModel(t, f)

	m, cmd := update(t, m, keyPress("enter"))
	require.Nil(t, cmd)
	require.True(t, m.history.detail)

	m, cmd = update(t, m, keyPress("enter"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Equal(t, focusDiff, m.focus)
	require.Equal(t, "/p/main.go", m.diff.cmp.Path)
	require.Equal(t, 1, m.diff.stats.Added)
	require.Equal(t, 1, m.diff.stats.Removed)
	require.Contains(t, m.View(), "/p/main.go")

	m, cmd = update(t, m, keyPress("u"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	require.Equal(t, "Unified diff copied", m.toast)
	text, err := f.board.ReadAll()
	require.NoError(t, err)
	require.Contains(t, text, "-old")
	require.Contains(t, text, "+new")

	m, _ = update(t, m, keyPress("esc"))
	require.Equal(t, focusHistory, m.focus)
	m, _ = update(t, m, keyPress("esc"))
	require.False(t, m.history.detail)
}
