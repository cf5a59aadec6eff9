package workspace

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokinpui/pcp/model"
)

func files() []model.TreeNode {
	return []model.TreeNode{
		{Name: "src", Path: "/r/src", IsDirectory: true},
		{Name: "b.go", Path: "/r/b.go"},
		{Name: "a.go", Path: "/r/a.go"},
	}
}

func TestAddAssignsNextID(t *testing.T) {
	w := New()
	require.Equal(t, "2", w.Add().ID)
	require.Equal(t, "3", w.Add().ID)
	require.Equal(t, 2, w.ActiveIndex())

	_, err := w.Close("2")
	require.NoError(t, err)
	require.Equal(t, "4", w.Add().ID)
}

func TestAddNeverReusesClosedID(t *testing.T) {
	w := New()
	require.Equal(t, "2", w.Add().ID)
	_, err := w.Close("2")
	require.NoError(t, err)

	require.Equal(t, "3", w.Add().ID)
	_, ok := w.Get("2")
	require.False(t, ok)
}

func TestCloseLastTab(t *testing.T) {
	w := New()
	_, err := w.Close("1")
	require.ErrorIs(t, err, ErrLastTab)
	_, err = w.Close("9")
	require.ErrorIs(t, err, ErrNoTab)
}

func TestCloseActivatesNeighbour(t *testing.T) {
	w := New()
	w.Add()
	w.Add()
	require.NoError(t, w.Activate("2"))

	closed, err := w.Close("2")
	require.NoError(t, err)
	require.Equal(t, "2", closed.ID)
	require.Equal(t, "1", w.Active().ID)

	require.NoError(t, w.Activate("3"))
	_, err = w.Close("1")
	require.NoError(t, err)
	require.Equal(t, "3", w.Active().ID)
}

func TestCloseFirstActiveTab(t *testing.T) {
	w := New()
	w.Add()
	require.NoError(t, w.Activate("1"))
	_, err := w.Close("1")
	require.NoError(t, err)
	require.Equal(t, "2", w.Active().ID)
}

func TestCycle(t *testing.T) {
	w := New()
	w.Add()
	w.Add()
	w.Cycle(1)
	require.Equal(t, "1", w.Active().ID)
	w.Cycle(-1)
	require.Equal(t, "3", w.Active().ID)
}

func TestTabsAreIndependent(t *testing.T) {
	w := New()
	w.Add()
	w.Update("1", func(t Tab) Tab { return OpenRoot(t, "/r", files()) })
	w.Update("1", func(t Tab) Tab { return ToggleCheck(t, files()[1]) })

	one, _ := w.Get("1")
	two, _ := w.Get("2")
	require.Equal(t, 1, one.Checked.Len())
	require.Equal(t, 0, two.Checked.Len())
	require.Equal(t, "", two.Root)
	require.Equal(t, "r", one.Title())
	require.Equal(t, "New Tab", two.Title())
}

func TestUpdateKeepsID(t *testing.T) {
	w := New()
	w.Update("1", func(t Tab) Tab { t.ID = "x"; return t })
	_, ok := w.Get("1")
	require.True(t, ok)
	require.False(t, w.Update("x", func(t Tab) Tab { return t }))
}

func TestOpenRootResetsSelection(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	tab = ToggleCheck(tab, files()[2])
	tab = SetQuery(tab, "a")

	tab = OpenRoot(tab, "/other", nil)
	require.Equal(t, 0, tab.Checked.Len())
	require.Equal(t, "", tab.Query)
	require.Equal(t, "/other", tab.Root)
}

func TestOpenRootSortsVisible(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	var got []string
	for _, n := range tab.Visible {
		got = append(got, n.Name)
	}
	require.Equal(t, []string{"src", "a.go", "b.go"}, got)
}

func TestToggleCheckIgnoresDirectories(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	tab = ToggleCheck(tab, files()[0])
	require.Equal(t, 0, tab.Checked.Len())

	tab = ToggleCheck(tab, files()[1])
	tab = ToggleCheck(tab, files()[2])
	require.Equal(t, []string{"/r/b.go", "/r/a.go"}, tab.Checked.Paths())

	tab = Uncheck(tab, "/r/b.go")
	require.Equal(t, []string{"/r/a.go"}, tab.Checked.Paths())
}

func TestExpandRequiresLoadThenCollapses(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())

	same, load := ToggleExpand(tab, "/r/src")
	require.True(t, load)
	require.False(t, same.Expanded.Has("/r/src"))

	tab = ApplyChildren(tab, "/r/src", []model.TreeNode{{Name: "x.go", Path: "/r/src/x.go"}})
	require.True(t, tab.Expanded.Has("/r/src"))
	require.Len(t, tab.Rows(), 4)

	tab, load = ToggleExpand(tab, "/r/src")
	require.False(t, load)
	require.False(t, tab.Expanded.Has("/r/src"))
	require.Len(t, tab.Rows(), 3)

	_, load = ToggleExpand(tab, "/r/a.go")
	require.False(t, load)
}

func TestSearchToken(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	tab = SetQuery(tab, "a")
	stale := tab.SearchToken
	tab = SetQuery(tab, "b.")

	same, applied := ApplySearch(tab, stale)
	require.False(t, applied)
	require.Len(t, same.Visible, 3)

	tab, applied = ApplySearch(tab, tab.SearchToken)
	require.True(t, applied)
	require.Len(t, tab.Visible, 1)
	require.Equal(t, "b.go", tab.Visible[0].Name)
	require.True(t, tab.Searching())
}

func TestApplyRefreshPrunes(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	tab = ToggleCheck(tab, files()[1])
	tab = ToggleCheck(tab, files()[2])
	tab = ApplyChildren(tab, "/r/src", nil)

	tab = ApplyRefresh(tab, []model.TreeNode{{Name: "a.go", Path: "/r/a.go"}})
	require.Equal(t, []string{"/r/a.go"}, tab.Checked.Paths())
	require.Equal(t, 0, tab.Expanded.Len())
}

func TestApplyRefreshKeepsDirectoriesLoadedSinceListing(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	listed := files()

	a := model.TreeNode{Name: "a.go", Path: "/r/src/a.go"}
	tab = ApplyChildren(tab, "/r/src", []model.TreeNode{a})
	tab = ToggleCheck(tab, a)

	tab = ApplyRefresh(tab, listed)
	require.Equal(t, []string{"/r/src/a.go"}, tab.Checked.Paths())
	require.True(t, tab.Expanded.Has("/r/src"))
	require.Len(t, tab.Rows(), 4)

	tab, needsLoad := ToggleExpand(tab, "/r/src")
	require.False(t, needsLoad)
	require.False(t, tab.Expanded.Has("/r/src"))
}

func TestPromptLifecycle(t *testing.T) {
	tab := SetPrompt(NewTab("1"), "do it")
	tab = ToggleScriptFix(tab)
	require.True(t, tab.ScriptFix)

	tab = RecordCopy(tab, model.CopyReceipt{Path: "p.json"})
	require.Equal(t, "p.json", tab.LastCopy.Path)

	tab = ClearAfterSuccess(tab)
	require.Nil(t, tab.LastCopy)
	require.Equal(t, "", tab.Prompt)
	require.True(t, tab.ScriptFix)
}

func TestCursor(t *testing.T) {
	tab := OpenRoot(NewTab("1"), "/r", files())
	tab = MoveCursor(tab, 10)
	require.Equal(t, 2, tab.Cursor)
	row, ok := tab.CursorRow()
	require.True(t, ok)
	require.Equal(t, "b.go", row.Node.Name)
	tab = MoveCursor(tab, -10)
	require.Equal(t, 0, tab.Cursor)

	empty := NewTab("2")
	_, ok = empty.CursorRow()
	require.False(t, ok)
}
