// Package workspace owns the browsing tabs. A Tab is a plain value and every
// change to it goes through a function that returns a new Tab, so views only
// ever read state they were handed.
package workspace

import (
	"github.com/sokinpui/pcp/internal/tree"
	"github.com/sokinpui/pcp/model"
)

// Tab is one independent browsing session.
type Tab struct {
	ID   string
	Root string

	Files    []model.TreeNode
	Visible  []model.TreeNode
	Expanded tree.PathSet
	Checked  tree.PathSet

	Query string
	// SearchToken increases on every query change; only a recompute
	// carrying the current token is applied.
	SearchToken int

	Prompt    string
	ScriptFix bool
	LastCopy  *model.CopyReceipt

	Cursor int
}

// NewTab returns an empty tab.
func NewTab(id string) Tab {
	return Tab{ID: id}
}

// Title is the label shown in the tab bar.
func (t Tab) Title() string {
	if t.Root == "" {
		return "New Tab"
	}
	return baseName(t.Root)
}

// Searching reports whether the visible list holds search results.
func (t Tab) Searching() bool {
	return !isBlank(t.Query)
}

// Rows returns the flattened rows currently on screen.
func (t Tab) Rows() []tree.Row {
	return tree.Rows(t.Visible, t.Expanded, t.Searching())
}

// OpenRoot points the tab at a freshly listed directory and clears every
// selection made under the previous root.
func OpenRoot(t Tab, root string, files []model.TreeNode) Tab {
	t.Root = root
	t.Files = files
	t.Expanded = tree.NewPathSet()
	t.Checked = tree.NewPathSet()
	t.Query = ""
	t.SearchToken++
	t.Visible = tree.ComputeVisible(files, "")
	t.Cursor = 0
	return t
}

// ToggleCheck flips a file's membership in the checked set. Directories
// are ignored.
func ToggleCheck(t Tab, node model.TreeNode) Tab {
	if node.IsDirectory {
		return t
	}
	t.Checked = t.Checked.Toggle(node.Path)
	return t
}

// Uncheck removes path from the checked set.
func Uncheck(t Tab, path string) Tab {
	t.Checked = t.Checked.Without(path)
	return t
}

// ToggleExpand collapses an expanded directory, or reports that its
// children must be fetched before it can be expanded. In the latter case
// the returned tab is unchanged; ApplyChildren commits the expansion once
// the fetch succeeds, so a failed fetch leaves no trace.
func ToggleExpand(t Tab, path string) (Tab, bool) {
	node, ok := tree.Find(t.Files, path)
	if !ok || !node.IsDirectory {
		return t, false
	}
	depth, _ := tree.Depth(t.Files, path)
	expanded, needsLoad := tree.ToggleExpansion(t.Expanded, path, depth)
	if needsLoad {
		return t, true
	}
	t.Expanded = expanded
	return t, false
}

// ApplyChildren merges freshly loaded children and marks path expanded.
func ApplyChildren(t Tab, path string, children []model.TreeNode) Tab {
	if _, ok := tree.Find(t.Files, path); !ok {
		return t
	}
	t.Files = tree.MergeChildren(t.Files, path, children)
	t.Expanded = t.Expanded.With(path)
	t.Visible = tree.ComputeVisible(t.Files, t.Query)
	return t
}

// SetQuery records a new search query and bumps the search token. The
// visible list is not recomputed until ApplySearch is called with the
// returned token.
func SetQuery(t Tab, query string) Tab {
	t.Query = query
	t.SearchToken++
	return t
}

// ApplySearch recomputes the visible list if token is still current.
func ApplySearch(t Tab, token int) (Tab, bool) {
	if token != t.SearchToken {
		return t, false
	}
	t.Visible = tree.ComputeVisible(t.Files, t.Query)
	t.Cursor = 0
	return t, true
}

// ApplyRefresh swaps in a re-listed tree. A directory loaded in the current
// tree but unloaded in files was expanded after the listing started, so its
// children are carried over. Checked and expanded paths that no longer exist
// are dropped.
func ApplyRefresh(t Tab, files []model.TreeNode) Tab {
	for _, dir := range tree.LoadedDirs(t.Files) {
		incoming, ok := tree.Find(files, dir)
		if !ok || !incoming.IsDirectory || incoming.Loaded() {
			continue
		}
		current, _ := tree.Find(t.Files, dir)
		files = tree.MergeChildren(files, dir, current.Children)
	}
	present := tree.Paths(files)
	t.Files = files
	t.Checked = t.Checked.Filter(func(p string) bool { return present[p] })
	t.Expanded = t.Expanded.Filter(func(p string) bool { return present[p] })
	t.Visible = tree.ComputeVisible(files, t.Query)
	t.Cursor = clamp(t.Cursor, len(t.Rows()))
	return t
}

func SetPrompt(t Tab, prompt string) Tab {
	t.Prompt = prompt
	return t
}

func ToggleScriptFix(t Tab) Tab {
	t.ScriptFix = !t.ScriptFix
	return t
}

// RecordCopy remembers the history entry written by a copy.
func RecordCopy(t Tab, receipt model.CopyReceipt) Tab {
	t.LastCopy = &receipt
	return t
}

// ClearAfterSuccess forgets the last copy and the prompt once the copy has
// been marked successful.
func ClearAfterSuccess(t Tab) Tab {
	t.LastCopy = nil
	t.Prompt = ""
	return t
}

// MoveCursor moves the row cursor by delta, staying on screen.
func MoveCursor(t Tab, delta int) Tab {
	t.Cursor = clamp(t.Cursor+delta, len(t.Rows()))
	return t
}

// CursorRow returns the row under the cursor.
func (t Tab) CursorRow() (tree.Row, bool) {
	rows := t.Rows()
	if t.Cursor < 0 || t.Cursor >= len(rows) {
		return tree.Row{}, false
	}
	return rows[t.Cursor], true
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
