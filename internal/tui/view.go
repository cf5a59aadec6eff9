package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/pcp/internal/tree"
	"github.com/sokinpui/pcp/internal/workspace"
)

// chrome is the number of lines taken by everything but the tree rows.
const chrome = 12

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.focus {
	case focusHistory, focusHistoryFilter:
		b.WriteString(m.renderHistory())
	case focusDiff:
		b.WriteString(m.renderDiff())
	default:
		b.WriteString(m.renderBrowser())
	}

	b.WriteString("\n")
	b.WriteString(m.renderToast())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderTabs() string {
	var parts []string
	active := m.ws.ActiveIndex()
	for i, t := range m.ws.Tabs() {
		title := t.Title()
		if t.LastCopy != nil {
			title += " •"
		}
		if i == active {
			parts = append(parts, m.styles.ActiveTab.Render(title))
		} else {
			parts = append(parts, m.styles.Tab.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) treeHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(m.height-chrome, 3)
}

func (m Model) diffHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(m.height-5, 3)
}

func (m Model) renderBrowser() string {
	t := m.ws.Active()
	s := m.styles
	var b strings.Builder

	if t.Root == "" {
		b.WriteString(s.Faint.Render("No folder open. Press o to choose one."))
	} else {
		b.WriteString(s.Title.Render(t.Root))
		b.WriteString(s.Faint.Render(fmt.Sprintf("  %d checked", t.Checked.Len())))
	}
	b.WriteString("\n")

	if m.focus == focusFolder {
		b.WriteString(m.folder.View())
		b.WriteString("\n")
	}
	if m.focus == focusSearch || t.Query != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}

	if m.focus == focusChecked {
		b.WriteString(m.renderChecked(t))
	} else {
		b.WriteString(m.renderTree(t))
	}
	b.WriteString("\n")

	promptBox := s.Border
	if m.focus == focusPrompt {
		promptBox = promptBox.BorderForeground(s.Title.GetForeground())
	}
	b.WriteString(promptBox.Render(m.prompt.View()))
	b.WriteString("\n")

	fix := "[ ] script fix"
	if t.ScriptFix {
		fix = s.Checked.Render("[x] script fix")
	}
	b.WriteString(fix)
	if t.LastCopy != nil {
		b.WriteString(s.Faint.Render("  last copy " + t.LastCopy.Timestamp + " (s to mark success)"))
	}
	return b.String()
}

func (m Model) renderTree(t workspace.Tab) string {
	s := m.styles
	rows := t.Rows()
	if len(rows) == 0 {
		if t.Searching() {
			return s.Faint.Render("No matches.")
		}
		return ""
	}

	height := m.treeHeight()
	start := 0
	if t.Cursor >= height {
		start = t.Cursor - height + 1
	}
	end := min(start+height, len(rows))

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := m.renderRow(t, rows[i])
		if i == t.Cursor {
			line = s.Cursor.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(t workspace.Tab, row tree.Row) string {
	s := m.styles
	indent := strings.Repeat("  ", row.Level)
	if row.More > 0 {
		return indent + s.Faint.Render(fmt.Sprintf("… %d more", row.More))
	}

	n := row.Node
	if n.IsDirectory {
		arrow := "▸ "
		if t.Expanded.Has(n.Path) {
			arrow = "▾ "
		}
		return indent + s.Directory.Render(arrow+n.Name+"/")
	}

	box := "[ ] "
	name := s.Text.Render(n.Name)
	if t.Checked.Has(n.Path) {
		box = s.Checked.Render("[x] ")
		name = s.Checked.Render(n.Name)
	}
	line := indent + box + name
	if t.Searching() && n.DisplayPath != "" {
		line += "  " + s.Faint.Render(n.DisplayPath)
	}
	return line
}

func (m Model) renderChecked(t workspace.Tab) string {
	s := m.styles
	paths := t.Checked.Paths()
	if len(paths) == 0 {
		return s.Faint.Render("Nothing checked.")
	}
	lines := []string{s.Title.Render(fmt.Sprintf("Checked files (%d)", len(paths)))}
	for i, p := range paths {
		line := "  " + p
		if i == m.checkedCursor {
			line = s.Cursor.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderToast() string {
	if m.toast == "" {
		return ""
	}
	if m.toastErr {
		return m.styles.Error.Render(m.toast)
	}
	return m.styles.Toast.Render(m.toast)
}

func (m Model) renderHelp() string {
	switch m.focus {
	case focusHistory, focusHistoryFilter:
		return m.help.View(historyKeys(m.keys))
	case focusDiff:
		return m.help.View(diffKeys(m.keys))
	}
	return m.help.View(m.keys)
}
