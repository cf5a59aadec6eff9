package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/pcp/internal/clip"
	"github.com/sokinpui/pcp/internal/diff"
	"github.com/sokinpui/pcp/internal/theme"
	"github.com/sokinpui/pcp/model"
	"github.com/sokinpui/pcp/pcp"
)

// diffView shows a stored file against its current content.
type diffView struct {
	cmp      pcp.Comparison
	stats    diff.Stats
	viewport viewport.Model
}

func newDiffView(cmp pcp.Comparison, width, height int, s theme.Styles) diffView {
	d := diffView{
		cmp:      cmp,
		stats:    diff.Summarize(cmp.Lines),
		viewport: viewport.New(max(width, 20), max(height, 3)),
	}
	d.viewport.SetContent(renderDiffLines(cmp.Lines, s))
	return d
}

func (d *diffView) resize(width, height int) {
	d.viewport.Width = max(width, 20)
	d.viewport.Height = max(height, 3)
}

func (d *diffView) restyle(s theme.Styles) {
	if d.cmp.Path == "" {
		return
	}
	d.viewport.SetContent(renderDiffLines(d.cmp.Lines, s))
}

func renderDiffLines(lines []model.DiffLine, s theme.Styles) string {
	if len(lines) == 0 {
		return s.Faint.Render("(both versions are empty)")
	}
	var b strings.Builder
	for _, l := range lines {
		switch l.Kind {
		case model.Added:
			b.WriteString(s.Added.Render("+ " + l.Text))
		case model.Removed:
			b.WriteString(s.Removed.Render("- " + l.Text))
		default:
			b.WriteString(s.Text.Render("  " + l.Text))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func copyUnifiedCmd(board clip.Clipboard, cmp pcp.Comparison) tea.Cmd {
	return func() tea.Msg {
		text, err := cmp.Unified()
		if err != nil {
			return unifiedCopiedMsg{err: err}
		}
		return unifiedCopiedMsg{err: board.WriteAll(text)}
	}
}

func (m Model) renderDiff() string {
	s := m.styles
	header := s.Title.Render(m.diff.cmp.Path) + "  " +
		s.Added.Render("+"+strconv.Itoa(m.diff.stats.Added)) + " " +
		s.Removed.Render("-"+strconv.Itoa(m.diff.stats.Removed)) + " " +
		s.Faint.Render("="+strconv.Itoa(m.diff.stats.Unchanged))
	if !m.diff.stats.Changed() {
		header += "  " + s.Faint.Render("no changes since copy")
	}
	return header + "\n" + m.diff.viewport.View()
}
