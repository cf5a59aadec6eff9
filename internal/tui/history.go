package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/pcp/internal/history"
	"github.com/sokinpui/pcp/internal/markdown"
	"github.com/sokinpui/pcp/model"
)

// historyPanel is the calendar plus the entries of the selected day.
type historyPanel struct {
	date    time.Time
	dates   map[string]bool
	records []model.HistoryRecord
	filter  textinput.Model

	cursor     int
	detail     bool
	fileCursor int
}

func newHistoryPanel(now time.Time) historyPanel {
	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "prompt or file"
	return historyPanel{
		date:   time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		dates:  map[string]bool{},
		filter: filter,
	}
}

func (h historyPanel) dateKey() string {
	return h.date.Format(history.DateLayout)
}

func (h historyPanel) visible() []model.HistoryRecord {
	return history.Filter(h.records, h.filter.Value())
}

func (h historyPanel) selected() (model.HistoryRecord, bool) {
	records := h.visible()
	if h.cursor < 0 || h.cursor >= len(records) {
		return model.HistoryRecord{}, false
	}
	return records[h.cursor], true
}

func (h *historyPanel) apply(msg historyLoadedMsg) {
	h.records = msg.records
	h.dates = make(map[string]bool, len(msg.dates))
	for _, d := range msg.dates {
		h.dates[d] = true
	}
	h.clamp()
}

func (h *historyPanel) clamp() {
	n := len(h.visible())
	if h.cursor >= n {
		h.cursor = n - 1
	}
	if h.cursor < 0 {
		h.cursor = 0
	}
	if h.detail {
		r, ok := h.selected()
		if !ok {
			h.detail = false
			h.fileCursor = 0
			return
		}
		h.fileCursor = min(h.fileCursor, max(len(r.Entry.Files)-1, 0))
	}
}

// shiftDay moves the selection by delta days, never past today.
func (h *historyPanel) shiftDay(delta int, now time.Time) bool {
	next := h.date.AddDate(0, 0, delta)
	if next.After(now) {
		return false
	}
	h.date = next
	return true
}

// shiftMonth moves to the same day of another month, clamped to its length
// and to today.
func (h *historyPanel) shiftMonth(delta int, now time.Time) bool {
	if delta > 0 && history.NextMonthDisabled(h.date, now) {
		return false
	}
	first := history.MonthStart(h.date).AddDate(0, delta, 0)
	last := first.AddDate(0, 1, -1).Day()
	next := first.AddDate(0, 0, min(h.date.Day(), last)-1)
	if next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.date.Location())
	}
	h.date = next
	return true
}

func (h *historyPanel) resetSelection() {
	h.cursor, h.fileCursor, h.detail = 0, 0, false
	h.records = nil
}

func loadHistoryCmd(app Backend, date string) tea.Cmd {
	return func() tea.Msg {
		msg := historyLoadedMsg{date: date}
		msg.dates, msg.err = app.Dates()
		if msg.err != nil {
			return msg
		}
		msg.records, msg.err = app.Day(date)
		return msg
	}
}

func markEntryCmd(app Backend, rel string) tea.Cmd {
	return func() tea.Msg {
		return entryMarkedMsg{path: rel, err: app.MarkSuccess(rel)}
	}
}

func deleteEntryCmd(app Backend, rel string) tea.Cmd {
	return func() tea.Msg {
		return entryDeletedMsg{path: rel, err: app.DeleteEntry(rel)}
	}
}

func compareCmd(app Backend, rel, path string) tea.Cmd {
	return func() tea.Msg {
		cmp, err := app.Compare(rel, path)
		return comparedMsg{cmp: cmp, err: err}
	}
}

func (m Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	h := &m.history
	now := m.now()
	switch {
	case key.Matches(msg, m.keys.Back):
		if h.detail {
			h.detail = false
			return m, nil
		}
		m.focus = focusTree

	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PrevDay), key.Matches(msg, m.keys.NextDay):
		delta := 1
		if key.Matches(msg, m.keys.PrevDay) {
			delta = -1
		}
		if h.shiftDay(delta, now) {
			h.resetSelection()
			return m, loadHistoryCmd(m.app, h.dateKey())
		}

	case key.Matches(msg, m.keys.PrevMon), key.Matches(msg, m.keys.NextMon):
		delta := 1
		if key.Matches(msg, m.keys.PrevMon) {
			delta = -1
		}
		if h.shiftMonth(delta, now) {
			h.resetSelection()
			return m, loadHistoryCmd(m.app, h.dateKey())
		}

	case key.Matches(msg, m.keys.Up):
		if h.detail {
			h.fileCursor = max(h.fileCursor-1, 0)
		} else {
			h.cursor = max(h.cursor-1, 0)
		}

	case key.Matches(msg, m.keys.Down):
		if h.detail {
			h.fileCursor++
		} else {
			h.cursor++
		}
		h.clamp()

	case key.Matches(msg, m.keys.Search):
		m.focus = focusHistoryFilter
		return m, h.filter.Focus()

	case key.Matches(msg, m.keys.Expand):
		r, ok := h.selected()
		if !ok {
			return m, nil
		}
		if !h.detail {
			h.detail, h.fileCursor = true, 0
			return m, nil
		}
		if h.fileCursor < len(r.Entry.Files) {
			return m, compareCmd(m.app, r.Path, r.Entry.Files[h.fileCursor].Path)
		}

	case key.Matches(msg, m.keys.Success):
		if r, ok := h.selected(); ok && !r.Entry.Success {
			return m, markEntryCmd(m.app, r.Path)
		}

	case key.Matches(msg, m.keys.Remove):
		if r, ok := h.selected(); ok {
			return m, deleteEntryCmd(m.app, r.Path)
		}

	case key.Matches(msg, m.keys.View):
		if m.viewerActive {
			m.viewerActive = false
			return m, hideViewerCmd(m.app, m.viewerBuf)
		}
		r, ok := h.selected()
		if !ok {
			return m, nil
		}
		path := ""
		if h.detail && h.fileCursor < len(r.Entry.Files) {
			path = r.Entry.Files[h.fileCursor].Path
		}
		return m, viewStoredCmd(m.app, r.Path, path)
	}
	return m, nil
}

func (m Model) updateHistoryFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.history.filter.SetValue("")
		fallthrough
	case tea.KeyEnter:
		m.history.filter.Blur()
		m.focus = focusHistory
		m.history.clamp()
		return m, nil
	}
	var cmd tea.Cmd
	m.history.filter, cmd = m.history.filter.Update(msg)
	m.history.cursor, m.history.detail = 0, false
	m.history.clamp()
	return m, cmd
}

// --- View ---

const weekdays = "Su Mo Tu We Th Fr Sa"

func (m Model) renderCalendar() string {
	h := m.history
	s := m.styles
	var b strings.Builder

	title := h.date.Format("January 2006")
	b.WriteString(s.Title.Render(title))
	if history.NextMonthDisabled(h.date, m.now()) {
		b.WriteString(s.Faint.Render("  <"))
	} else {
		b.WriteString(s.Faint.Render("  < >"))
	}
	b.WriteString("\n")
	b.WriteString(s.Faint.Render(weekdays))
	b.WriteString("\n")

	month := history.MonthStart(h.date)
	for i, day := range history.MonthGrid(h.date) {
		cell := "  "
		if day > 0 {
			cell = fmt.Sprintf("%2d", day)
			date := month.AddDate(0, 0, day-1).Format(history.DateLayout)
			switch {
			case day == h.date.Day():
				cell = s.Cursor.Render(cell)
			case h.dates[date]:
				cell = s.Checked.Render(cell)
			default:
				cell = s.Text.Render(cell)
			}
		}
		b.WriteString(cell)
		if i%7 == 6 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	return b.String()
}

func (m Model) renderEntries(width int) string {
	h := m.history
	s := m.styles
	var b strings.Builder

	if m.focus == focusHistoryFilter || h.filter.Value() != "" {
		b.WriteString(h.filter.View())
		b.WriteString("\n")
	}

	records := h.visible()
	if len(records) == 0 {
		b.WriteString(s.Faint.Render("No entries on " + h.dateKey()))
		return b.String()
	}

	for i, r := range records {
		mark := s.Faint.Render("·")
		if r.Entry.Success {
			mark = s.Success.Render("✓")
		}
		at := r.Entry.Timestamp
		if t, err := time.Parse(history.TimestampLayout, at); err == nil {
			at = t.Local().Format("15:04:05")
		}
		line := fmt.Sprintf("%s %s  %d file(s)  %s", mark, at, len(r.Entry.Files), markdown.Summary(r.Entry.Prompt, max(width-24, 10)))
		if i == h.cursor && !h.detail {
			line = s.Cursor.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if i == h.cursor && h.detail {
			for j, f := range r.Entry.Files {
				fl := "    " + f.Path
				if j == h.fileCursor {
					fl = s.Cursor.Render(fl)
				} else {
					fl = s.Text.Render(fl)
				}
				b.WriteString(fl)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderHistory() string {
	calendar := m.styles.Border.Render(m.renderCalendar())
	entriesWidth := max(m.width-lipgloss.Width(calendar)-2, 30)
	entries := m.styles.Border.Width(entriesWidth).Render(m.renderEntries(entriesWidth))
	return lipgloss.JoinHorizontal(lipgloss.Top, calendar, entries)
}
