package theme

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles the TUI renders with.
type Styles struct {
	Title     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Border    lipgloss.Style
	Text      lipgloss.Style
	Faint     lipgloss.Style
	Cursor    lipgloss.Style
	Checked   lipgloss.Style
	Directory lipgloss.Style
	Added     lipgloss.Style
	Removed   lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Toast     lipgloss.Style
	Help      lipgloss.Style
	Button    lipgloss.Style
}

// NewStyles derives the TUI styles from a palette.
func NewStyles(p Palette) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.Highlight),
		Tab:       lipgloss.NewStyle().Padding(0, 1).Foreground(p.Text).Background(p.TitlebarBg),
		ActiveTab: lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(p.ButtonText).Background(p.Button),
		Border:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		Text:      lipgloss.NewStyle().Foreground(p.Text),
		Faint:     lipgloss.NewStyle().Foreground(p.Text).Faint(true),
		Cursor:    lipgloss.NewStyle().Foreground(p.Text).Background(p.TreeHover).Bold(true),
		Checked:   lipgloss.NewStyle().Foreground(p.Highlight),
		Directory: lipgloss.NewStyle().Foreground(p.Highlight).Bold(true),
		Added:     lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Removed:   lipgloss.NewStyle().Foreground(lipgloss.Color("197")),
		Success:   lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("197")),
		Toast:     lipgloss.NewStyle().Foreground(p.ButtonText).Background(p.Button).Padding(0, 1),
		Help:      lipgloss.NewStyle().Foreground(p.Text).Faint(true),
		Button:    lipgloss.NewStyle().Foreground(p.ButtonText).Background(p.Button).Padding(0, 1),
	}
}
