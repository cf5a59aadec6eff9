package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Check    key.Binding
	Expand   key.Binding
	Search   key.Binding
	Prompt   key.Binding
	Open     key.Binding
	Copy     key.Binding
	Success  key.Binding
	Fix      key.Binding
	Checked  key.Binding
	History  key.Binding
	Remove   key.Binding
	Refresh  key.Binding
	Theme    key.Binding
	View     key.Binding
	NewTab   key.Binding
	CloseTab key.Binding
	PrevTab  key.Binding
	NextTab  key.Binding
	PrevDay  key.Binding
	NextDay  key.Binding
	PrevMon  key.Binding
	NextMon  key.Binding
	Unified  key.Binding
	Back     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Check:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "check")),
		Expand:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Prompt:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prompt")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open folder")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy")),
		Success:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "mark success")),
		Fix:      key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "script fix")),
		Checked:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "checked")),
		History:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		View:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "view in nvim")),
		NewTab:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "new tab")),
		CloseTab: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "close tab")),
		PrevTab:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev tab")),
		NextTab:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next tab")),
		PrevDay:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev day")),
		NextDay:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next day")),
		PrevMon:  key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "prev month")),
		NextMon:  key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "next month")),
		Unified:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "copy unified diff")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Check, k.Expand, k.Search, k.Prompt, k.Copy, k.History, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Check, k.Expand, k.Search, k.Refresh},
		{k.Prompt, k.Fix, k.Copy, k.Success, k.Checked, k.Open},
		{k.History, k.PrevDay, k.NextDay, k.PrevMon, k.NextMon, k.View, k.Remove},
		{k.NewTab, k.CloseTab, k.PrevTab, k.NextTab, k.Theme, k.Quit},
	}
}

// historyKeys is the help shown while the history panel has focus.
type historyKeys keyMap

func (k historyKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.PrevMon, k.NextMon, k.Search, k.Expand, k.Success, k.Remove, k.View, k.Back}
}

func (k historyKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// diffKeys is the help shown in the diff view.
type diffKeys keyMap

func (k diffKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Unified, k.Back}
}

func (k diffKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
