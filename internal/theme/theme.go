// Package theme holds the colour palettes and their persisted selection.
package theme

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/charmbracelet/lipgloss"
)

const (
	Default = "solarized"
	// SettingsPath is the store-relative file holding the selection.
	SettingsPath = "settings/theme.json"
)

// Palette is one colour scheme.
type Palette struct {
	Name       string
	Background lipgloss.Color
	Text       lipgloss.Color
	Border     lipgloss.Color
	Highlight  lipgloss.Color
	Button     lipgloss.Color
	ButtonText lipgloss.Color
	TitlebarBg lipgloss.Color
	InputBg    lipgloss.Color
	TreeHover  lipgloss.Color
}

// Order is the cycling order of the built-in palettes.
var Order = []string{"light", "dark", "cosmic", "emerald", "sunset", "ocean", "solarized"}

var palettes = map[string]Palette{
	"light": {
		Background: "#ffffff", Text: "#2c3e50", Border: "#e0e0e0", Highlight: "#3498db",
		Button: "#3498db", ButtonText: "#ffffff", TitlebarBg: "#f8f9fa", InputBg: "#ffffff", TreeHover: "#f5f6fa",
	},
	"dark": {
		Background: "#1a1b1e", Text: "#e0e0e0", Border: "#2d2d2d", Highlight: "#4a90e2",
		Button: "#4a90e2", ButtonText: "#ffffff", TitlebarBg: "#141517", InputBg: "#222427", TreeHover: "#25262b",
	},
	"cosmic": {
		Background: "#1a1025", Text: "#e2d9f0", Border: "#382952", Highlight: "#9d4edd",
		Button: "#9d4edd", ButtonText: "#ffffff", TitlebarBg: "#130a1c", InputBg: "#231533", TreeHover: "#2d1b40",
	},
	"emerald": {
		Background: "#0f291e", Text: "#b8e6d2", Border: "#1a4534", Highlight: "#2ecc71",
		Button: "#2ecc71", ButtonText: "#ffffff", TitlebarBg: "#0a1f16", InputBg: "#153726", TreeHover: "#1c4e35",
	},
	"sunset": {
		Background: "#2d1b1e", Text: "#ffd5d5", Border: "#4a2f32", Highlight: "#ff6b6b",
		Button: "#ff6b6b", ButtonText: "#ffffff", TitlebarBg: "#231316", InputBg: "#3a2326", TreeHover: "#452a2e",
	},
	"ocean": {
		Background: "#0a192f", Text: "#c9e2ff", Border: "#172a45", Highlight: "#64ffda",
		Button: "#64ffda", ButtonText: "#0a192f", TitlebarBg: "#061120", InputBg: "#112240", TreeHover: "#1d3461",
	},
	"solarized": {
		Background: "#002b36", Text: "#839496", Border: "#073642", Highlight: "#2aa198",
		Button: "#2aa198", ButtonText: "#fdf6e3", TitlebarBg: "#001f27", InputBg: "#073642", TreeHover: "#003b4c",
	},
}

// Get returns the named palette, falling back to the default.
func Get(name string) Palette {
	p, ok := palettes[name]
	if !ok {
		name = Default
		p = palettes[Default]
	}
	p.Name = name
	return p
}

// Valid reports whether name is a built-in palette.
func Valid(name string) bool {
	_, ok := palettes[name]
	return ok
}

// Next returns the palette after name in Order.
func Next(name string) string {
	for i, n := range Order {
		if n == name {
			return Order[(i+1)%len(Order)]
		}
	}
	return Order[0]
}

// Store is the file access theme persistence needs.
type Store interface {
	ReadFile(rel string) ([]byte, error)
	WriteFile(rel string, data []byte) error
}

type settings struct {
	Theme string `json:"theme"`
}

// Load returns the saved theme name, or Default when none is saved.
func Load(s Store) (string, error) {
	data, err := s.ReadFile(SettingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default, nil
		}
		return Default, err
	}
	var st settings
	if err := json.Unmarshal(data, &st); err != nil {
		return Default, fmt.Errorf("invalid theme settings: %w", err)
	}
	if !Valid(st.Theme) {
		return Default, nil
	}
	return st.Theme, nil
}

// Save persists the theme name.
func Save(s Store, name string) error {
	if !Valid(name) {
		return fmt.Errorf("unknown theme %q", name)
	}
	data, err := json.Marshal(settings{Theme: name})
	if err != nil {
		return err
	}
	if err := s.WriteFile(SettingsPath, data); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}
