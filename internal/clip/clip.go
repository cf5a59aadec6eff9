// Package clip talks to the system clipboard and resolves where a prompt
// comes from when running outside the TUI.
package clip

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes text.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// System is the OS clipboard.
type System struct{}

func (System) ReadAll() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	return text, nil
}

func (System) WriteAll(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("failed to write to clipboard: no clipboard utility available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}

// Memory is an in-process clipboard.
type Memory struct {
	Text string
	Err  error
}

func (m *Memory) ReadAll() (string, error) {
	return m.Text, m.Err
}

func (m *Memory) WriteAll(text string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Text = text
	return nil
}

// PromptSource determines and retrieves a prompt.
type PromptSource struct {
	Stdin     *os.File
	Clipboard Clipboard
	// FromClipboard allows falling back to the clipboard when stdin is a
	// terminal.
	FromClipboard bool
}

// Prompt returns explicit if set, otherwise stdin when piped, otherwise the
// clipboard when allowed.
func (s PromptSource) Prompt(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if s.Stdin != nil {
		if stat, err := s.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
			content, err := io.ReadAll(s.Stdin)
			if err != nil {
				return "", fmt.Errorf("failed to read from stdin: %w", err)
			}
			return strings.TrimRight(string(content), "\n"), nil
		}
	}
	if s.FromClipboard && s.Clipboard != nil {
		return s.Clipboard.ReadAll()
	}
	return "", nil
}
