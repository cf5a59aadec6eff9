// Package nvim shows history entries and files in a running Neovim, which
// acts as the companion viewer.
package nvim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/neovim/go-client/nvim"
)

var ErrNoNeovim = errors.New("no running Neovim found (set $NVIM or $NVIM_LISTEN_ADDRESS)")

// Buffer identifies a buffer shown by the viewer.
type Buffer = nvim.Buffer

// Manager handles the connection to a Neovim instance.
type Manager struct {
	nvim *nvim.Nvim
	addr string
}

func address(getenv func(string) string) string {
	for _, key := range []string{"NVIM", "NVIM_LISTEN_ADDRESS"} {
		if addr := getenv(key); addr != "" {
			return addr
		}
	}
	return ""
}

// New connects to the Neovim this process runs under or was pointed at.
func New() (*Manager, error) {
	addr := address(os.Getenv)
	if addr == "" {
		return nil, ErrNoNeovim
	}
	return Dial(addr)
}

// Dial connects to a Neovim listening on addr.
func Dial(addr string) (*Manager, error) {
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	return &Manager{nvim: v, addr: addr}, nil
}

// Addr is the address the manager is connected to.
func (m *Manager) Addr() string {
	return m.addr
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// ScratchName is the buffer name used for stored content of path.
func ScratchName(label, path string) string {
	clean := strings.ReplaceAll(strings.TrimLeft(path, `/\`), `\`, "/")
	return fmt.Sprintf("pcp://%s/%s", label, clean)
}

func toLines(content string) [][]byte {
	parts := strings.Split(content, "\n")
	lines := make([][]byte, len(parts))
	for i, p := range parts {
		lines[i] = []byte(p)
	}
	return lines
}

// ShowScratch opens a read-only scratch buffer holding content in a
// vertical split and returns it.
func (m *Manager) ShowScratch(name, content string) (Buffer, error) {
	var buf nvim.Buffer
	b := m.nvim.NewBatch()
	b.CreateBuffer(false, true, &buf)
	if err := b.Execute(); err != nil {
		return 0, fmt.Errorf("failed to create buffer: %w", err)
	}

	b = m.nvim.NewBatch()
	b.SetBufferName(buf, name)
	b.SetBufferLines(buf, 0, -1, true, toLines(content))
	b.Command(fmt.Sprintf("vertical sbuffer %d", int(buf)))
	b.Command("filetype detect")
	b.Command("setlocal nomodifiable bufhidden=wipe")
	if err := b.Execute(); err != nil {
		return 0, fmt.Errorf("failed to show buffer: %w", err)
	}
	return buf, nil
}

// OpenFile edits path in the current window.
func (m *Manager) OpenFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	var escaped string
	if err := m.nvim.Call("fnameescape", &escaped, absPath); err != nil {
		return fmt.Errorf("failed to escape path: %w", err)
	}
	if err := m.nvim.Command("edit " + escaped); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}

// OpenFiles opens each path in turn and returns the ones that failed.
func (m *Manager) OpenFiles(paths []string, progressCb func(int)) (opened, failed []string) {
	return processSequentially(paths, func(p string) (string, bool) {
		return p, m.OpenFile(p) == nil
	}, progressCb)
}

// Visible reports whether buf is still shown in some window.
func (m *Manager) Visible(buf Buffer) (bool, error) {
	var win int
	if err := m.nvim.Call("bufwinid", &win, int(buf)); err != nil {
		return false, fmt.Errorf("failed to query buffer window: %w", err)
	}
	return win != -1, nil
}

// Hide closes every window showing buf.
func (m *Manager) Hide(buf Buffer) error {
	valid, err := m.nvim.IsBufferValid(buf)
	if err != nil || !valid {
		return err
	}
	return m.nvim.Command(fmt.Sprintf("silent! bwipeout %d", int(buf)))
}

// processSequentially is a generic helper function to run a set of jobs sequentially.
func processSequentially[T any](
	items []T,
	processFn func(item T) (path string, success bool),
	progressCb func(int),
) (succeeded, failed []string) {
	for i, item := range items {
		path, success := processFn(item)
		if success {
			succeeded = append(succeeded, path)
		} else {
			failed = append(failed, path)
		}
		if progressCb != nil {
			progressCb(i + 1)
		}
	}
	return succeeded, failed
}
