package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sokinpui/pcp/model"
)

const (
	// MaxListDepth caps how many levels a single listing may descend.
	MaxListDepth = 3
	// MaxFileSize is the largest file ReadTextFile accepts.
	MaxFileSize = 10 * 1024 * 1024
)

var (
	ErrNotDirectory = errors.New("not a directory")
	ErrFileTooLarge = errors.New("file too large to read")
	ErrNotText      = errors.New("file is not valid UTF-8 text")
)

// Lister reads directory trees from disk.
type Lister struct {
	// MaxFileSize overrides the package default when positive.
	MaxFileSize int64
}

// List returns the entries of path sorted by lower-cased name, with the
// children of subdirectories filled in depth levels down. Depth 0 lists path
// alone and leaves every subdirectory unloaded. Depth is clamped to
// MaxListDepth.
func (l Lister) List(path string, depth int) ([]model.TreeNode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat '%s': %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s': %w", path, ErrNotDirectory)
	}
	depth = min(max(depth, 0), MaxListDepth)
	return listDir(path, 0, depth)
}

func listDir(path string, current, depth int) ([]model.TreeNode, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", path, err)
	}

	nodes := make([]model.TreeNode, 0, len(entries))
	for _, e := range entries {
		full := filepath.Join(path, e.Name())
		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			if st, err := os.Stat(full); err == nil {
				isDir = st.IsDir()
			}
		}
		node := model.TreeNode{Name: e.Name(), Path: full, IsDirectory: isDir}
		if isDir && current < depth {
			children, err := listDir(full, current+1, depth)
			if err != nil {
				// Unreadable subdirectories stay unloaded.
				children = nil
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return strings.ToLower(nodes[i].Name) < strings.ToLower(nodes[j].Name)
	})
	return nodes, nil
}

// ReadTextFile reads a UTF-8 file of at most MaxFileSize bytes.
func (l Lister) ReadTextFile(path string) (string, error) {
	limit := l.MaxFileSize
	if limit <= 0 {
		limit = MaxFileSize
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat '%s': %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("'%s' is a directory", path)
	}
	if info.Size() > limit {
		return "", fmt.Errorf("'%s': %w", path, ErrFileTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return "", fmt.Errorf("failed to read '%s': %w", path, err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("'%s': %w", path, ErrFileTooLarge)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("'%s': %w", path, ErrNotText)
	}
	return string(data), nil
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsEmpty checks if a directory is empty.
func IsEmpty(name string) (bool, error) {
	f, err := os.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdirnames(1)
	if err == io.EOF {
		return true, nil
	}
	return false, err
}

// fileManagerCommand returns the command that reveals path in the
// platform's file manager.
func fileManagerCommand(goos, path string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer.exe", []string{"/select," + path}
	case "darwin":
		return "open", []string{"-R", path}
	default:
		target := path
		if !IsDir(path) {
			target = filepath.Dir(path)
		}
		return "xdg-open", []string{target}
	}
}

// OpenInFileManager reveals path in the system file manager. It does not
// wait for the file manager to exit.
func OpenInFileManager(path string) error {
	name, args := fileManagerCommand(runtime.GOOS, path)
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open file manager: %w", err)
	}
	go cmd.Wait()
	return nil
}
