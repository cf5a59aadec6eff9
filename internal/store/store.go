// Package store gives access to files under the application data directory.
// All paths it accepts and returns are slash-separated and relative to that
// directory.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	pfs "github.com/sokinpui/pcp/internal/fs"
)

var ErrOutsideStore = errors.New("path escapes the data directory")

// Store is rooted at one directory.
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("could not create data directory: %w", err)
	}
	return &Store{root: abs}, nil
}

// Dir returns the absolute data directory.
func (s *Store) Dir() string {
	return s.root
}

// Abs resolves rel inside the store.
func (s *Store) Abs(rel string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(rel))
	if clean == "/" {
		return "", fmt.Errorf("'%s': %w", rel, ErrOutsideStore)
	}
	full := filepath.Join(s.root, filepath.FromSlash(strings.TrimPrefix(clean, "/")))
	if !strings.HasPrefix(full, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("'%s': %w", rel, ErrOutsideStore)
	}
	return full, nil
}

// WriteFile writes data, creating parent directories.
func (s *Store) WriteFile(rel string, data []byte) error {
	full, err := s.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("could not create directory for '%s': %w", rel, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", rel, err)
	}
	return nil
}

func (s *Store) ReadFile(rel string) ([]byte, error) {
	full, err := s.Abs(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s': %w", rel, err)
	}
	return data, nil
}

// ListJSON returns every .json file below dir, sorted. A missing directory
// yields an empty list.
func (s *Store) ListJSON(dir string) ([]string, error) {
	full, err := s.Abs(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	err = filepath.WalkDir(full, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && p == full {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".json" {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list '%s': %w", dir, err)
	}
	sort.Strings(out)
	return out, nil
}

// Remove deletes a file and then its parent directory if that is now empty.
func (s *Store) Remove(rel string) error {
	full, err := s.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("failed to delete '%s': %w", rel, err)
	}
	parent := filepath.Dir(full)
	if parent == s.root {
		return nil
	}
	if empty, err := pfs.IsEmpty(parent); err == nil && empty {
		if err := os.Remove(parent); err != nil {
			return fmt.Errorf("failed to remove empty directory: %w", err)
		}
	}
	return nil
}
