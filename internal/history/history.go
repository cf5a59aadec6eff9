// Package history persists one JSON file per copy action, grouped by day.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sokinpui/pcp/internal/logging"
	"github.com/sokinpui/pcp/model"
)

const (
	// Dir is the store-relative directory holding all entries.
	Dir = "prompt-copy/history"
	// TimestampLayout matches JavaScript's Date.toISOString.
	TimestampLayout = "2006-01-02T15:04:05.000Z"
	// DateLayout names a day.
	DateLayout = "2006-01-02"
)

var datePattern = regexp.MustCompile(`(\d{4})/(\d{2})/(\d{2})`)

// Store is the file access history needs.
type Store interface {
	WriteFile(rel string, data []byte) error
	ReadFile(rel string) ([]byte, error)
	ListJSON(dir string) ([]string, error)
	Remove(rel string) error
}

// Manager reads and writes history entries.
type Manager struct {
	store Store
}

func New(store Store) *Manager {
	return &Manager{store: store}
}

// PathFor returns where an entry saved at t lives. The directory uses the
// local date; the file name is the epoch in milliseconds.
func PathFor(t time.Time) string {
	local := t.Local()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%d.json", Dir, local.Year(), int(local.Month()), local.Day(), t.UnixMilli())
}

func encode(entry model.HistoryEntry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entry); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (m *Manager) exists(rel string) bool {
	_, err := m.store.ReadFile(rel)
	return err == nil
}

// Save writes a new, unsuccessful entry and returns where it went.
func (m *Manager) Save(prompt string, files []model.HistoryFile, scriptFix bool, now time.Time) (model.CopyReceipt, error) {
	if files == nil {
		files = []model.HistoryFile{}
	}
	entry := model.HistoryEntry{
		Timestamp:    now.UTC().Format(TimestampLayout),
		Prompt:       prompt,
		Files:        files,
		AddScriptFix: scriptFix,
	}
	data, err := encode(entry)
	if err != nil {
		return model.CopyReceipt{}, fmt.Errorf("failed to encode history entry: %w", err)
	}

	// Two copies within one millisecond get adjacent file names.
	at := now
	rel := PathFor(at)
	for m.exists(rel) {
		at = at.Add(time.Millisecond)
		rel = PathFor(at)
	}
	if err := m.store.WriteFile(rel, data); err != nil {
		return model.CopyReceipt{}, fmt.Errorf("failed to save history: %w", err)
	}
	logging.Debug("saved history entry", logging.String("path", rel), logging.Int("files", len(files)))
	return model.CopyReceipt{Path: rel, Timestamp: entry.Timestamp}, nil
}

// Load reads one entry.
func (m *Manager) Load(rel string) (model.HistoryEntry, error) {
	data, err := m.store.ReadFile(rel)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	var entry model.HistoryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("invalid history entry '%s': %w", rel, err)
	}
	return entry, nil
}

// MarkSuccess flags an entry as having worked.
func (m *Manager) MarkSuccess(rel string) error {
	entry, err := m.Load(rel)
	if err != nil {
		return fmt.Errorf("failed to mark success: %w", err)
	}
	if entry.Success {
		return nil
	}
	entry.Success = true
	data, err := encode(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}
	if err := m.store.WriteFile(rel, data); err != nil {
		return fmt.Errorf("failed to mark success: %w", err)
	}
	return nil
}

// Delete removes an entry, and its day directory once it is empty.
func (m *Manager) Delete(rel string) error {
	if !strings.HasPrefix(rel, Dir+"/") {
		return fmt.Errorf("'%s' is not a history entry", rel)
	}
	if err := m.store.Remove(rel); err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

// Dates lists the days, as YYYY-MM-DD, that have at least one entry.
func (m *Manager) Dates() ([]string, error) {
	files, err := m.store.ListJSON(Dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var dates []string
	for _, f := range files {
		match := datePattern.FindStringSubmatch(f)
		if match == nil {
			continue
		}
		d := match[1] + "-" + match[2] + "-" + match[3]
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func dayDir(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date '%s': %w", date, err)
	}
	return path.Join(Dir, t.Format("2006/01/02")), nil
}

// Day returns the entries saved on date, newest first. Files that cannot
// be read or parsed are skipped.
func (m *Manager) Day(date string) ([]model.HistoryRecord, error) {
	dir, err := dayDir(date)
	if err != nil {
		return nil, err
	}
	return m.records(dir)
}

// All returns every entry, newest first.
func (m *Manager) All() ([]model.HistoryRecord, error) {
	return m.records(Dir)
}

func (m *Manager) records(dir string) ([]model.HistoryRecord, error) {
	files, err := m.store.ListJSON(dir)
	if err != nil {
		return nil, err
	}
	records := make([]model.HistoryRecord, 0, len(files))
	for _, f := range files {
		entry, err := m.Load(f)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logging.Warn("skipping unreadable history entry", logging.String("path", f), logging.Err(err))
			}
			continue
		}
		records = append(records, model.HistoryRecord{Path: f, Entry: entry})
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Entry.Timestamp != b.Entry.Timestamp {
			return a.Entry.Timestamp > b.Entry.Timestamp
		}
		return a.Path > b.Path
	})
	return records, nil
}

// Filter keeps records whose prompt or any file path fuzzily matches query.
func Filter(records []model.HistoryRecord, query string) []model.HistoryRecord {
	query = strings.TrimSpace(query)
	if query == "" {
		return records
	}
	var out []model.HistoryRecord
	for _, r := range records {
		if matches(r.Entry, query) {
			out = append(out, r)
		}
	}
	return out
}

func matches(e model.HistoryEntry, query string) bool {
	if fuzzy.MatchFold(query, e.Prompt) {
		return true
	}
	for _, f := range e.Files {
		if fuzzy.MatchFold(query, f.Path) {
			return true
		}
	}
	return false
}

// FindFile returns the stored copy of path in entry.
func FindFile(e model.HistoryEntry, path string) (model.HistoryFile, bool) {
	for _, f := range e.Files {
		if f.Path == path {
			return f, true
		}
	}
	return model.HistoryFile{}, false
}
