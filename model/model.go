package model

// TreeNode is one file-system entry known to the browser.
type TreeNode struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
	// Children is nil until the directory has been loaded. A loaded empty
	// directory has a non-nil, zero-length slice.
	Children []TreeNode `json:"children,omitempty"`
	// DisplayPath is set on search results only.
	DisplayPath string `json:"displayPath,omitempty"`
}

// Loaded reports whether the node's children have been fetched.
func (n TreeNode) Loaded() bool {
	return n.Children != nil
}

// DiffKind classifies one line of a comparison.
type DiffKind int

const (
	Unchanged DiffKind = iota
	Added
	Removed
)

func (k DiffKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unchanged"
	}
}

// DiffLine is a single line produced by the diff engine.
type DiffLine struct {
	Text string
	Kind DiffKind
}

// HistoryFile is one file captured in a copy bundle.
type HistoryFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// HistoryEntry is a persisted record of one copy action.
type HistoryEntry struct {
	Timestamp    string        `json:"timestamp"`
	Prompt       string        `json:"prompt"`
	Files        []HistoryFile `json:"files"`
	AddScriptFix bool          `json:"addScriptFix"`
	Success      bool          `json:"success"`
}

// HistoryRecord pairs an entry with the store-relative path it lives at.
type HistoryRecord struct {
	Path  string
	Entry HistoryEntry
}

// CopyReceipt identifies the history entry written by the last copy.
type CopyReceipt struct {
	Path      string
	Timestamp string
}

// Summary holds the results of a copy for display.
type Summary struct {
	Copied  []string
	Failed  []string
	Bytes   int
	Receipt CopyReceipt
	Message string
}
