// Package diff compares two versions of a text file line by line.
package diff

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/sokinpui/pcp/model"
)

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Compute aligns previous and current position by position. Matching lines
// are unchanged; a mismatch emits the old line as removed followed by the
// new line as added, and both cursors move on. Shifted lines therefore show
// up as a run of remove/add pairs rather than a pure insertion.
func Compute(previous, current string) []model.DiffLine {
	oldLines := splitLines(previous)
	newLines := splitLines(current)

	out := make([]model.DiffLine, 0, max(len(oldLines), len(newLines)))
	i, j := 0, 0
	for i < len(oldLines) || j < len(newLines) {
		switch {
		case i >= len(oldLines):
			out = append(out, model.DiffLine{Text: newLines[j], Kind: model.Added})
			j++
		case j >= len(newLines):
			out = append(out, model.DiffLine{Text: oldLines[i], Kind: model.Removed})
			i++
		case oldLines[i] == newLines[j]:
			out = append(out, model.DiffLine{Text: oldLines[i], Kind: model.Unchanged})
			i++
			j++
		default:
			out = append(out,
				model.DiffLine{Text: oldLines[i], Kind: model.Removed},
				model.DiffLine{Text: newLines[j], Kind: model.Added},
			)
			i++
			j++
		}
	}
	return out
}

// Stats counts lines by kind.
type Stats struct {
	Added     int
	Removed   int
	Unchanged int
}

func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d =%d", s.Added, s.Removed, s.Unchanged)
}

// Changed reports whether any line was added or removed.
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

func Summarize(lines []model.DiffLine) Stats {
	var s Stats
	for _, l := range lines {
		switch l.Kind {
		case model.Added:
			s.Added++
		case model.Removed:
			s.Removed++
		default:
			s.Unchanged++
		}
	}
	return s
}

// Unified renders a conventional unified diff, suitable for pasting
// somewhere that understands patches.
func Unified(previous, current, fromName, toName string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(current),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("failed to render unified diff: %w", err)
	}
	return text, nil
}
