package ui

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/pcp/internal/markdown"
	"github.com/sokinpui/pcp/model"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevNoColor := Out, color.NoColor
	Out, color.NoColor = &buf, true
	t.Cleanup(func() { Out, color.NoColor = prevOut, prevNoColor })
	return &buf
}

func TestPrintDiff(t *testing.T) {
	buf := capture(t)
	PrintDiff([]model.DiffLine{
		{Text: "a", Kind: model.Unchanged},
		{Text: "b", Kind: model.Removed},
		{Text: "x", Kind: model.Added},
	})
	require.Equal(t, "  a\n- b\n+ x\n", buf.String())
}

func TestPrintHistory(t *testing.T) {
	buf := capture(t)
	PrintHistory([]model.HistoryRecord{{
		Path:  "prompt-copy/history/2024/03/05/1.json",
		Entry: model.HistoryEntry{Timestamp: "2024-03-05T10:00:00.000Z", Prompt: "p", Success: true, Files: []model.HistoryFile{{Path: "/a"}}},
	}}, func(s string) string { return "[" + s + "]" })

	out := buf.String()
	require.Contains(t, out, "✓ 2024-03-05T10:00:00.000Z  1 file(s)  [p]")
	require.Contains(t, out, "prompt-copy/history/2024/03/05/1.json")
}

func TestPrintEntry(t *testing.T) {
	buf := capture(t)
	PrintEntry(model.HistoryRecord{
		Path: "prompt-copy/history/2024/03/05/1.json",
		Entry: model.HistoryEntry{
			Timestamp: "2024-03-05T10:00:00.000Z",
			Prompt:    "fix it",
			Files:     []model.HistoryFile{{Path: "/a.go", Content: "abc"}},
		},
	}, []markdown.CodeBlock{
		{Hint: "Update main.go please:", Lang: "go", Content: "package main\nfunc main() {}\n"},
		{Content: "x\n"},
	})

	out := buf.String()
	require.Contains(t, out, "Code blocks in prompt: 2\n")
	require.Contains(t, out, "  1. go, 2 line(s)  Update main.go please:\n")
	require.Contains(t, out, "  2. text, 1 line(s)\n")
	require.Contains(t, out, "  - /a.go (3 bytes)\n")
}

func TestPrintCopySummary(t *testing.T) {
	buf := capture(t)
	PrintCopySummary(model.Summary{Copied: []string{"a.go"}, Failed: []string{"b.bin"}, Bytes: 10})
	require.Equal(t, "  - a.go\n  - b.bin\n", buf.String())
}
