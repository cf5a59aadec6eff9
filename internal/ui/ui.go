package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/sokinpui/pcp/internal/diff"
	"github.com/sokinpui/pcp/internal/markdown"
	"github.com/sokinpui/pcp/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta)
	FaintColor   = color.New(color.Faint)
)

// Out is where summaries are printed.
var Out io.Writer = os.Stdout

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// --- Summaries ---

func PrintCopySummary(s model.Summary) {
	Header("\n--- Copy Summary ---")
	if len(s.Copied) > 0 {
		Success("Copied %d file(s), %d bytes:", len(s.Copied), s.Bytes)
		for _, f := range s.Copied {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
	if len(s.Failed) > 0 {
		Error("Could not read %d file(s):", len(s.Failed))
		for _, f := range s.Failed {
			fmt.Fprintf(Out, "  - %s\n", f)
		}
	}
	if s.Receipt.Path != "" {
		Info("History: %s", s.Receipt.Path)
	}
	if s.Message != "" {
		Info("%s", s.Message)
	}
}

// PrintHistory lists records one per line.
func PrintHistory(records []model.HistoryRecord, preview func(string) string) {
	if len(records) == 0 {
		Info("No history entries.")
		return
	}
	for _, r := range records {
		mark := FaintColor.Sprint("·")
		if r.Entry.Success {
			mark = SuccessColor.Sprint("✓")
		}
		fmt.Fprintf(Out, "%s %s  %s  %s\n",
			mark,
			r.Entry.Timestamp,
			PathColor.Sprintf("%d file(s)", len(r.Entry.Files)),
			preview(r.Entry.Prompt),
		)
		fmt.Fprintf(Out, "    %s\n", FaintColor.Sprint(r.Path))
	}
}

// PrintEntry prints an entry's prompt, the code blocks found in it and the
// file list.
func PrintEntry(r model.HistoryRecord, blocks []markdown.CodeBlock) {
	Header("%s", r.Entry.Timestamp)
	status := WarningColor.Sprint("not marked")
	if r.Entry.Success {
		status = SuccessColor.Sprint("success")
	}
	fmt.Fprintf(Out, "Status: %s\n", status)
	if r.Entry.AddScriptFix {
		fmt.Fprintln(Out, "Script fix: yes")
	}
	if len(blocks) > 0 {
		fmt.Fprintf(Out, "Code blocks in prompt: %d\n", len(blocks))
		for i, b := range blocks {
			lang := b.Lang
			if lang == "" {
				lang = "text"
			}
			lines := strings.Count(b.Content, "\n")
			fmt.Fprintf(Out, "  %d. %s, %d line(s)", i+1, lang, lines)
			if b.Hint != "" {
				FaintColor.Fprintf(Out, "  %s", markdown.Summary(b.Hint, 50))
			}
			fmt.Fprintln(Out)
		}
	}
	fmt.Fprintf(Out, "\n%s\n\n", r.Entry.Prompt)
	for _, f := range r.Entry.Files {
		fmt.Fprintf(Out, "  - %s (%d bytes)\n", f.Path, len(f.Content))
	}
}

// PrintDiff prints diff lines with +/- markers.
func PrintDiff(lines []model.DiffLine) {
	for _, l := range lines {
		switch l.Kind {
		case model.Added:
			SuccessColor.Fprintf(Out, "+ %s\n", l.Text)
		case model.Removed:
			ErrorColor.Fprintf(Out, "- %s\n", l.Text)
		default:
			fmt.Fprintf(Out, "  %s\n", l.Text)
		}
	}
	Info("%s", diff.Summarize(lines))
}

// --- Progress Bar ---

type ProgressBar struct {
	total   int
	prefix  string
	current int
}

func NewProgressBar(total int, prefix string) *ProgressBar {
	return &ProgressBar{total: total, prefix: prefix}
}

func (p *ProgressBar) Start() {
	p.draw()
}

// Set moves the bar to current.
func (p *ProgressBar) Set(current int) {
	p.current = current
	p.draw()
}

func (p *ProgressBar) Finish() {
	fmt.Fprintln(os.Stderr)
}

func (p *ProgressBar) draw() {
	if p.total == 0 {
		return
	}
	const barLength = 40
	percent := float64(p.current) / float64(p.total)
	filledLength := int(percent * barLength)
	bar := strings.Repeat("█", filledLength) + strings.Repeat("-", barLength-filledLength)

	percentStr := fmt.Sprintf("%.1f%%", percent*100)
	countStr := fmt.Sprintf("[%d/%d]", p.current, p.total)

	fmt.Fprintf(os.Stderr, "\r%s |%s| %s %s", p.prefix, bar, countStr, percentStr)
}
