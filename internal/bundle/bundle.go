// Package bundle assembles the clipboard text for a copy action.
package bundle

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sokinpui/pcp/model"
)

const (
	// ReadError replaces the contents of a file that could not be read.
	ReadError = "Error: Could not read file"
	// ScriptFixLine is appended when the script-fix flag is set.
	ScriptFixLine = "send full script with fix"

	gatherLimit = 16
)

// Reader loads a file's text.
type Reader interface {
	ReadTextFile(path string) (string, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(path string) (string, error)

func (f ReaderFunc) ReadTextFile(path string) (string, error) { return f(path) }

// File is one gathered file. Err is set when the read failed, in which
// case Content holds the placeholder text.
type File struct {
	Path    string
	Content string
	Err     error
}

// Gather reads every path concurrently and returns the results in the order
// the paths were given. A failed read never aborts the others.
func Gather(ctx context.Context, r Reader, paths []string) []File {
	files := make([]File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(gatherLimit)
	for i, p := range paths {
		g.Go(func() error {
			files[i].Path = p
			if err := ctx.Err(); err != nil {
				files[i].Content, files[i].Err = ReadError, err
				return nil
			}
			content, err := r.ReadTextFile(p)
			if err != nil {
				files[i].Content, files[i].Err = ReadError, err
				return nil
			}
			files[i].Content = content
			return nil
		})
	}
	_ = g.Wait()
	return files
}

// RelativeName is how a file is named inside the bundle. With a root, the
// first occurrence of the root is cut from the path and one leading slash
// or backslash becomes a backslash. Without a root the path is used as is.
func RelativeName(path, root string) string {
	if root == "" {
		return path
	}
	rel := strings.Replace(path, root, "", 1)
	if strings.HasPrefix(rel, "/") || strings.HasPrefix(rel, `\`) {
		rel = `\` + rel[1:]
	}
	return rel
}

// Block renders one file.
func Block(f File, root string) string {
	if f.Err != nil {
		return "Filename: " + f.Path + "\n" + ReadError
	}
	return "Filename: " + RelativeName(f.Path, root) + "\nContents:\n" + f.Content
}

// Format builds the clipboard text.
func Format(prompt, root string, files []File, scriptFix bool) string {
	var b strings.Builder
	if strings.TrimSpace(prompt) != "" {
		b.WriteString("Prompt: ")
		b.WriteString(prompt)
		b.WriteString("\n\n")
	}
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(Block(f, root))
	}
	if scriptFix {
		b.WriteString("\n")
		b.WriteString(ScriptFixLine)
	}
	return b.String()
}

// HistoryFiles converts gathered files to their persisted form. Failed
// reads keep the placeholder as their content.
func HistoryFiles(files []File) []model.HistoryFile {
	out := make([]model.HistoryFile, len(files))
	for i, f := range files {
		out[i] = model.HistoryFile{Path: f.Path, Content: f.Content}
	}
	return out
}
