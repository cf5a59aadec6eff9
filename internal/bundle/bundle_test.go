package bundle

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFormatPromptAndOneFile(t *testing.T) {
	files := []File{{Path: "/tmp/a.txt", Content: "hi"}}
	got := Format("fix this", "", files, false)
	require.Equal(t, "Prompt: fix this\n\nFilename: /tmp/a.txt\nContents:\nhi", got)
}

func TestFormatBlankPromptIsOmitted(t *testing.T) {
	files := []File{{Path: "/tmp/a.txt", Content: "hi"}}
	require.Equal(t, "Filename: /tmp/a.txt\nContents:\nhi", Format("  \n", "", files, false))
}

func TestFormatKeepsUntrimmedPrompt(t *testing.T) {
	got := Format(" spaced ", "", nil, false)
	require.Equal(t, "Prompt:  spaced \n\n", got)
}

func TestFormatRootAndScriptFix(t *testing.T) {
	files := []File{
		{Path: "/r/a/b.go", Content: "package b"},
		{Path: "/r/c.go", Content: "package c"},
	}
	got := Format("", "/r", files, true)
	want := "Filename: \\a/b.go\nContents:\npackage b\n\nFilename: \\c.go\nContents:\npackage c\nsend full script with fix"
	require.Equal(t, want, got)
}

func TestFormatReadError(t *testing.T) {
	files := []File{
		{Path: "/r/bad.bin", Content: ReadError, Err: errors.New("boom")},
		{Path: "/r/ok.txt", Content: "ok"},
	}
	got := Format("", "/r", files, false)
	require.Equal(t, "Filename: /r/bad.bin\nError: Could not read file\n\nFilename: \\ok.txt\nContents:\nok", got)
}

func TestRelativeName(t *testing.T) {
	require.Equal(t, "/abs/x", RelativeName("/abs/x", ""))
	require.Equal(t, `\x`, RelativeName("/abs/x", "/abs"))
	require.Equal(t, `\sub\x`, RelativeName(`C:\proj\sub\x`, `C:\proj`))
	require.Equal(t, "other", RelativeName("other", "/abs"))
}

func TestGatherKeepsOrderAndPlaceholders(t *testing.T) {
	var calls atomic.Int32
	r := ReaderFunc(func(path string) (string, error) {
		calls.Add(1)
		switch path {
		case "/slow":
			time.Sleep(20 * time.Millisecond)
			return "slow", nil
		case "/bad":
			return "", errors.New("denied")
		default:
			return "fast:" + path, nil
		}
	})

	files := Gather(context.Background(), r, []string{"/slow", "/bad", "/x"})

	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, "/slow", files[0].Path)
	require.Equal(t, "slow", files[0].Content)
	require.Error(t, files[1].Err)
	require.Equal(t, ReadError, files[1].Content)
	require.Equal(t, "fast:/x", files[2].Content)

	hist := HistoryFiles(files)
	require.Equal(t, ReadError, hist[1].Content)
	require.Equal(t, "/x", hist[2].Path)
}

func TestGatherManyFiles(t *testing.T) {
	var paths []string
	for i := 0; i < 100; i++ {
		paths = append(paths, fmt.Sprintf("/f%03d", i))
	}
	files := Gather(context.Background(), ReaderFunc(func(p string) (string, error) { return p, nil }), paths)
	for i, f := range files {
		require.Equal(t, paths[i], f.Content)
	}
}
