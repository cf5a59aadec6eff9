package pcp

import (
	"context"

	"github.com/sokinpui/pcp/internal/bundle"
	"github.com/sokinpui/pcp/internal/fs"
)

// Config for using pcp as a library.
type Config struct {
	// Prompt placed before the files. Left out when blank.
	Prompt string
	// Root that file names are made relative to.
	Root string
	// Files to include, in order.
	Files []string
	// Append the script-fix request line.
	ScriptFix bool
}

// Bundle reads the given files and returns the text the copy action would
// put on the clipboard. Nothing is written to history.
func Bundle(ctx context.Context, cfg Config) (string, error) {
	if len(cfg.Files) == 0 {
		return "", ErrNothingChecked
	}
	files := bundle.Gather(ctx, fs.Lister{}, cfg.Files)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return bundle.Format(cfg.Prompt, cfg.Root, files, cfg.ScriptFix), nil
}
