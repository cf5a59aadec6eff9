package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sokinpui/pcp/cli"
	"github.com/sokinpui/pcp/internal/clip"
	"github.com/sokinpui/pcp/internal/ui"
	"github.com/sokinpui/pcp/pcp"
)

func newCopyCmd(flags *cli.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy <file>...",
		Short: "Copy files with a prompt without opening the browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			return app.Execute(func() error {
				return runCopy(cmd.Context(), app, flags, args)
			})
		},
	}
	cli.BindCopyFlags(cmd.Flags(), flags)
	return cmd
}

func runCopy(ctx context.Context, app *pcp.App, flags *cli.Config, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	root := flags.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}

	paths := make([]string, len(args))
	for i, a := range args {
		p, err := filepath.Abs(a)
		if err != nil {
			return fmt.Errorf("failed to resolve '%s': %w", a, err)
		}
		paths[i] = p
	}

	source := clip.PromptSource{
		Stdin:         os.Stdin,
		Clipboard:     app.Clipboard(),
		FromClipboard: flags.PromptFromClipboard,
	}
	prompt, err := source.Prompt(flags.Prompt)
	if err != nil {
		return err
	}

	summary, err := app.Copy(ctx, pcp.CopyRequest{
		Prompt:    prompt,
		Root:      root,
		Paths:     paths,
		ScriptFix: flags.ScriptFix,
	})
	if err != nil {
		return err
	}
	summary.Message = "Mark it with: pcp history success " + summary.Receipt.Path
	ui.PrintCopySummary(summary)
	return nil
}
