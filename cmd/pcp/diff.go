package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sokinpui/pcp/cli"
	"github.com/sokinpui/pcp/internal/ui"
	"github.com/sokinpui/pcp/pcp"
)

func newDiffCmd(flags *cli.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <history-path> [file]",
		Short: "Compare files stored in a history entry with their current content",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *pcp.App) error {
				return runDiff(app, flags.Unified, args)
			})
		},
	}
	cli.BindDiffFlags(cmd.Flags(), flags)
	return cmd
}

func runDiff(app *pcp.App, unified bool, args []string) error {
	rel := args[0]
	var files []string
	if len(args) == 2 {
		p, err := filepath.Abs(args[1])
		if err != nil {
			return err
		}
		files = []string{p}
	} else {
		entry, err := app.History().Load(rel)
		if err != nil {
			return err
		}
		for _, f := range entry.Files {
			files = append(files, f.Path)
		}
	}

	for _, path := range files {
		cmp, err := app.Compare(rel, path)
		if err != nil {
			ui.Error("%v", err)
			continue
		}
		if unified {
			text, err := cmp.Unified()
			if err != nil {
				return err
			}
			fmt.Fprint(ui.Out, text)
			continue
		}
		ui.Header("%s", path)
		ui.PrintDiff(cmp.Lines)
	}
	return nil
}
