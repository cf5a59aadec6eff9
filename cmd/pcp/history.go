package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sokinpui/pcp/cli"
	"github.com/sokinpui/pcp/internal/history"
	"github.com/sokinpui/pcp/internal/markdown"
	"github.com/sokinpui/pcp/internal/ui"
	"github.com/sokinpui/pcp/model"
	"github.com/sokinpui/pcp/pcp"
)

const previewWidth = 60

func newHistoryCmd(flags *cli.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage copy history",
	}
	cmd.AddCommand(newHistoryListCmd(flags))
	cmd.AddCommand(newHistoryShowCmd(flags))
	cmd.AddCommand(newHistorySuccessCmd(flags))
	cmd.AddCommand(newHistoryDeleteCmd(flags))
	cmd.AddCommand(newHistoryOpenCmd(flags))
	return cmd
}

// withApp runs fn with a fully set up application.
func withApp(cmd *cobra.Command, flags *cli.Config, fn func(app *pcp.App) error) error {
	app, err := setup(cmd, flags)
	if err != nil {
		return err
	}
	defer closeApp(app)
	return app.Execute(func() error { return fn(app) })
}

func newHistoryListCmd(flags *cli.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *pcp.App) error {
				var (
					records []model.HistoryRecord
					err     error
				)
				if flags.Date != "" {
					records, err = app.Day(flags.Date)
				} else {
					records, err = app.History().All()
				}
				if err != nil {
					return err
				}
				ui.PrintHistory(history.Filter(records, flags.Filter), func(p string) string {
					return markdown.Summary(p, previewWidth)
				})
				return nil
			})
		},
	}
	cli.BindHistoryListFlags(cmd.Flags(), flags)
	return cmd
}

func newHistoryShowCmd(flags *cli.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show one history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *pcp.App) error {
				entry, err := app.History().Load(args[0])
				if err != nil {
					return err
				}
				blocks, err := markdown.ExtractCodeBlocks([]byte(entry.Prompt))
				if err != nil {
					return err
				}
				ui.PrintEntry(model.HistoryRecord{Path: args[0], Entry: entry}, blocks)
				return nil
			})
		},
	}
}

func newHistorySuccessCmd(flags *cli.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "success <path>",
		Short: "Mark a history entry as successful",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *pcp.App) error {
				if err := app.MarkSuccess(args[0]); err != nil {
					return err
				}
				ui.Success("Marked %s as successful.", args[0])
				return nil
			})
		},
	}
}

func newHistoryDeleteCmd(flags *cli.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <path>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *pcp.App) error {
				if err := app.DeleteEntry(args[0]); err != nil {
					return err
				}
				ui.Success("Deleted %s.", args[0])
				return nil
			})
		},
	}
}

func newHistoryOpenCmd(flags *cli.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Open the files of a history entry in the running Neovim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(app *pcp.App) error {
				entry, err := app.History().Load(args[0])
				if err != nil {
					return err
				}
				bar := ui.NewProgressBar(len(entry.Files), "Opening")
				bar.Start()
				started := time.Now()
				opened, failed, err := app.OpenEntryFiles(args[0], bar.Set)
				bar.Finish()
				if err != nil {
					return err
				}
				ui.Success("Opened %d file(s) in %s.", len(opened), time.Since(started).Round(time.Millisecond))
				if len(failed) > 0 {
					ui.Error("Could not open %d file(s):", len(failed))
					for _, f := range failed {
						ui.Path("%s", f)
					}
				}
				return nil
			})
		},
	}
}
