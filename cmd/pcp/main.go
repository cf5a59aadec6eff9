package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sokinpui/pcp/cli"
	"github.com/sokinpui/pcp/internal/fs"
	"github.com/sokinpui/pcp/internal/logging"
	"github.com/sokinpui/pcp/internal/tui"
	"github.com/sokinpui/pcp/internal/ui"
	"github.com/sokinpui/pcp/pcp"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		ui.Error("Error: %v", err)
		var detailed *pcp.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "%s\n", detailed.Stack)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &cli.Config{}
	root := &cobra.Command{
		Use:           "pcp [dir]",
		Short:         "Pick files from a folder and copy them to the clipboard with a prompt",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, flags)
			if err != nil {
				return err
			}
			defer closeApp(app)

			dir := ""
			if len(args) == 1 {
				if !fs.IsDir(args[0]) {
					return fmt.Errorf("'%s': %w", args[0], fs.ErrNotDirectory)
				}
				dir = args[0]
			}
			p := tea.NewProgram(tui.New(app, dir), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
	cli.BindGlobalFlags(root.PersistentFlags(), flags)

	root.AddCommand(newCopyCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newDiffCmd(flags))
	root.AddCommand(newConfigCmd(flags))
	return root
}

// setup validates the flags, loads the settings, starts logging and
// builds the application.
func setup(cmd *cobra.Command, flags *cli.Config) (*pcp.App, error) {
	if err := flags.Validate(); err != nil {
		return nil, err
	}
	settings, err := flags.Settings(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if err := logging.Init(logging.Config{
		Level:      settings.Log.Level,
		Format:     settings.Log.Format,
		OutputPath: settings.Log.File,
	}); err != nil {
		ui.Warning("Logging disabled: %v", err)
	}
	logging.Debug("starting", logging.String("command", cmd.CommandPath()), logging.String("data_dir", settings.DataDir))

	app, err := pcp.New(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return app, nil
}

func closeApp(app *pcp.App) {
	app.Close()
	_ = logging.Sync()
}
