package main

import (
	"github.com/spf13/cobra"

	"github.com/sokinpui/pcp/cli"
	"github.com/sokinpui/pcp/internal/config"
	"github.com/sokinpui/pcp/internal/ui"
)

func newConfigCmd(flags *cli.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.WriteDefault(flags.ConfigPath, flags.Overwrite)
			if err != nil {
				return err
			}
			ui.Success("Wrote %s", path)
			return nil
		},
	}
	cli.BindConfigInitFlags(initCmd.Flags(), flags)
	cmd.AddCommand(initCmd)
	return cmd
}
