package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/happycall-qa/happycall/internal/app"
	"github.com/happycall-qa/happycall/internal/conf"
)

// Command groups the configuration subcommands.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(dumpCommand(ctx))
	return cmd
}

func dumpCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := conf.Dump(ctx.Settings)
			if err != nil {
				return err
			}
			if ctx.Settings.ConfigFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", ctx.Settings.ConfigFile)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
