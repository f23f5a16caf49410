package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/happycall-qa/happycall/cmd/config"
	"github.com/happycall-qa/happycall/cmd/recordings"
	"github.com/happycall-qa/happycall/cmd/script"
	"github.com/happycall-qa/happycall/cmd/seed"
	"github.com/happycall-qa/happycall/cmd/serve"
	"github.com/happycall-qa/happycall/internal/app"
	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(ctx *app.Context) *cobra.Command {
	var debug bool

	rootCmd := &cobra.Command{
		Use:           "happycall",
		Short:         "Happy-call quality assurance server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.ConfigFile, "config", "c", "", "Path to config.yaml (default: search ./, the executable directory and ~/.config/happycall)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")

	versionCmd := versionCommand(ctx)
	rootCmd.AddCommand(
		serve.Command(ctx),
		seed.Command(ctx),
		script.Command(ctx),
		recordings.Command(ctx),
		config.Command(ctx),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// version needs neither settings nor logging
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return initialize(ctx, debug)
	}

	return rootCmd
}

// initialize loads settings and installs the global logger before any
// subcommand runs.
func initialize(ctx *app.Context, debug bool) error {
	settings, err := conf.LoadFrom(ctx.ConfigFile)
	if err != nil {
		return err
	}
	if debug {
		settings.Debug = true
	}
	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
	}

	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.SetGlobal(central)

	ctx.Settings = settings
	if settings.ConfigFile != "" {
		central.Module("main").Debug("settings loaded", logger.String("config_file", settings.ConfigFile))
	}
	return nil
}

func versionCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), ctx.Build.String())
			return err
		},
	}
}
