package serve

import (
	"github.com/spf13/cobra"

	"github.com/happycall-qa/happycall/internal/app"
	"github.com/happycall-qa/happycall/internal/logger"
)

// Command creates the command that migrates, seeds and runs the web server.
func Command(ctx *app.Context) *cobra.Command {
	var listen, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Long:  "Migrate the database, create the default accounts and script when missing, then serve the web interface until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("listen") {
				ctx.Settings.WebServer.Listen = listen
			}
			if cmd.Flags().Changed("port") {
				ctx.Settings.WebServer.Port = port
			}
			return run(cmd, ctx)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Override webserver.listen")
	cmd.Flags().StringVarP(&port, "port", "p", "", "Override webserver.port")
	return cmd
}

func run(cmd *cobra.Command, rc *app.Context) error {
	ctx := cmd.Context()
	log := logger.Global().Module("main")

	a, err := app.Open(ctx, rc, app.WithNotifications())
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if _, err := a.Seed(ctx); err != nil {
		return err
	}

	log.Info("starting happycall",
		logger.String("version", rc.Build.Version()),
		logger.String("address", rc.Settings.WebServer.Address()))
	if err := a.Serve(ctx); err != nil {
		a.Reporter.CaptureError(err, "main")
		return err
	}
	log.Info("shutdown complete")
	return nil
}
