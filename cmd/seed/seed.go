package seed

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/happycall-qa/happycall/internal/app"
)

// Command creates the command that migrates the schema and seeds defaults
// without starting the server.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate the database and create default accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			res, err := a.Seed(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "admin %q: %s\n", ctx.Settings.Seed.AdminUsername, outcome(res.AdminCreated))
			fmt.Fprintf(out, "freelancer %q: %s\n", ctx.Settings.Seed.FreelancerUsername, outcome(res.FreelancerCreated))
			fmt.Fprintf(out, "active script: %s\n", outcome(res.ScriptCreated))
			fmt.Fprintf(out, "accounts: %d admin, %d freelancer\n", res.Admins, res.Freelancers)
			if res.ActiveScripts > 1 {
				fmt.Fprintf(out, "warning: %d active scripts, agents see the oldest\n", res.ActiveScripts)
			}
			return nil
		},
	}
}

func outcome(created bool) string {
	if created {
		return "created"
	}
	return "already present"
}
