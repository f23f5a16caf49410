package script

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/happycall-qa/happycall/internal/app"
)

// Command groups the call script subcommands.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Inspect the call script",
	}
	cmd.AddCommand(showCommand(ctx))
	return cmd
}

func showCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active script as plain text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			text, err := a.ActiveScriptText(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", text.Title, text.Body)
			return err
		},
	}
}
