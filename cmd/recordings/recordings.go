package recordings

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/happycall-qa/happycall/internal/app"
)

// Command groups the recording maintenance subcommands.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recordings",
		Short: "Maintain stored call recordings",
	}
	cmd.AddCommand(orphansCommand(ctx))
	return cmd
}

func orphansCommand(ctx *app.Context) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "List recordings that no submission references",
		Long:  "List stored recordings left behind by failed submissions. With --delete they are removed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Open(cmd.Context(), ctx)
			if err != nil {
				return err
			}
			defer a.Close(cmd.Context())

			report, err := a.Orphans(cmd.Context(), remove)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(report.Orphans) == 0 {
				_, err = fmt.Fprintln(out, "no orphan recordings")
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tSIZE\tMODIFIED")
			for _, o := range report.Orphans {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", o.Name, o.Size, o.ModTime.Format("2006-01-02 15:04"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if remove {
				fmt.Fprintf(out, "removed %d of %d\n", len(report.Removed), len(report.Orphans))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "delete", false, "Delete the orphan recordings")
	return cmd
}
