package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
)

func newStatusCmd(app *App) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Observe the host once and show a dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Observer.Observe(cmd.Context())
			if err != nil {
				return fmt.Errorf("observing host: %w", err)
			}
			if !cmd.Flags().Changed("top") && app.StatusTop > 0 {
				top = app.StatusTop
			}
			fmt.Fprint(app.stdout(), formatter.FormatSnapshot(snap, top))
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 15, "number of processes to list (0 for all)")
	return cmd
}
