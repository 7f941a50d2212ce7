package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
	"github.com/turtlefleet/turtle/internal/gate"
)

func newRunCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "run <command...>",
		Short: "Run one command through the gate",
		Example: `  turtle run move terminal to left half
  turtle run --yes kill firefox`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), app, strings.Join(args, " "), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "approve critical operations without asking")
	return cmd
}

func runOnce(ctx context.Context, app *App, text string, yes bool) error {
	cmd := app.Parser.Parse(text)

	approved := yes
	if !approved && app.Gate.RequiresApproval(cmd) {
		sc := gate.Contextualize(cmd)
		switch {
		case app.interactive() && app.Confirm != nil:
			ok, err := app.Confirm(sc)
			if err != nil {
				return fmt.Errorf("confirming %s: %w", sc.Operation, err)
			}
			approved = ok
		default:
			fmt.Fprintln(app.stderr(), formatter.Dim("Not a terminal; pass --yes to approve "+sc.Operation+"."))
		}
	}
	if approved {
		ctx = gate.WithApproval(ctx)
	}

	out, err := app.Gate.Run(ctx, cmd)
	if err != nil {
		fmt.Fprint(app.stderr(), formatter.FormatFailure(out, err))
		return ErrReported
	}
	fmt.Fprint(app.stdout(), formatter.FormatOutcome(out))
	fmt.Fprint(app.stdout(), explainAnomalies(ctx, app, out))
	return nil
}

// explainAnomalies asks the explainer about a non-empty report. Any failure
// yields no note.
func explainAnomalies(ctx context.Context, app *App, out gate.Outcome) string {
	if app.Explainer == nil || out.Anomalies.Empty() {
		return ""
	}
	note, err := app.Explainer.Explain(ctx, out.Context.Operation, out.Anomalies.Messages())
	if err != nil {
		app.logger().Debug("anomaly explanation unavailable", zap.Error(err))
		return ""
	}
	return formatter.StylePurple.Render("note: ") + formatter.Dim(note) + "\n"
}
