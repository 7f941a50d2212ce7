package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
	"github.com/turtlefleet/turtle/internal/gate"
)

func newParseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <command...>",
		Short: "Show how a command would be parsed and classified, without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := app.Parser.Parse(strings.Join(args, " "))
			sc := gate.Contextualize(parsed)
			fmt.Fprint(app.stdout(), formatter.FormatParse(parsed, sc, app.Gate.RequiresApproval(parsed)))
			return nil
		},
	}
}
