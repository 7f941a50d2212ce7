package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// globalFlags holds the persistent flag values before they become Options.
type globalFlags struct {
	configPath      string
	verbose         bool
	confirmCritical bool
}

func bindGlobalFlags(fs *pflag.FlagSet, g *globalFlags) {
	fs.StringVar(&g.configPath, "config", "", "config file (default ~/.turtle/config.yaml, or $TURTLE_CONFIG)")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log at debug level")
	fs.BoolVar(&g.confirmCritical, "confirm-critical", false, "ask before running critical operations")
}

func (g *globalFlags) options(fs *pflag.FlagSet) Options {
	opts := Options{ConfigPath: g.configPath, Verbose: g.verbose}
	if fs.Changed("confirm-critical") {
		v := g.confirmCritical
		opts.ConfirmCritical = &v
	}
	return opts
}

// NewRootCmd creates the top-level "turtle" command. Without a subcommand it
// starts the interactive shell.
func NewRootCmd(app *App) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:           "turtle",
		Short:         "Safety-gated natural-language command shell",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Setup == nil {
				return nil
			}
			opts := flags.options(cmd.Flags())
			opts.FullScreen = isShellCmd(cmd) && app.interactive()
			if err := app.Setup(opts); err != nil {
				return fmt.Errorf("setup: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context(), app)
		},
	}
	bindGlobalFlags(root.PersistentFlags(), &flags)

	root.AddCommand(
		newShellCmd(app),
		newRunCmd(app),
		newParseCmd(app),
		newStatusCmd(app),
	)
	return root
}

func isShellCmd(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "shell"
}
