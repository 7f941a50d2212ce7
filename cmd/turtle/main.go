package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/turtlefleet/turtle/internal/action"
	"github.com/turtlefleet/turtle/internal/cli"
	"github.com/turtlefleet/turtle/internal/config"
	"github.com/turtlefleet/turtle/internal/gate"
	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/llm"
	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/risk"
	"github.com/turtlefleet/turtle/internal/shell"
)

func main() {
	if err := run(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		In:      os.Stdin,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Confirm: cli.ConfirmOnTerminal,
	}

	// Detect interactive terminal for the full-screen shell and prompts.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	var logger *zap.Logger
	app.Setup = func(opts cli.Options) error {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return err
		}
		if opts.ConfirmCritical != nil {
			cfg.Approval.ConfirmCritical = *opts.ConfirmCritical
		}

		// The full-screen shell owns the terminal; log only to a file there.
		logger = zap.NewNop()
		if !opts.FullScreen || cfg.Log.File != "" {
			if logger, err = cfg.Logger(opts.Verbose); err != nil {
				return err
			}
		}
		wire(app, cfg, logger)
		return nil
	}

	err := cli.NewRootCmd(app).ExecuteContext(ctx)
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

// wire builds the command pipeline from cfg.
func wire(app *cli.App, cfg config.Config, logger *zap.Logger) {
	exec := shell.NewOSExecutor()

	observer := observe.NewObserver(
		observe.NewShellInspector(exec, cfg.Observer.InspectWindows),
		exec,
		cfg.ObserverOptions(),
		observe.WithLogger(logger.Named("observe")),
	)

	actionOpts := []action.Option{
		action.WithMonitors(cfg.Monitors),
		action.WithSettleDelay(cfg.Launch.SettleDelay),
		action.WithLogger(logger.Named("action")),
	}

	// Wire the local model only when enabled.
	if cfg.LLM.Enabled {
		var callObserver llm.Observer = llm.NoopObserver{}
		if cfg.LLM.LogCalls {
			callObserver = llm.NewZapObserver(logger.Named("llm"))
		}
		assistant := llm.NewAssistant(llm.NewOllamaClient(cfg.LLM, callObserver))
		actionOpts = append(actionOpts, action.WithReplier(assistant))
		app.Explainer = assistant
	}

	gateOpts := []gate.Option{gate.WithLogger(logger.Named("gate"))}
	if cfg.Approval.ConfirmCritical {
		gateOpts = append(gateOpts, gate.WithApprover(gate.ContextApprover{}, risk.Critical))
	}

	app.Parser = intent.NewParser()
	app.Observer = observer
	app.Gate = gate.New(observer, action.New(exec, actionOpts...), gateOpts...)
	app.Logger = logger
	app.StatusTop = cfg.Observer.ProcessLimit
	app.ConfirmCritical = cfg.Approval.ConfirmCritical
}
