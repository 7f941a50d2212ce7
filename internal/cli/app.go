package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/turtlefleet/turtle/internal/gate"
	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/risk"
)

// ErrReported is returned by commands that already printed their failure.
// Callers should exit non-zero without printing it again.
var ErrReported = errors.New("failure already reported")

// Explainer turns an anomaly report into a short note for the user.
type Explainer interface {
	Explain(ctx context.Context, operation string, findings []string) (string, error)
}

// Options are the global flags, handed to App.Setup before any command runs.
type Options struct {
	ConfigPath string
	Verbose    bool
	// ConfirmCritical is nil unless --confirm-critical was given.
	ConfirmCritical *bool
	// FullScreen is set when the command about to run is the interactive
	// shell on a terminal; logs must not go to stderr then.
	FullScreen bool
}

// App holds the components CLI commands run against.
type App struct {
	Parser   *intent.Parser
	Gate     *gate.Gate
	Observer gate.Observer
	Logger   *zap.Logger

	// Explainer annotates anomaly reports when set.
	Explainer Explainer
	// StatusTop limits the processes the status dashboard lists.
	StatusTop int
	// ConfirmCritical is announced in the shell banner.
	ConfirmCritical bool

	In  io.Reader
	Out io.Writer
	Err io.Writer

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// Confirm asks a yes/no question on the terminal for one-shot runs.
	Confirm func(sc risk.SafetyContext) (bool, error)
	// Setup, when set, wires the fields above from the global flags.
	Setup func(opts Options) error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) stdin() io.Reader {
	if a.In != nil {
		return a.In
	}
	return os.Stdin
}

func (a *App) stdout() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Err != nil {
		return a.Err
	}
	return os.Stderr
}

func (a *App) logger() *zap.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return zap.NewNop()
}
