// Package action carries out parsed commands by calling external programs.
// There is exactly one handler per intent; handlers never retry.
package action

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/shell"
)

// Replier produces a conversational reply. The chat assistant in package
// llm satisfies it.
type Replier interface {
	Reply(ctx context.Context, text string) (string, error)
}

// DefaultSettleDelay is how long an opened application gets to map its
// window before it is positioned.
const DefaultSettleDelay = 2 * time.Second

type handler func(ctx context.Context, cmd intent.ParsedCommand) (string, error)

// Executor dispatches ParsedCommands to their intent's handler.
type Executor struct {
	shell    shell.Executor
	monitors Monitors
	settle   time.Duration
	replier  Replier
	logger   *zap.Logger
	handlers map[intent.Intent]handler
}

// Option configures an Executor.
type Option func(*Executor)

// WithMonitors replaces the monitor geometry table.
func WithMonitors(m Monitors) Option {
	return func(e *Executor) {
		if len(m) > 0 {
			e.monitors = m
		}
	}
}

// WithSettleDelay sets the wait between launching and positioning a window.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Executor) { e.settle = d }
}

// WithReplier answers conversation through r, falling back to canned
// replies when r fails.
func WithReplier(r Replier) Option {
	return func(e *Executor) { e.replier = r }
}

// WithLogger sets the executor's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// New returns an Executor that runs programs through sh.
func New(sh shell.Executor, opts ...Option) *Executor {
	e := &Executor{
		shell:    sh,
		monitors: DefaultMonitors(),
		settle:   DefaultSettleDelay,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = map[intent.Intent]handler{
		intent.WindowManagement:         e.window,
		intent.ProcessControl:           e.process,
		intent.SystemQuery:              e.systemQuery,
		intent.FileOperation:            e.file,
		intent.InfrastructureMonitoring: e.monitor,
		intent.FleetCoordination:        e.fleetCoordination,
		intent.FleetStatus:              e.fleetStatus,
		intent.FleetObservation:         e.fleetObservation,
		intent.TopTurtleCommand:         e.topTurtle,
		intent.Conversation:             e.conversation,
		intent.Help:                     e.help,
		intent.Unknown:                  e.unknown,
	}
	return e
}

// Handles reports whether i has a handler.
func (e *Executor) Handles(i intent.Intent) bool {
	_, ok := e.handlers[i]
	return ok
}

// Execute runs cmd and returns its human-readable result. Failures of the
// underlying program are returned as *ExecutionError.
func (e *Executor) Execute(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	h, ok := e.handlers[cmd.Intent]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoHandler, cmd.Intent)
	}
	e.logger.Debug("executing", zap.String("intent", string(cmd.Intent)), zap.String("operation", cmd.Operation()))
	return h(ctx, cmd)
}

func (e *Executor) window(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	app := cmd.Param(intent.ParamApp, "unknown")
	position := cmd.Param(intent.ParamPosition, "center")
	monitor := cmd.Param(intent.ParamMonitor, "0")
	op := cmd.Operation()

	switch cmd.Param(intent.ParamAction, "") {
	case "open":
		g := e.monitors.Place(position, monitor)
		if _, err := e.run(ctx, op, "sh", "-c", `nohup "$0" >/dev/null 2>&1 &`, app); err != nil {
			return "", err
		}
		if err := sleep(ctx, e.settle); err != nil {
			return "", &ExecutionError{Operation: op, Err: err}
		}
		if _, err := e.run(ctx, op, "wmctrl", "-r", app, "-e", g.WmctrlSpec()); err != nil {
			return fmt.Sprintf("%s launched, positioning failed: %v", app, err), nil
		}
		return fmt.Sprintf("%s opened at %dx%d on monitor %s (%s)", app, g.Width, g.Height, monitor, position), nil

	case "move":
		g := e.monitors.Place(position, monitor)
		if _, err := e.run(ctx, op, "wmctrl", "-r", app, "-e", g.WmctrlSpec()); err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved %s to %s on monitor %s", app, position, monitor), nil

	case "resize":
		w, h := cmd.Param(intent.ParamWidth, "800"), cmd.Param(intent.ParamHeight, "600")
		if _, err := e.run(ctx, op, "wmctrl", "-r", app, "-e", "0,-1,-1,"+w+","+h); err != nil {
			return "", err
		}
		return fmt.Sprintf("Resized %s to %sx%s", app, w, h), nil

	case "minimize":
		if _, err := e.run(ctx, op, "wmctrl", "-r", app, "-b", "add,hidden"); err != nil {
			return "", err
		}
		return fmt.Sprintf("Minimized %s", app), nil

	case "maximize":
		if _, err := e.run(ctx, op, "wmctrl", "-r", app, "-b", "add,maximized_vert,maximized_horz"); err != nil {
			return "", err
		}
		return fmt.Sprintf("Maximized %s", app), nil

	case "close":
		if _, err := e.run(ctx, op, "wmctrl", "-c", app); err != nil {
			return "", err
		}
		return fmt.Sprintf("Closed %s", app), nil
	}
	return "", unknownAction(cmd)
}

func (e *Executor) process(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	target := cmd.Param(intent.ParamTarget, "unknown")
	op := cmd.Operation()

	switch cmd.Param(intent.ParamAction, "") {
	case "start":
		// Words of the target reach the program as arguments, never as shell syntax.
		args := append([]string{"-c", `nohup "$@" >/dev/null 2>&1 &`, "sh"}, strings.Fields(target)...)
		if _, err := e.run(ctx, op, "sh", args...); err != nil {
			return "", err
		}
		return fmt.Sprintf("Started: %s", target), nil

	case "stop", "kill", "terminate":
		if _, err := e.run(ctx, op, "pkill", "-f", target); err != nil {
			return "", err
		}
		return fmt.Sprintf("Stopped: %s", target), nil

	case "restart":
		if _, err := e.run(ctx, op, "systemctl", "restart", target); err != nil {
			return "", err
		}
		return fmt.Sprintf("Restarted: %s", target), nil
	}
	return "", unknownAction(cmd)
}

func (e *Executor) systemQuery(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	op := cmd.Operation()
	switch cmd.Param(intent.ParamType, "status") {
	case "monitors":
		res, err := e.run(ctx, op, "xrandr", "--query")
		if err != nil {
			return "", err
		}
		return "Detected monitors:\n" + connectedOutputs(res.Stdout), nil

	default:
		up, err := e.run(ctx, op, "uptime")
		if err != nil {
			return "", err
		}
		disk, err := e.run(ctx, op, "df", "-h", "/")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("System status:\n%s\n%s", strings.TrimSpace(up.Stdout), strings.TrimSpace(disk.Stdout)), nil
	}
}

// connectedOutputs keeps the xrandr lines describing connected outputs, or
// the whole output when none are marked.
func connectedOutputs(out string) string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, " connected") {
			lines = append(lines, "  "+strings.TrimSpace(l))
		}
	}
	if len(lines) == 0 {
		return strings.TrimSpace(out)
	}
	return strings.Join(lines, "\n")
}

func (e *Executor) file(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	path := cmd.Param(intent.ParamPath, "")
	op := cmd.Operation()
	if path == "" {
		return "", &ExecutionError{Operation: op, Err: fmt.Errorf("no path given")}
	}
	path, err := expandHome(path)
	if err != nil {
		return "", &ExecutionError{Operation: op, Err: err}
	}

	switch cmd.Param(intent.ParamAction, "") {
	case "read":
		res, err := e.run(ctx, op, "head", "-n", "50", "--", path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s:\n%s", path, strings.TrimRight(res.Stdout, "\n")), nil

	case "list":
		res, err := e.run(ctx, op, "ls", "-la", "--", path)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(res.Stdout, "\n"), nil

	case "create":
		if _, err := e.run(ctx, op, "touch", "--", path); err != nil {
			return "", err
		}
		return fmt.Sprintf("Created %s", path), nil

	case "delete":
		if _, err := e.run(ctx, op, "rm", "--", path); err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %s", path), nil
	}
	return "", unknownAction(cmd)
}

// expandHome replaces a leading "~" or "~/" with the user's home directory.
// Programs run without a shell, so nothing else would expand it.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// monitor lists processes matching the target. pgrep exits 1 when nothing
// matches, which is a valid answer rather than a failure.
func (e *Executor) monitor(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	target := cmd.Param(intent.ParamTarget, "system")
	op := cmd.Operation()

	res, err := e.shell.Run(ctx, "pgrep", "-a", "-f", target)
	if err != nil {
		return "", &ExecutionError{Operation: op, Result: res, Err: err}
	}
	switch res.ExitCode {
	case 0:
		lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
		return fmt.Sprintf("Watching %s: %d matching process(es)\n  %s", target, len(lines), strings.Join(lines, "\n  ")), nil
	case 1:
		return fmt.Sprintf("Watching %s: no matching processes", target), nil
	default:
		return "", &ExecutionError{Operation: op, Result: res, Err: res.Failure()}
	}
}

func (e *Executor) conversation(ctx context.Context, cmd intent.ParsedCommand) (string, error) {
	input := cmd.Param(intent.ParamInput, "")
	if e.replier != nil {
		reply, err := e.replier.Reply(ctx, input)
		if err == nil {
			return reply, nil
		}
		e.logger.Warn("chat reply failed, using canned reply", zap.Error(err))
	}
	return cannedReply(input), nil
}

func (e *Executor) fleetCoordination(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	switch action := cmd.Param(intent.ParamAction, "status"); action {
	case "status":
		return fleetStatusText, nil
	case "deploy":
		return fmt.Sprintf("Fleet deployment to %s queued (local session only)", cmd.Param(intent.ParamTarget, "all hosts")), nil
	default:
		return fmt.Sprintf("Fleet coordination: %s", action), nil
	}
}

func (e *Executor) fleetStatus(context.Context, intent.ParsedCommand) (string, error) {
	return fleetStatusText, nil
}

func (e *Executor) fleetObservation(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	return fmt.Sprintf("Observing %s across the local session", cmd.Param(intent.ParamTarget, "all")), nil
}

func (e *Executor) topTurtle(context.Context, intent.ParsedCommand) (string, error) {
	return sessionText, nil
}

func (e *Executor) help(context.Context, intent.ParsedCommand) (string, error) {
	return HelpText, nil
}

func (e *Executor) unknown(_ context.Context, cmd intent.ParsedCommand) (string, error) {
	return fmt.Sprintf("Not sure how to do that: %s", cmd.Param(intent.ParamInput, "(no input)")), nil
}

// sleep waits d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
