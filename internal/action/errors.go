package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/shell"
)

// ErrNoHandler is returned for an intent with no registered handler.
var ErrNoHandler = errors.New("no handler for intent")

// ExecutionError reports that the external command behind an action failed
// or could not be spawned. Error returns the text shown to the user.
type ExecutionError struct {
	Operation string
	Result    shell.Result
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// run invokes program on behalf of op and converts a spawn failure or a
// non-zero exit into an ExecutionError.
func (e *Executor) run(ctx context.Context, op, program string, args ...string) (shell.Result, error) {
	res, err := e.shell.Run(ctx, program, args...)
	if err != nil {
		return res, &ExecutionError{Operation: op, Result: res, Err: err}
	}
	if ferr := res.Failure(); ferr != nil {
		return res, &ExecutionError{Operation: op, Result: res, Err: ferr}
	}
	return res, nil
}

func unknownAction(cmd intent.ParsedCommand) error {
	return &ExecutionError{
		Operation: cmd.Operation(),
		Err:       fmt.Errorf("unknown %s action %q", cmd.Intent, cmd.Param(intent.ParamAction, "")),
	}
}
