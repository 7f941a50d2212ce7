// Package shell runs named external programs on behalf of the observer and
// the action handlers.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrNonZeroExit is wrapped by callers that treat a non-zero exit status as a
// failure of their own step.
var ErrNonZeroExit = errors.New("command exited with non-zero status")

// Result is the observable outcome of one program run.
type Result struct {
	Program  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the program exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandLine renders the invocation for messages and logs.
func (r Result) CommandLine() string {
	if len(r.Args) == 0 {
		return r.Program
	}
	return r.Program + " " + strings.Join(r.Args, " ")
}

// Failure returns an error describing a non-zero exit, or nil on success.
func (r Result) Failure() error {
	if r.Success() {
		return nil
	}
	msg := strings.TrimSpace(r.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(r.Stdout)
	}
	if msg == "" {
		return fmt.Errorf("%s: exit %d: %w", r.CommandLine(), r.ExitCode, ErrNonZeroExit)
	}
	return fmt.Errorf("%s: exit %d: %s: %w", r.CommandLine(), r.ExitCode, msg, ErrNonZeroExit)
}

// SpawnError is returned when a program could not be launched at all.
type SpawnError struct {
	Program string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Program, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsSpawnError reports whether err (or anything it wraps) is a SpawnError.
func IsSpawnError(err error) bool {
	var se *SpawnError
	return errors.As(err, &se)
}

// Executor runs a program to completion. A non-zero exit status is reported
// in Result, not as an error; the error is reserved for programs that could
// not be started or were interrupted by ctx.
type Executor interface {
	Run(ctx context.Context, program string, args ...string) (Result, error)
}

// OSExecutor runs programs with os/exec.
type OSExecutor struct {
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

// NewOSExecutor returns an executor backed by the host's processes.
func NewOSExecutor() *OSExecutor {
	return &OSExecutor{}
}

func (e *OSExecutor) Run(ctx context.Context, program string, args ...string) (Result, error) {
	res := Result{Program: program, Args: args}

	cmd := exec.CommandContext(ctx, program, args...)
	if e.Env != nil {
		cmd.Env = e.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w", res.CommandLine(), ctx.Err())
	}
	return res, &SpawnError{Program: program, Err: err}
}
