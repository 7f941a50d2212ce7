package shell

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Scripted is a canned response for one program in a Recorder.
type Scripted struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Call is one invocation captured by a Recorder.
type Call struct {
	Program string
	Args    []string
}

func (c Call) String() string {
	return strings.TrimSpace(c.Program + " " + strings.Join(c.Args, " "))
}

// Recorder is an in-memory Executor that replays scripted responses and
// records every call. Programs without a script fail with a SpawnError, the
// same way a missing binary does on a real host.
type Recorder struct {
	mu      sync.Mutex
	scripts map[string][]Scripted
	calls   []Call
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{scripts: make(map[string][]Scripted)}
}

// On queues responses for program. Responses are consumed in order; the last
// one repeats once the queue is drained.
func (r *Recorder) On(program string, responses ...Scripted) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[program] = append(r.scripts[program], responses...)
	return r
}

// Calls returns a copy of every recorded call.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns the recorded calls to program.
func (r *Recorder) CallsTo(program string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Program == program {
			out = append(out, c)
		}
	}
	return out
}

func (r *Recorder) Run(ctx context.Context, program string, args ...string) (Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Program: program, Args: append([]string(nil), args...)})
	queue := r.scripts[program]
	var s Scripted
	found := len(queue) > 0
	if found {
		s = queue[0]
		if len(queue) > 1 {
			r.scripts[program] = queue[1:]
		}
	}
	r.mu.Unlock()

	res := Result{Program: program, Args: args}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if !found {
		return res, &SpawnError{Program: program, Err: fmt.Errorf("executable file not found in $PATH")}
	}
	if s.Err != nil {
		return res, s.Err
	}
	res.Stdout = s.Stdout
	res.Stderr = s.Stderr
	res.ExitCode = s.ExitCode
	return res, nil
}
