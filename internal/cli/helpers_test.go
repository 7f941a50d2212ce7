package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/turtlefleet/turtle/internal/action"
	"github.com/turtlefleet/turtle/internal/gate"
	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/risk"
	"github.com/turtlefleet/turtle/internal/shell"
	"github.com/turtlefleet/turtle/internal/testutil"
)

var (
	psInit    = testutil.PSLine(1, 0.0, "init")
	psFirefox = testutil.PSLine(4242, 12.0, "firefox")
)

// hostRecorder scripts a quiet host; ps is scripted per test.
func hostRecorder() *shell.Recorder {
	return testutil.Host()
}

type testEnv struct {
	app *App
	rec *shell.Recorder
	out *bytes.Buffer
	err *bytes.Buffer
}

// newTestEnv wires real components over rec. ps is scripted by the caller.
func newTestEnv(t *testing.T, rec *shell.Recorder, confirmCritical bool) *testEnv {
	t.Helper()
	obs := observe.NewObserver(observe.NewShellInspector(rec, false), rec, observe.Options{})
	var opts []gate.Option
	if confirmCritical {
		opts = append(opts, gate.WithApprover(gate.ContextApprover{}, risk.Critical))
	}
	env := &testEnv{rec: rec, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	env.app = &App{
		Parser:          intent.NewParser(),
		Gate:            gate.New(obs, action.New(rec, action.WithSettleDelay(0)), opts...),
		Observer:        obs,
		ConfirmCritical: confirmCritical,
		In:              strings.NewReader(""),
		Out:             env.out,
		Err:             env.err,
	}
	return env
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	root := NewRootCmd(app)
	root.SetArgs(args)
	return root.Execute()
}

type fakeExplainer struct {
	note      string
	err       error
	operation string
	findings  []string
}

func (f *fakeExplainer) Explain(_ context.Context, operation string, findings []string) (string, error) {
	f.operation, f.findings = operation, findings
	return f.note, f.err
}
