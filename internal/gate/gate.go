// Package gate wraps every action in observe, execute, observe, verify and
// record steps. One Gate serves one session and runs one command at a time.
package gate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/risk"
	"github.com/turtlefleet/turtle/internal/verify"
)

// ErrNotApproved is returned when the approver declines an operation.
var ErrNotApproved = errors.New("operation not approved")

// Phase is a step of a gated run.
type Phase int

const (
	Built Phase = iota
	Classified
	PreObserved
	Executing
	PostObserved
	Verified
	Recorded
	// Terminal failure phases.
	ExecutionFailed
	ObservationFailed
	Declined
)

var phaseNames = [...]string{
	Built:             "built",
	Classified:        "classified",
	PreObserved:       "pre_observed",
	Executing:         "executing",
	PostObserved:      "post_observed",
	Verified:          "verified",
	Recorded:          "recorded",
	ExecutionFailed:   "execution_failed",
	ObservationFailed: "observation_failed",
	Declined:          "declined",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether no further transition follows p.
func (p Phase) Terminal() bool {
	return p >= Recorded
}

// Observer captures host snapshots.
type Observer interface {
	Observe(ctx context.Context) (*observe.Snapshot, error)
}

// Executor carries out a parsed command.
type Executor interface {
	Execute(ctx context.Context, cmd intent.ParsedCommand) (string, error)
}

// AnomalyHandler receives every non-empty anomaly report. It cannot undo
// the action; it decides what to do with the findings.
type AnomalyHandler func(ctx context.Context, sc risk.SafetyContext, report verify.Report)

// Outcome is everything one gated run produced. Phase is the last phase
// reached.
type Outcome struct {
	Command   intent.ParsedCommand
	Context   risk.SafetyContext
	Phase     Phase
	Result    string
	Anomalies verify.Report
	Pre       *observe.Snapshot
	Post      *observe.Snapshot
	Record    *Record
}

// Gate is the execution state machine. It is not safe for concurrent Run
// calls; History may be read concurrently.
type Gate struct {
	observer     Observer
	executor     Executor
	approver     Approver
	approvalTier risk.Tier
	onAnomaly    AnomalyHandler
	logger       *zap.Logger
	now          func() time.Time

	history *History
	initial *observe.Snapshot
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the gate's logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithAnomalyHandler replaces the default handler, which logs findings at
// warn level.
func WithAnomalyHandler(h AnomalyHandler) Option {
	return func(g *Gate) { g.onAnomaly = h }
}

// WithApprover asks a before running any operation at or above tier.
func WithApprover(a Approver, tier risk.Tier) Option {
	return func(g *Gate) {
		g.approver = a
		g.approvalTier = tier
	}
}

// WithClock overrides the time source used for history records.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New returns a Gate with an empty history.
func New(obs Observer, exec Executor, opts ...Option) *Gate {
	g := &Gate{
		observer:     obs,
		executor:     exec,
		approvalTier: risk.Critical,
		logger:       zap.NewNop(),
		now:          time.Now,
		history:      &History{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.onAnomaly == nil {
		g.onAnomaly = g.logAnomalies
	}
	return g
}

// Contextualize classifies cmd. The operation's own tier can only raise the
// tier the parser assigned, never lower it.
func Contextualize(cmd intent.ParsedCommand) risk.SafetyContext {
	return risk.Classify(cmd.Operation(), cmd.Target()).Escalate(cmd.Tier)
}

// RequiresApproval reports whether running cmd would consult the approver.
func (g *Gate) RequiresApproval(cmd intent.ParsedCommand) bool {
	return g.approver != nil && Contextualize(cmd).Tier >= g.approvalTier
}

// History returns the gate's ledger.
func (g *Gate) History() *History {
	return g.history
}

// Initial returns the first snapshot this gate took, or nil before the
// first run.
func (g *Gate) Initial() *observe.Snapshot {
	return g.initial
}

// Run takes cmd through every phase. Observation failures return an
// *observe.ObservationError and execution failures the executor's own
// error; in both cases nothing is recorded. Anomalies never fail a run.
func (g *Gate) Run(ctx context.Context, cmd intent.ParsedCommand) (Outcome, error) {
	out := Outcome{Command: cmd, Phase: Built}
	log := g.logger.With(zap.String("intent", string(cmd.Intent)))

	out.Context = Contextualize(cmd)
	out.Phase = Classified
	log = log.With(zap.String("operation", out.Context.Operation), zap.Stringer("tier", out.Context.Tier))
	log.Debug("classified", zap.String("target", out.Context.Target), zap.String("pattern", out.Context.MonitoringPattern))

	if g.approver != nil && out.Context.Tier >= g.approvalTier {
		ok, err := g.approver.Approve(ctx, out.Context)
		if err != nil {
			out.Phase = Declined
			return out, fmt.Errorf("approval for %s: %w", out.Context.Operation, err)
		}
		if !ok {
			out.Phase = Declined
			log.Info("declined")
			return out, fmt.Errorf("%s on %s: %w", out.Context.Operation, out.Context.Target, ErrNotApproved)
		}
	}

	pre, err := g.observer.Observe(ctx)
	if err != nil {
		out.Phase = ObservationFailed
		log.Error("pre-observation failed", zap.Error(err))
		return out, err
	}
	if g.initial == nil {
		g.initial = pre
	}
	out.Pre = pre
	out.Phase = PreObserved
	log.Debug("pre-observed", zap.String("snapshot", pre.Summary()))

	out.Phase = Executing
	result, err := g.executor.Execute(ctx, cmd)
	if err != nil {
		out.Phase = ExecutionFailed
		log.Error("execution failed", zap.Error(err))
		return out, err
	}
	out.Result = result

	post, err := g.observer.Observe(ctx)
	if err != nil {
		out.Phase = ObservationFailed
		log.Error("post-observation failed", zap.Error(err))
		return out, err
	}
	out.Post = post
	out.Phase = PostObserved

	out.Anomalies = verify.Diff(pre, post, out.Context)
	out.Phase = Verified
	if !out.Anomalies.Empty() {
		g.onAnomaly(ctx, out.Context, out.Anomalies)
	}

	rec := g.history.Append(out.Context, result, g.now())
	out.Record = &rec
	out.Phase = Recorded
	log.Debug("recorded", zap.Stringer("id", rec.ID), zap.Int("anomalies", len(out.Anomalies)))
	return out, nil
}

func (g *Gate) logAnomalies(_ context.Context, sc risk.SafetyContext, report verify.Report) {
	for _, f := range report {
		g.logger.Warn("anomaly",
			zap.String("operation", sc.Operation),
			zap.String("kind", string(f.Kind)),
			zap.String("finding", f.Message))
	}
}
