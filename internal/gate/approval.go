package gate

import (
	"context"

	"github.com/turtlefleet/turtle/internal/risk"
)

// Approver decides whether a high-impact operation may run.
type Approver interface {
	Approve(ctx context.Context, sc risk.SafetyContext) (bool, error)
}

// ApproverFunc adapts a function to Approver.
type ApproverFunc func(ctx context.Context, sc risk.SafetyContext) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, sc risk.SafetyContext) (bool, error) {
	return f(ctx, sc)
}

type approvalKey struct{}

// WithApproval marks ctx as carrying the user's consent for the next run.
// Interactive surfaces ask first and then run with the marked context.
func WithApproval(ctx context.Context) context.Context {
	return context.WithValue(ctx, approvalKey{}, true)
}

// Approved reports whether ctx carries consent.
func Approved(ctx context.Context) bool {
	ok, _ := ctx.Value(approvalKey{}).(bool)
	return ok
}

// ContextApprover approves exactly the runs whose context carries consent.
type ContextApprover struct{}

func (ContextApprover) Approve(ctx context.Context, _ risk.SafetyContext) (bool, error) {
	return Approved(ctx), nil
}
