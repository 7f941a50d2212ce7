package formatter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/turtlefleet/turtle/internal/gate"
	"github.com/turtlefleet/turtle/internal/intent"
	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/risk"
)

// FormatOutcome renders a recorded run: the action's result, a context line
// and any anomalies.
func FormatOutcome(out gate.Outcome) string {
	var b strings.Builder
	b.WriteString(StyleFg.Render(strings.TrimRight(out.Result, "\n")))
	b.WriteString("\n")
	b.WriteString(contextLine(out.Context))
	b.WriteString("\n")

	if !out.Anomalies.Empty() {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("⚠ %d anomal%s detected", len(out.Anomalies), plural(len(out.Anomalies), "y", "ies"))))
		b.WriteString("\n")
		for _, msg := range out.Anomalies.Messages() {
			b.WriteString("  " + StyleYellow.Render("•") + " " + msg + "\n")
		}
	}
	return b.String()
}

// FormatFailure renders a run that stopped before it was recorded.
func FormatFailure(out gate.Outcome, err error) string {
	var oe *observe.ObservationError
	switch {
	case errors.Is(err, gate.ErrNotApproved):
		return StyleYellow.Render(fmt.Sprintf("Cancelled: %s on %s was not approved.", out.Context.Operation, out.Context.Target)) + "\n"
	case errors.As(err, &oe):
		return StyleRed.Render("✖ Could not observe system state: "+oe.Error()) + "\n" +
			Dim("  Nothing was executed or recorded.") + "\n"
	default:
		line := StyleRed.Render("✖ "+err.Error()) + "\n"
		if out.Context.HasRollback() && out.Phase == gate.ExecutionFailed {
			line += Dim("  rollback: "+out.Context.RollbackPlan) + "\n"
		}
		return line
	}
}

// FormatParse renders a dry run of one input line: how it parsed and how
// the gate would classify it.
func FormatParse(cmd intent.ParsedCommand, sc risk.SafetyContext, needsApproval bool) string {
	var b strings.Builder
	b.WriteString(Header("Parsed command"))
	b.WriteString("\n")

	rows := [][]string{
		{"intent", string(cmd.Intent)},
		{"operation", sc.Operation},
		{"target", sc.Target},
		{"parsed tier", TierBadge(cmd.Tier)},
		{"gate tier", TierBadge(sc.Tier)},
		{"pattern", sc.MonitoringPattern},
	}
	if sc.HasRollback() {
		rows = append(rows, []string{"rollback", sc.RollbackPlan})
	}
	if needsApproval {
		rows = append(rows, []string{"approval", StyleYellow.Render("required")})
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("%-12s", r[0])), r[1])
	}

	if len(cmd.Parameters) > 0 {
		keys := make([]string, 0, len(cmd.Parameters))
		for k := range cmd.Parameters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("\n")
		b.WriteString(Header("Parameters"))
		b.WriteString("\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("%-12s", k)), cmd.Parameters[k])
		}
	}
	return b.String()
}

// FormatHistory renders the ledger, oldest first.
func FormatHistory(records []gate.Record) string {
	if len(records) == 0 {
		return Dim("No operations recorded yet.") + "\n"
	}
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			Dim(r.At.Format("15:04:05")),
			r.Context.Operation,
			Truncate(r.Context.Target, 24),
			TierBadge(r.Context.Tier),
			Truncate(firstLine(r.Result), 48),
		})
	}
	return Header("History") + "\n" + RenderTable([]string{"#", "TIME", "OPERATION", "TARGET", "TIER", "RESULT"}, rows)
}

func contextLine(sc risk.SafetyContext) string {
	line := Dim(sc.Operation+" · "+sc.Target+" · ") + TierBadge(sc.Tier)
	if sc.HasRollback() {
		line += Dim(" · rollback: " + sc.RollbackPlan)
	}
	return line
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
