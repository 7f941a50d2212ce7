// Package verify compares a pre- and post-execution snapshot and reports
// advisory anomalies. Nothing in this package blocks or reverses an action.
package verify

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/risk"
)

// Kind categorizes a Finding.
type Kind string

const (
	ProcessStarted    Kind = "process_started"
	ProcessTerminated Kind = "process_terminated"
	UnexpectedChange  Kind = "unexpected_process_change"
	CPUSpike          Kind = "cpu_spike"
	WindowOffScreen   Kind = "window_off_screen"
	WindowResized     Kind = "window_resized"
)

// Thresholds used by Diff.
const (
	SpikeAfterPercent  = 80.0
	SpikeBeforePercent = 50.0
	OffScreenLimit     = -100
	ResizeRatio        = 0.5
)

// Finding is one human-readable anomaly.
type Finding struct {
	Kind    Kind
	Message string
}

func (f Finding) String() string { return f.Message }

// Report is the ordered list of findings from one comparison. An empty
// report means no anomalies were detected.
type Report []Finding

// Empty reports whether no anomalies were found.
func (r Report) Empty() bool { return len(r) == 0 }

// Messages returns the finding texts in order.
func (r Report) Messages() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Message
	}
	return out
}

// Count returns the number of findings of kind k.
func (r Report) Count(k Kind) int {
	n := 0
	for _, f := range r {
		if f.Kind == k {
			n++
		}
	}
	return n
}

// Diff compares pre and post under sc. It is total: nil snapshots yield an
// empty report. A window is reported off-screen only when it moved there,
// so comparing a snapshot with itself is always quiet.
func Diff(pre, post *observe.Snapshot, sc risk.SafetyContext) Report {
	if pre == nil || post == nil {
		return nil
	}
	var r Report
	r = append(r, processChanges(pre, post, sc.Tier)...)
	if post.Resources.CPUPercent > SpikeAfterPercent && pre.Resources.CPUPercent < SpikeBeforePercent {
		r = append(r, Finding{
			Kind: CPUSpike,
			Message: fmt.Sprintf("cpu spike: estimated usage rose from %.0f%% to %.0f%%",
				pre.Resources.CPUPercent, post.Resources.CPUPercent),
		})
	}
	if sc.MonitoringPattern == risk.PatternWindow {
		r = append(r, windowChanges(pre, post)...)
	}
	return r
}

func processChanges(pre, post *observe.Snapshot, tier risk.Tier) Report {
	before, after := pre.PIDs(), post.PIDs()

	var changes []string
	var r Report
	for _, pid := range sortedPIDs(after) {
		if _, ok := before[pid]; !ok {
			msg := fmt.Sprintf("process started: %s (pid %d)", after[pid].Name, pid)
			changes = append(changes, msg)
			r = append(r, Finding{Kind: ProcessStarted, Message: msg})
		}
	}
	for _, pid := range sortedPIDs(before) {
		if _, ok := after[pid]; !ok {
			msg := fmt.Sprintf("process terminated: %s (pid %d)", before[pid].Name, pid)
			changes = append(changes, msg)
			r = append(r, Finding{Kind: ProcessTerminated, Message: msg})
		}
	}
	if len(changes) > 0 && tier == risk.Low {
		r = append(r, Finding{
			Kind:    UnexpectedChange,
			Message: "unexpected process change during low-risk operation: " + strings.Join(changes, "; "),
		})
	}
	return r
}

func windowChanges(pre, post *observe.Snapshot) Report {
	var r Report
	for _, w := range post.Windows {
		old, ok := pre.Window(w.ID)
		if !ok {
			continue
		}
		moved := w.X != old.X || w.Y != old.Y
		if moved && (w.X < OffScreenLimit || w.Y < OffScreenLimit) {
			r = append(r, Finding{
				Kind:    WindowOffScreen,
				Message: fmt.Sprintf("window %q (%s) may be off-screen at %d,%d", w.Title, w.ID, w.X, w.Y),
			})
		}
		if drastic(old.Width, w.Width) || drastic(old.Height, w.Height) {
			r = append(r, Finding{
				Kind: WindowResized,
				Message: fmt.Sprintf("window %q (%s) resized drastically: %dx%d -> %dx%d",
					w.Title, w.ID, old.Width, old.Height, w.Width, w.Height),
			})
		}
	}
	return r
}

// drastic reports whether after differs from before by more than
// ResizeRatio of before. Degenerate pre sizes are never drastic.
func drastic(before, after int) bool {
	if before <= 0 {
		return false
	}
	return math.Abs(float64(after-before)) > ResizeRatio*float64(before)
}

func sortedPIDs(m map[int]observe.ProcessRecord) []int {
	pids := make([]int, 0, len(m))
	for pid := range m {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids
}
