package verify

import (
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/risk"
)

func snapshotWith(pids ...int) *observe.Snapshot {
	s := &observe.Snapshot{Timestamp: 1}
	for _, pid := range pids {
		s.Processes = append(s.Processes, observe.ProcessRecord{PID: pid, Name: "proc" + strconv.Itoa(pid)})
	}
	return s
}

func TestDiff_ProcessChurn(t *testing.T) {
	pre := snapshotWith(1, 2, 3)
	post := snapshotWith(1, 3, 4)

	r := Diff(pre, post, risk.Classify("process.start", "proc4"))
	require.Len(t, r, 2)
	assert.Equal(t, ProcessStarted, r[0].Kind)
	assert.Contains(t, r[0].Message, "proc4 (pid 4)")
	assert.Equal(t, ProcessTerminated, r[1].Kind)
	assert.Contains(t, r[1].Message, "proc2 (pid 2)")
	assert.Zero(t, r.Count(UnexpectedChange))
}

func TestDiff_LowTierChurnIsUnexpected(t *testing.T) {
	r := Diff(snapshotWith(1, 2), snapshotWith(1, 2, 99), risk.Classify("system.status", "system"))

	require.False(t, r.Empty())
	assert.Equal(t, 1, r.Count(UnexpectedChange))
	joined := strings.Join(r.Messages(), "\n")
	assert.Contains(t, joined, "unexpected")
	assert.Contains(t, joined, "pid 99")
}

func TestDiff_SameProcessesDifferentOrderIsQuiet(t *testing.T) {
	r := Diff(snapshotWith(3, 1, 2), snapshotWith(1, 2, 3), risk.Classify("read", "x"))
	assert.True(t, r.Empty())
}

func TestDiff_CPUSpike(t *testing.T) {
	tests := []struct {
		name      string
		pre, post float64
		want      bool
	}{
		{"spike", 20, 90, true},
		{"already busy", 60, 95, false},
		{"post below threshold", 10, 80, false},
		{"pre at threshold", 50, 85, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre, post := snapshotWith(1), snapshotWith(1)
			pre.Resources.CPUPercent = tt.pre
			post.Resources.CPUPercent = tt.post
			got := Diff(pre, post, risk.Classify("process.kill", "x")).Count(CPUSpike) == 1
			assert.Equal(t, tt.want, got)
		})
	}
}

func windowSnapshot(w observe.WindowRecord) *observe.Snapshot {
	return &observe.Snapshot{Windows: []observe.WindowRecord{w}}
}

func TestDiff_WindowChecks(t *testing.T) {
	base := observe.WindowRecord{ID: "0x1", Title: "Slack", X: 100, Y: 100, Width: 1000, Height: 800, Visible: true}
	move := risk.Classify("window.move", "slack")

	offscreen := base
	offscreen.X = -500
	r := Diff(windowSnapshot(base), windowSnapshot(offscreen), move)
	assert.Equal(t, 1, r.Count(WindowOffScreen))
	assert.Zero(t, r.Count(WindowResized))

	shrunk := base
	shrunk.Width = 400
	r = Diff(windowSnapshot(base), windowSnapshot(shrunk), move)
	assert.Equal(t, 1, r.Count(WindowResized))

	mild := base
	mild.Height = 1200
	assert.True(t, Diff(windowSnapshot(base), windowSnapshot(mild), move).Empty())

	other := offscreen
	other.ID = "0x2"
	assert.True(t, Diff(windowSnapshot(base), windowSnapshot(other), move).Empty(),
		"windows present in only one snapshot are not compared")
}

func TestDiff_WindowChecksOnlyForWindowPattern(t *testing.T) {
	base := observe.WindowRecord{ID: "0x1", Width: 1000, Height: 800}
	gone := base
	gone.X, gone.Y, gone.Width = -900, -900, 10

	r := Diff(windowSnapshot(base), windowSnapshot(gone), risk.Classify("process.start", "x"))
	assert.True(t, r.Empty())
}

func TestDiff_NilSnapshots(t *testing.T) {
	assert.True(t, Diff(nil, snapshotWith(1), risk.SafetyContext{}).Empty())
	assert.True(t, Diff(snapshotWith(1), nil, risk.SafetyContext{}).Empty())
}

func genSnapshot() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOf(gen.IntRange(1, 65535)),
		gen.Float64Range(0, 100),
		gen.SliceOf(gen.IntRange(-2000, 4000)),
	).Map(func(v []interface{}) *observe.Snapshot {
		s := snapshotWith(v[0].([]int)...)
		s.Resources.CPUPercent = v[1].(float64)
		for i, n := range v[2].([]int) {
			s.Windows = append(s.Windows, observe.WindowRecord{
				ID: "0x" + strconv.Itoa(i), X: n, Y: n, Width: n, Height: n,
			})
		}
		return s
	})
}

func genContext() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("window.move", "process.kill", "file.read", "system.status", "frobnicate"),
		gen.IntRange(0, 3),
	).Map(func(v []interface{}) risk.SafetyContext {
		return risk.Classify(v[0].(string), "x").Escalate(risk.Tier(v[1].(int)))
	})
}

func TestDiff_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("a snapshot compared with itself has no anomalies", prop.ForAll(
		func(s *observe.Snapshot, sc risk.SafetyContext) bool {
			return Diff(s, s, sc).Empty()
		},
		genSnapshot(), genContext(),
	))

	properties.Property("identical pid sets produce no process findings", prop.ForAll(
		func(pids []int, sc risk.SafetyContext) bool {
			reversed := make([]int, len(pids))
			for i, p := range pids {
				reversed[len(pids)-1-i] = p
			}
			r := Diff(snapshotWith(pids...), snapshotWith(reversed...), sc)
			return r.Count(ProcessStarted)+r.Count(ProcessTerminated)+r.Count(UnexpectedChange) == 0
		},
		gen.SliceOf(gen.IntRange(1, 65535)), genContext(),
	))

	properties.Property("low-tier process churn is always flagged unexpected", prop.ForAll(
		func(pids []int, extra int) bool {
			for _, p := range pids {
				if p == extra {
					return true
				}
			}
			post := snapshotWith(append(append([]int(nil), pids...), extra)...)
			return Diff(snapshotWith(pids...), post, risk.Classify("read", "x")).Count(UnexpectedChange) == 1
		},
		gen.SliceOf(gen.IntRange(1, 1000)), gen.IntRange(1001, 2000),
	))

	properties.TestingRun(t)
}
