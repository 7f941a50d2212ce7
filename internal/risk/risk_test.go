package risk

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestClassify_VerbBuckets(t *testing.T) {
	tests := []struct {
		op   string
		want Tier
	}{
		{"read", Low},
		{"LIST", Low},
		{"show", Low},
		{"status", Low},
		{"check", Low},
		{"move", Medium},
		{"Resize", Medium},
		{"focus", Medium},
		{"minimize", Medium},
		{"maximize", Medium},
		{"write", High},
		{"create", High},
		{"delete", High},
		{"modify", High},
		{"install", High},
		{"format", Critical},
		{"shutdown", Critical},
		{"reboot", Critical},
		{"kill", Critical},
		{"chmod", Critical},
		{"process.kill", Critical},
		{"file.read", Low},
		{"window.move", Medium},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.op, "x").Tier)
		})
	}
}

func TestClassify_UnknownDefaultsToMedium(t *testing.T) {
	for _, op := range []string{"frobnicate", "", "WindowManagement", "open", "process.start"} {
		assert.Equal(t, Medium, Classify(op, "x").Tier, op)
	}
}

func TestClassify_RollbackPlanPerTier(t *testing.T) {
	assert.Empty(t, Classify("read", "notes").RollbackPlan)
	assert.False(t, Classify("read", "notes").HasRollback())

	medium := Classify("move", "slack").RollbackPlan
	assert.Contains(t, medium, "slack")
	assert.Contains(t, medium, "prior")

	high := Classify("delete", "notes.txt").RollbackPlan
	assert.Contains(t, high, "Back up")

	critical := Classify("reboot", "host").RollbackPlan
	assert.Contains(t, critical, "full system state snapshot")
}

func TestMonitoringPattern(t *testing.T) {
	assert.Equal(t, PatternWindow, Classify("window.move", "x").MonitoringPattern)
	assert.Equal(t, PatternWindow, Classify("WindowManagement", "x").MonitoringPattern)
	assert.Equal(t, PatternFile, Classify("file.delete", "x").MonitoringPattern)
	assert.Equal(t, PatternProcess, Classify("process.kill", "x").MonitoringPattern)
	assert.Equal(t, PatternGeneral, Classify("system.status", "x").MonitoringPattern)
}

func TestEscalate_NeverLowers(t *testing.T) {
	sc := Classify("kill", "nginx")
	assert.Equal(t, Critical, sc.Escalate(Low).Tier)

	low := Classify("show", "system")
	raised := low.Escalate(High)
	assert.Equal(t, High, raised.Tier)
	assert.True(t, raised.HasRollback())
	assert.Equal(t, Low, low.Tier, "escalate returns a copy")
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "low", Low.String())
	assert.Equal(t, "critical", Critical.String())
	assert.Equal(t, "tier(9)", Tier(9).String())
	assert.False(t, Tier(9).Valid())
}

func TestClassify_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("classify is total over known tiers", prop.ForAll(
		func(op, target string) bool {
			sc := Classify(op, target)
			return sc.Tier.Valid() && sc.Target == target && sc.Operation == op
		},
		gen.AnyString(), gen.AnyString(),
	))

	properties.Property("unrecognised identifiers map to medium", prop.ForAll(
		func(op string) bool {
			return Classify("zz"+op, "t").Tier == Medium
		},
		gen.Identifier(),
	))

	properties.Property("rollback plan present iff tier above low", prop.ForAll(
		func(op string) bool {
			sc := Classify(op, "t")
			return sc.HasRollback() == (sc.Tier > Low)
		},
		gen.OneConstOf("read", "move", "write", "kill", "unknown", "list"),
	))

	properties.TestingRun(t)
}
