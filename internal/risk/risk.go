// Package risk assigns risk tiers to operations and derives the rollback
// and monitoring policy that goes with each tier.
package risk

import (
	"fmt"
	"strings"
)

// Tier is the ordered risk classification of an operation.
type Tier int

const (
	Low Tier = iota
	Medium
	High
	Critical
)

// Tiers lists every tier in ascending order.
func Tiers() []Tier {
	return []Tier{Low, Medium, High, Critical}
}

func (t Tier) String() string {
	switch t {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	return t >= Low && t <= Critical
}

// Max returns the higher of two tiers.
func Max(a, b Tier) Tier {
	if a > b {
		return a
	}
	return b
}

// Monitoring pattern tags. They tell the differ which post-conditions matter.
const (
	PatternWindow  = "window_position_changes"
	PatternFile    = "file_system_changes"
	PatternProcess = "process_state_changes"
	PatternGeneral = "general_system_changes"
)

// SafetyContext is the classified view of one operation about to run.
type SafetyContext struct {
	Operation         string
	Target            string
	Tier              Tier
	RollbackPlan      string // empty for Low
	MonitoringPattern string
}

// HasRollback reports whether a rollback plan applies to this context.
func (c SafetyContext) HasRollback() bool {
	return c.RollbackPlan != ""
}

// Escalate returns a copy of c raised to at least tier, with the rollback
// plan recomputed. Escalation never lowers a tier.
func (c SafetyContext) Escalate(tier Tier) SafetyContext {
	if tier <= c.Tier {
		return c
	}
	c.Tier = tier
	c.RollbackPlan = rollbackPlan(tier, c.Target)
	return c
}

// verbBucket maps a set of verbs to the tier they imply.
type verbBucket struct {
	tier  Tier
	verbs []string
}

// verbBuckets is checked in order. Anything not listed falls back to
// defaultTier.
var verbBuckets = []verbBucket{
	{Low, []string{"read", "list", "show", "status", "check"}},
	{Medium, []string{"move", "resize", "focus", "minimize", "maximize"}},
	{High, []string{"write", "create", "delete", "modify", "install"}},
	{Critical, []string{"format", "shutdown", "reboot", "kill", "chmod"}},
}

// defaultTier is used for operations no bucket recognises. Unknown
// operations are never treated as read-only.
const defaultTier = Medium

// monitoringRules is checked in order against the lowercased operation.
var monitoringRules = []struct {
	substr  string
	pattern string
}{
	{"window", PatternWindow},
	{"file", PatternFile},
	{"process", PatternProcess},
}

// Classify builds the SafetyContext for an operation on target. The
// operation may be a bare verb ("kill") or a dotted name whose last segment
// is the verb ("process.kill"). It is pure and total.
func Classify(operation, target string) SafetyContext {
	tier := TierFor(operation)
	return SafetyContext{
		Operation:         operation,
		Target:            target,
		Tier:              tier,
		RollbackPlan:      rollbackPlan(tier, target),
		MonitoringPattern: MonitoringPattern(operation),
	}
}

// TierFor returns the tier implied by the operation's verb.
func TierFor(operation string) Tier {
	verb := Verb(operation)
	for _, b := range verbBuckets {
		for _, v := range b.verbs {
			if verb == v {
				return b.tier
			}
		}
	}
	return defaultTier
}

// Verb extracts the lowercased verb from an operation name.
func Verb(operation string) string {
	op := strings.ToLower(strings.TrimSpace(operation))
	if i := strings.LastIndex(op, "."); i >= 0 {
		op = op[i+1:]
	}
	return op
}

// MonitoringPattern derives the post-condition category for an operation.
func MonitoringPattern(operation string) string {
	op := strings.ToLower(operation)
	for _, r := range monitoringRules {
		if strings.Contains(op, r.substr) {
			return r.pattern
		}
	}
	return PatternGeneral
}

func rollbackPlan(tier Tier, target string) string {
	switch tier {
	case Low:
		return ""
	case Medium:
		return fmt.Sprintf("Restore %s to its prior position/state", target)
	case High:
		return fmt.Sprintf("Back up %s and restore it if the operation fails", target)
	default:
		return fmt.Sprintf("Take a full system state snapshot before touching %s", target)
	}
}
