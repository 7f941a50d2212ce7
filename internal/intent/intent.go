// Package intent turns a line of free text into a typed ParsedCommand using
// fixed, ordered pattern tables.
package intent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/turtlefleet/turtle/internal/risk"
)

// Intent enumerates the closed set of command purposes.
type Intent string

const (
	WindowManagement         Intent = "window_management"
	ProcessControl           Intent = "process_control"
	SystemQuery              Intent = "system_query"
	FileOperation            Intent = "file_operation"
	InfrastructureMonitoring Intent = "infrastructure_monitoring"
	FleetCoordination        Intent = "fleet_coordination"
	FleetStatus              Intent = "fleet_status"
	FleetObservation         Intent = "fleet_observation"
	TopTurtleCommand         Intent = "top_turtle_command"
	Conversation             Intent = "conversation"
	Help                     Intent = "help"
	Unknown                  Intent = "unknown"
)

// all is the closed variant set, in declaration order.
var all = []Intent{
	WindowManagement, ProcessControl, SystemQuery, FileOperation,
	InfrastructureMonitoring, FleetCoordination, FleetStatus, FleetObservation,
	TopTurtleCommand, Conversation, Help, Unknown,
}

// All returns every intent variant.
func All() []Intent {
	out := make([]Intent, len(all))
	copy(out, all)
	return out
}

// IsValid returns true if the given name is a known intent.
func IsValid(i Intent) bool {
	for _, known := range all {
		if i == known {
			return true
		}
	}
	return false
}

// domain is the operation-name prefix used when classifying each intent.
var domain = map[Intent]string{
	WindowManagement:         "window",
	ProcessControl:           "process",
	SystemQuery:              "system",
	FileOperation:            "file",
	InfrastructureMonitoring: "monitor",
	FleetCoordination:        "fleet",
	FleetStatus:              "fleet",
	FleetObservation:         "fleet",
	TopTurtleCommand:         "session",
	Conversation:             "conversation",
	Help:                     "help",
	Unknown:                  "unknown",
}

// defaultVerb is the verb used when a command carries no action parameter.
var defaultVerb = map[Intent]string{
	SystemQuery:              "show",
	InfrastructureMonitoring: "check",
	FleetStatus:              "status",
	FleetObservation:         "show",
	TopTurtleCommand:         "engage",
	Conversation:             "read",
	Help:                     "show",
}

// Parameter names shared by the parser and the action handlers.
const (
	ParamAction   = "action"
	ParamApp      = "app"
	ParamPosition = "position"
	ParamMonitor  = "monitor"
	ParamWidth    = "width"
	ParamHeight   = "height"
	ParamTarget   = "target"
	ParamType     = "type"
	ParamPath     = "path"
	ParamInput    = "input"
)

// ParsedCommand is the structured form of one input line. It is built once
// by the parser and treated as read-only afterwards.
type ParsedCommand struct {
	Intent     Intent
	Parameters map[string]string
	Tier       risk.Tier
}

// Param returns the named parameter or fallback when it is absent or empty.
func (c ParsedCommand) Param(name, fallback string) string {
	if v, ok := c.Parameters[name]; ok && v != "" {
		return v
	}
	return fallback
}

// Operation returns the dotted operation name ("process.kill") the risk
// classifier sees for this command.
func (c ParsedCommand) Operation() string {
	verb := c.Param(ParamAction, defaultVerb[c.Intent])
	if verb == "" {
		verb = string(c.Intent)
	}
	return domain[c.Intent] + "." + verb
}

// Target names the object of the command, falling back to "system".
func (c ParsedCommand) Target() string {
	for _, name := range []string{ParamTarget, ParamApp, ParamPath} {
		if v := c.Parameters[name]; v != "" {
			return v
		}
	}
	return "system"
}

// String renders the command for logs and dry runs.
func (c ParsedCommand) String() string {
	keys := make([]string, 0, len(c.Parameters))
	for k := range c.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(string(c.Intent))
	b.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %q", k, c.Parameters[k])
	}
	b.WriteString("} ")
	b.WriteString(c.Tier.String())
	return b.String()
}
