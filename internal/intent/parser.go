package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/turtlefleet/turtle/internal/risk"
)

// rule pairs a whole-line pattern with the intent it produces. Capture
// groups are assigned to captures positionally; fixed parameters are added
// verbatim.
type rule struct {
	pattern  *regexp.Regexp
	intent   Intent
	tier     risk.Tier
	fixed    map[string]string
	captures []string
}

// group is an ordered list of rules tried as a unit.
type group struct {
	name  string
	rules []rule
}

func line(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^` + pattern + `$`)
}

var windowGroup = group{name: "window", rules: []rule{
	{
		pattern:  line(`open\s+(\w+)\s+on\s+(?:the\s+)?(\w+(?:[\s-]\w+)?)\s+of\s+(?:my\s+)?(\w+)\s+monitor`),
		intent:   WindowManagement,
		tier:     risk.Medium,
		fixed:    map[string]string{ParamAction: "open"},
		captures: []string{ParamApp, ParamPosition, ParamMonitor},
	},
	{
		pattern:  line(`open\s+(\w+)`),
		intent:   WindowManagement,
		tier:     risk.Medium,
		fixed:    map[string]string{ParamAction: "open"},
		captures: []string{ParamApp},
	},
	{
		pattern:  line(`move\s+(\w+)\s+to\s+(?:the\s+)?(\w+(?:[\s-]\w+)?)(?:\s+(?:of|on)\s+monitor\s+(\w+))?`),
		intent:   WindowManagement,
		tier:     risk.Medium,
		fixed:    map[string]string{ParamAction: "move"},
		captures: []string{ParamApp, ParamPosition, ParamMonitor},
	},
	{
		pattern:  line(`(?:resize|scale)\s+(\w+)\s+to\s+(\d+)\s*x\s*(\d+)`),
		intent:   WindowManagement,
		tier:     risk.Medium,
		fixed:    map[string]string{ParamAction: "resize"},
		captures: []string{ParamApp, ParamWidth, ParamHeight},
	},
	{
		pattern:  line(`(minimize|maximize)\s+(\w+)`),
		intent:   WindowManagement,
		tier:     risk.Medium,
		captures: []string{ParamAction, ParamApp},
	},
	{
		pattern:  line(`close\s+(\w+)`),
		intent:   WindowManagement,
		tier:     risk.High,
		fixed:    map[string]string{ParamAction: "close"},
		captures: []string{ParamApp},
	},
}}

var processGroup = group{name: "process", rules: []rule{
	{
		pattern:  line(`(?:start|launch|run)\s+(.+)`),
		intent:   ProcessControl,
		tier:     risk.High,
		fixed:    map[string]string{ParamAction: "start"},
		captures: []string{ParamTarget},
	},
	{
		pattern:  line(`(stop|kill|terminate)\s+([\w.@-]+)`),
		intent:   ProcessControl,
		tier:     risk.High,
		captures: []string{ParamAction, ParamTarget},
	},
	{
		pattern:  line(`restart\s+([\w.@-]+)`),
		intent:   ProcessControl,
		tier:     risk.High,
		fixed:    map[string]string{ParamAction: "restart"},
		captures: []string{ParamTarget},
	},
}}

var systemGroup = group{name: "system", rules: []rule{
	{
		pattern: line(`(?:show|list|display)\s+(?:me\s+)?(?:all\s+)?(?:the\s+|my\s+)?monitors?`),
		intent:  SystemQuery,
		tier:    risk.Low,
		fixed:   map[string]string{ParamAction: "list", ParamType: "monitors"},
	},
	{
		pattern: line(`(?:what's|what\s+is|show|check)\s+(?:the\s+)?(?:system\s+)?(?:status|health|state)\??`),
		intent:  SystemQuery,
		tier:    risk.Low,
		fixed:   map[string]string{ParamAction: "status", ParamType: "status"},
	},
	{
		pattern: line(`(?:help|\?|what\s+can\s+you\s+do\??)`),
		intent:  Help,
		tier:    risk.Low,
	},
	{
		pattern: line(`(?:fleet|turtle)\s+(?:status|state|health)`),
		intent:  FleetStatus,
		tier:    risk.Low,
	},
	{
		pattern:  line(`observe\s+(?:the\s+)?(?:fleet|turtles?|all)\s+(.+)`),
		intent:   FleetObservation,
		tier:     risk.Low,
		captures: []string{ParamTarget},
	},
	{
		pattern:  line(`(?:monitor|watch|observe)\s+(.+)`),
		intent:   InfrastructureMonitoring,
		tier:     risk.Low,
		fixed:    map[string]string{ParamAction: "check"},
		captures: []string{ParamTarget},
	},
	{
		pattern:  line(`(?:coordinate|manage|control)\s+(?:the\s+)?fleet\s+(\w+)`),
		intent:   FleetCoordination,
		tier:     risk.Medium,
		captures: []string{ParamAction},
	},
	{
		pattern:  line(`deploy\s+(?:across|to)\s+(.+)`),
		intent:   FleetCoordination,
		tier:     risk.Medium,
		fixed:    map[string]string{ParamAction: "deploy"},
		captures: []string{ParamTarget},
	},
	{
		pattern: line(`engage\s+(?:interactive\s+)?(?:fleet\s+)?session`),
		intent:  TopTurtleCommand,
		tier:    risk.Medium,
	},
	{
		pattern:  line(`(?:read|cat|show)\s+(?:the\s+)?file\s+(\S+)`),
		intent:   FileOperation,
		tier:     risk.Low,
		fixed:    map[string]string{ParamAction: "read"},
		captures: []string{ParamPath},
	},
	{
		pattern:  line(`list\s+(?:files\s+in|directory|dir)\s+(\S+)`),
		intent:   FileOperation,
		tier:     risk.Low,
		fixed:    map[string]string{ParamAction: "list"},
		captures: []string{ParamPath},
	},
	{
		pattern:  line(`(?:create|touch)\s+(?:a\s+)?file\s+(\S+)`),
		intent:   FileOperation,
		tier:     risk.High,
		fixed:    map[string]string{ParamAction: "create"},
		captures: []string{ParamPath},
	},
	{
		pattern:  line(`(?:delete|remove)\s+(?:the\s+)?file\s+(\S+)`),
		intent:   FileOperation,
		tier:     risk.High,
		fixed:    map[string]string{ParamAction: "delete"},
		captures: []string{ParamPath},
	},
}}

// Parser resolves text against its groups in order. The zero value has no
// rules; use NewParser.
type Parser struct {
	groups []group
}

// NewParser returns a parser over the window, process and system tables, in
// that precedence order.
func NewParser() *Parser {
	return &Parser{groups: []group{windowGroup, processGroup, systemGroup}}
}

// Parse classifies text. The first rule, across all groups in order, that
// matches the whole trimmed line wins. Text no rule matches becomes a
// Conversation carrying the original text. Callers drop blank lines before
// calling Parse.
func (p *Parser) Parse(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	for _, g := range p.groups {
		for _, r := range g.rules {
			m := r.pattern.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			return r.build(m)
		}
	}
	return ParsedCommand{
		Intent:     Conversation,
		Parameters: map[string]string{ParamInput: text},
		Tier:       risk.Low,
	}
}

func (r rule) build(m []string) ParsedCommand {
	params := make(map[string]string, len(r.fixed)+len(r.captures))
	for k, v := range r.fixed {
		params[k] = v
	}
	for i, name := range r.captures {
		if i+1 >= len(m) || m[i+1] == "" {
			continue
		}
		params[name] = normalize(name, m[i+1])
	}
	return ParsedCommand{Intent: r.intent, Parameters: params, Tier: r.tier}
}

func normalize(name, value string) string {
	switch name {
	case ParamMonitor:
		return NormalizeMonitor(value)
	case ParamPosition:
		return NormalizePosition(value)
	case ParamAction:
		return strings.ToLower(value)
	default:
		return strings.TrimSpace(value)
	}
}

var monitorAliases = map[string]string{
	"first":     "0",
	"primary":   "0",
	"main":      "0",
	"second":    "1",
	"secondary": "1",
	"third":     "2",
}

// NormalizeMonitor maps a spoken or 1-based monitor reference to a 0-based
// index string. Unrecognised references select the primary monitor.
func NormalizeMonitor(ref string) string {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if idx, ok := monitorAliases[ref]; ok {
		return idx
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return "0"
	}
	return strconv.Itoa(max(n-1, 0))
}

// NormalizePosition folds a region phrase ("Top Third", "left-half") into
// its hyphenated lowercase token.
func NormalizePosition(pos string) string {
	return strings.Join(strings.Fields(strings.ToLower(strings.ReplaceAll(pos, "-", " "))), "-")
}
