package formatter

import (
	"fmt"
	"strings"

	"github.com/turtlefleet/turtle/internal/risk"
)

// WelcomeInfo describes the session the banner announces.
type WelcomeInfo struct {
	ConfirmCritical bool
	Assistant       bool
}

// exampleGroup lists a few phrasings under a section header.
type exampleGroup struct {
	title    string
	examples [][]string
}

func renderExampleGroup(g exampleGroup) string {
	var b strings.Builder
	b.WriteString("  " + StyleHeader.Render(strings.ToUpper(g.title)) + "\n")
	for _, e := range g.examples {
		b.WriteString(fmt.Sprintf("    %s %s\n",
			StyleGreen.Render(fmt.Sprintf("%-32s", e[0])),
			StyleDim.Render(e[1])))
	}
	return b.String()
}

// FormatShellWelcome renders the banner shown when the shell starts.
func FormatShellWelcome(info WelcomeInfo) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(StylePurple.Render("  turtle") + "\n")
	b.WriteString(StyleDim.Render("  ─────────────────────────────") + "\n")
	b.WriteString(StyleDim.Render("  Say what you want done. Every command is risk-classified, and the") + "\n")
	b.WriteString(StyleDim.Render("  host is observed before and after it runs.") + "\n\n")

	for _, g := range []exampleGroup{
		{"Try", [][]string{
			{"move terminal to left half", "window placement"},
			{"what's the system status", "uptime and disk"},
			{"monitor nginx", "matching processes"},
		}},
		{"Session", [][]string{
			{"history", "operations run so far"},
			{"help", "every supported phrasing"},
			{"exit", "leave the shell"},
		}},
	} {
		b.WriteString(renderExampleGroup(g))
	}

	b.WriteString("\n")
	if info.ConfirmCritical {
		b.WriteString("  " + StyleRed.Render("●") + StyleDim.Render(" critical operations ask for confirmation") + "\n")
	}
	if info.Assistant {
		b.WriteString("  " + StylePurple.Render("●") + StyleDim.Render(" conversation is answered by the local model") + "\n")
	}
	return b.String()
}

// FormatGoodbye renders the farewell line.
func FormatGoodbye(executed int) string {
	return Dim(fmt.Sprintf("Goodbye. %d operation%s recorded this session.", executed, plural(executed, "", "s"))) + "\n"
}

// FormatApprovalPrompt asks whether a high-impact command may run.
func FormatApprovalPrompt(sc risk.SafetyContext) string {
	return StyleRed.Render(fmt.Sprintf("%s on %s is %s risk.", sc.Operation, sc.Target, sc.Tier)) + " Proceed? [y/N]: "
}
