package cli

import (
	"context"
	"strings"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
	"github.com/turtlefleet/turtle/internal/gate"
	"github.com/turtlefleet/turtle/internal/intent"
)

var exitWords = map[string]bool{
	"exit":    true,
	"quit":    true,
	"bye":     true,
	"goodbye": true,
	"done":    true,
}

// Step is what the shell should do with one input line.
type Step struct {
	// Output is shown immediately.
	Output string
	Quit   bool
	// Command, when set, is run through the gate next.
	Command *intent.ParsedCommand
	// Confirm asks the user before Command runs; Prompt is the question.
	Confirm bool
	Prompt  string
}

// Session turns shell input into gated runs. Both shell front ends share it.
type Session struct {
	app *App
}

// NewSession returns a session over app.
func NewSession(app *App) *Session {
	return &Session{app: app}
}

// Plan decides what a line means without running anything.
func (s *Session) Plan(line string) Step {
	line = strings.TrimSpace(line)
	if line == "" {
		return Step{}
	}
	word := strings.ToLower(line)
	if exitWords[word] {
		return Step{Quit: true, Output: formatter.FormatGoodbye(s.app.Gate.History().Len())}
	}
	if word == "history" {
		return Step{Output: formatter.FormatHistory(s.app.Gate.History().Entries())}
	}

	cmd := s.app.Parser.Parse(line)
	step := Step{Command: &cmd}
	if s.app.Gate.RequiresApproval(cmd) {
		step.Confirm = true
		step.Prompt = formatter.FormatApprovalPrompt(gate.Contextualize(cmd))
	}
	return step
}

// Run executes cmd through the gate and renders the outcome. A declined or
// failed run renders its failure; the session carries on either way.
func (s *Session) Run(ctx context.Context, cmd intent.ParsedCommand, approved bool) string {
	if approved {
		ctx = gate.WithApproval(ctx)
	}
	out, err := s.app.Gate.Run(ctx, cmd)
	if err != nil {
		return formatter.FormatFailure(out, err)
	}
	return formatter.FormatOutcome(out) + explainAnomalies(ctx, s.app, out)
}

// Welcome is the banner shown when a shell starts.
func (s *Session) Welcome() string {
	return formatter.FormatShellWelcome(formatter.WelcomeInfo{
		ConfirmCritical: s.app.ConfirmCritical,
		Assistant:       s.app.Explainer != nil,
	})
}
