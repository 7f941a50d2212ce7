package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
)

// runShell starts the full-screen shell on a terminal and the line shell
// otherwise.
func runShell(ctx context.Context, app *App) error {
	session := NewSession(app)
	if !app.interactive() {
		return runLineShell(ctx, session, app.stdin(), app.stdout())
	}

	m := newShellModel(ctx, session)
	final, err := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(app.stdin()),
		tea.WithOutput(app.stdout()),
	).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running shell: %w", err)
	}
	if sm, ok := final.(shellModel); ok && sm.farewell != "" {
		fmt.Fprint(app.stdout(), sm.farewell)
	}
	return nil
}

// runLineShell reads one command per line until an exit word, EOF or ctx
// cancellation.
func runLineShell(ctx context.Context, s *Session, in io.Reader, out io.Writer) error {
	br := bufio.NewReader(in)
	fmt.Fprint(out, s.Welcome())

	for ctx.Err() == nil {
		fmt.Fprint(out, formatter.StylePurple.Render("turtle")+" "+formatter.Dim("❯")+" ")
		line, err := readPromptLine(br)
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				fmt.Fprint(out, "\n"+formatter.FormatGoodbye(s.app.Gate.History().Len()))
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		step := s.Plan(line)
		if step.Output != "" {
			fmt.Fprint(out, step.Output)
		}
		if step.Quit {
			return nil
		}
		if step.Command == nil {
			continue
		}
		approved := false
		if step.Confirm {
			approved = promptYesNoIO(br, out, step.Prompt)
		}
		fmt.Fprint(out, s.Run(ctx, *step.Command, approved))
	}
	return ctx.Err()
}
