package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
	"github.com/turtlefleet/turtle/internal/risk"
)

// promptYesNoIO writes message and reads one answer. Only "y" and "yes"
// approve; anything else, including EOF, declines.
func promptYesNoIO(in io.Reader, out io.Writer, message string) bool {
	if out != nil {
		fmt.Fprint(out, message)
	}

	text, err := readPromptLine(in)
	if err != nil && text == "" {
		return false
	}

	text = strings.TrimSpace(strings.ToLower(text))
	return text == "y" || text == "yes"
}

// readPromptLine reads until either LF or CR so Enter works in normal and raw terminal modes.
func readPromptLine(in io.Reader) (string, error) {
	if in == nil {
		return "", io.EOF
	}

	var buf []byte
	var one [1]byte

	for {
		n, err := in.Read(one[:])
		if n > 0 {
			switch one[0] {
			case '\n', '\r':
				return string(buf), nil
			default:
				buf = append(buf, one[0])
			}
		}

		if err != nil {
			if err == io.EOF && len(buf) > 0 {
				return string(buf), nil
			}
			return string(buf), err
		}
	}
}

func turtleHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorRed).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorOrange).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	return t
}

// confirmForm builds the approval form for sc. The answer lands in result
// and defaults to no.
func confirmForm(sc risk.SafetyContext, result *bool) *huh.Form {
	desc := "Target: " + sc.Target
	if sc.HasRollback() {
		desc += "\nRollback: " + sc.RollbackPlan
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Run %s? It is %s risk.", sc.Operation, sc.Tier)).
				Description(desc).
				Affirmative("Run").
				Negative("Cancel").
				Value(result),
		),
	).WithTheme(turtleHuhTheme()).WithShowHelp(false)
}

// ConfirmOnTerminal asks for approval with a huh form on the controlling
// terminal.
func ConfirmOnTerminal(sc risk.SafetyContext) (bool, error) {
	var ok bool
	if err := confirmForm(sc, &ok).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
