package cli

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turtlefleet/turtle/internal/cli/formatter"
	"github.com/turtlefleet/turtle/internal/intent"
)

// shellMode tracks which interaction mode the shell is in.
type shellMode int

const (
	modePrompt  shellMode = iota // Normal command input.
	modeConfirm                  // Awaiting y/n for a critical command.
	modeRunning                  // A gated run is in flight.
)

type shellKeyMap struct {
	Quit     key.Binding
	Submit   key.Binding
	Prev     key.Binding
	Next     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Clear    key.Binding
}

var shellKeys = shellKeyMap{
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Prev:     key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous input")),
	Next:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next input")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
	Clear:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
}

// runFinishedMsg carries the rendered outcome of a gated run.
type runFinishedMsg struct {
	output string
}

// shellModel is the bubbletea Model for the full-screen shell.
type shellModel struct {
	input    textinput.Model
	viewport viewport.Model
	keys     shellKeyMap

	ctx        context.Context
	session    *Session
	mode       shellMode
	pending    *intent.ParsedCommand
	transcript []string

	// input recall for this session only
	history    []string
	historyIdx int

	farewell string
	quitting bool
}

func newShellModel(ctx context.Context, s *Session) shellModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = ""
	ti.CharLimit = 500
	ti.Placeholder = "what should I do?"

	m := shellModel{
		input:    ti,
		viewport: viewport.New(80, 20),
		keys:     shellKeys,
		ctx:      ctx,
		session:  s,
	}
	m.appendOutput(s.Welcome())
	return m
}

func (m shellModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-2, 1)
		m.input.Width = max(msg.Width-len("turtle ❯ ")-1, 10)
		m.viewport.GotoBottom()
		return m, nil

	case runFinishedMsg:
		m.mode = modePrompt
		m.pending = nil
		m.appendOutput(msg.output)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.farewell = formatter.FormatGoodbye(m.session.app.Gate.History().Len())
			return m, tea.Quit
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keys.Clear):
			m.transcript = nil
			m.viewport.SetContent("")
			return m, nil
		}

		switch m.mode {
		case modeRunning:
			return m, nil
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updatePrompt(msg)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) View() string {
	if m.quitting {
		return ""
	}
	return m.viewport.View() + "\n" + m.promptPrefix() + m.input.View()
}

func (m shellModel) promptPrefix() string {
	switch m.mode {
	case modeConfirm:
		return formatter.StyleYellow.Render("confirm (y/n)") + " " + formatter.Dim("❯") + " "
	case modeRunning:
		return formatter.Dim("running… ")
	default:
		return formatter.StylePurple.Render("turtle") + " " + formatter.Dim("❯") + " "
	}
}

func (m shellModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		input := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		if input == "" {
			return m, nil
		}
		m.addHistory(input)
		m.appendOutput(formatter.Dim("❯ ") + input + "\n")

		step := m.session.Plan(input)
		if step.Output != "" {
			m.appendOutput(step.Output)
		}
		if step.Quit {
			m.quitting = true
			m.farewell = step.Output
			return m, tea.Quit
		}
		if step.Command == nil {
			return m, nil
		}
		if step.Confirm {
			m.mode = modeConfirm
			m.pending = step.Command
			m.appendOutput(step.Prompt + "\n")
			return m, nil
		}
		return m.startRun(*step.Command, false)

	case key.Matches(msg, m.keys.Prev):
		if m.historyIdx > 0 {
			m.historyIdx--
			m.input.SetValue(m.history[m.historyIdx])
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if m.historyIdx < len(m.history)-1 {
			m.historyIdx++
			m.input.SetValue(m.history[m.historyIdx])
			m.input.CursorEnd()
		} else {
			m.historyIdx = len(m.history)
			m.input.Reset()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m shellModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		m.input.SetValue("n")
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	}
	if !key.Matches(msg, m.keys.Submit) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	answer := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.input.Reset()
	approved := answer == "y" || answer == "yes"
	m.appendOutput(formatter.Dim("❯ "+answer) + "\n")
	return m.startRun(*m.pending, approved)
}

// startRun moves to running mode and runs cmd off the update loop. Input is
// ignored until the run finishes, so the gate never sees concurrent runs.
func (m shellModel) startRun(cmd intent.ParsedCommand, approved bool) (tea.Model, tea.Cmd) {
	m.mode = modeRunning
	m.pending = &cmd
	ctx, s := m.ctx, m.session
	return m, func() tea.Msg {
		return runFinishedMsg{output: s.Run(ctx, cmd, approved)}
	}
}

func (m *shellModel) appendOutput(text string) {
	m.transcript = append(m.transcript, strings.TrimRight(text, "\n"))
	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m *shellModel) addHistory(input string) {
	if n := len(m.history); n == 0 || m.history[n-1] != input {
		m.history = append(m.history, input)
	}
	m.historyIdx = len(m.history)
}
