package teatest

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

type echoMsg string

// lineModel collects typed runes and echoes each submitted line through a Cmd.
type lineModel struct {
	buf    strings.Builder
	lines  []string
	width  int
	closed bool
}

func (m *lineModel) Init() tea.Cmd { return nil }

func (m *lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case echoMsg:
		m.lines = append(m.lines, string(msg))
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyRunes:
			m.buf.WriteString(string(msg.Runes))
		case tea.KeyEnter:
			line := m.buf.String()
			m.buf.Reset()
			if line == "quit" {
				return m, tea.Quit
			}
			return m, tea.Batch(
				func() tea.Msg { return echoMsg(line) },
				func() tea.Msg { time.Sleep(time.Second); return echoMsg("late") },
			)
		}
	}
	return m, nil
}

func (m *lineModel) View() string { return strings.Join(m.lines, "\n") }

func TestDriver(t *testing.T) {
	m := &lineModel{}
	d := New(t, m, WithSize(80, 24), WithCmdTimeout(20*time.Millisecond))
	assert.Equal(t, 80, m.width)

	d.Submit("hello")
	d.Submit("world")
	assert.Equal(t, "hello\nworld", d.View(), "slow Cmds are abandoned")
	assert.Len(t, d.Messages, 2)

	d.Submit("quit")
	assert.True(t, d.Quitting)
	d.Submit("ignored")
	assert.Equal(t, "hello\nworld", d.View())
}

func TestIsCursorBlink(t *testing.T) {
	type initialBlinkMsg struct{}
	assert.True(t, isCursorBlink(initialBlinkMsg{}))
	assert.False(t, isCursorBlink(echoMsg("x")))
}
