package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtlefleet/turtle/internal/shell"
)

func TestLineShell_ApprovedCriticalCommand(t *testing.T) {
	rec := hostRecorder().
		On("ps", shell.Scripted{Stdout: psInit + psFirefox}, shell.Scripted{Stdout: psInit}).
		On("pkill", shell.Scripted{})
	env := newTestEnv(t, rec, true)

	var out bytes.Buffer
	in := strings.NewReader("kill firefox\ny\n\nhistory\nexit\nshow monitors\n")
	require.NoError(t, runLineShell(context.Background(), NewSession(env.app), in, &out))

	got := out.String()
	assert.Contains(t, got, "critical operations ask for confirmation")
	assert.Contains(t, got, "Proceed? [y/N]")
	assert.Contains(t, got, "Stopped: firefox")
	assert.Contains(t, got, "HISTORY")
	assert.Contains(t, got, "1 operation recorded")
	assert.Empty(t, rec.CallsTo("xrandr"), "nothing runs after exit")
}

func TestLineShell_DeclinedCriticalCommand(t *testing.T) {
	rec := hostRecorder().On("ps", shell.Scripted{Stdout: psInit})
	env := newTestEnv(t, rec, true)

	var out bytes.Buffer
	in := strings.NewReader("kill firefox\nn\nshow monitors\n")
	require.NoError(t, runLineShell(context.Background(), NewSession(env.app), in, &out))

	got := out.String()
	assert.Contains(t, got, "Cancelled: process.kill on firefox was not approved.")
	assert.Contains(t, got, "HDMI-1 connected")
	assert.Contains(t, got, "Goodbye.", "EOF ends the shell politely")
	assert.Empty(t, rec.CallsTo("pkill"))
	assert.Equal(t, 1, env.app.Gate.History().Len())
}

func TestLineShell_StopsOnCancelledContext(t *testing.T) {
	env := newTestEnv(t, hostRecorder().On("ps", shell.Scripted{Stdout: psInit}), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runLineShell(ctx, NewSession(env.app), strings.NewReader("show monitors\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, env.rec.Calls())
}

func TestRunShell_NonInteractiveUsesLineShell(t *testing.T) {
	env := newTestEnv(t, hostRecorder().On("ps", shell.Scripted{Stdout: psInit}), false)
	env.app.In = strings.NewReader("show monitors\nquit\n")

	require.NoError(t, runShell(context.Background(), env.app))
	assert.Contains(t, env.out.String(), "HDMI-1 connected")
}

// ── full-screen model ───────────────────────────────────────────────────────

func submit(t *testing.T, m shellModel, text string) (shellModel, tea.Cmd) {
	t.Helper()
	m.input.SetValue(text)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(shellModel), cmd
}

// finish runs the pending gate command and feeds its result back.
func finish(t *testing.T, m shellModel, cmd tea.Cmd) shellModel {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(runFinishedMsg)
	require.True(t, ok, "expected a run result")
	next, _ := m.Update(msg)
	return next.(shellModel)
}

func transcript(m shellModel) string {
	return strings.Join(m.transcript, "\n")
}

func TestShellModel_RunsCommandsOffTheUpdateLoop(t *testing.T) {
	env := newTestEnv(t, hostRecorder().On("ps", shell.Scripted{Stdout: psInit}), false)
	m := newShellModel(context.Background(), NewSession(env.app))
	assert.Contains(t, transcript(m), "turtle")

	m, cmd := submit(t, m, "show monitors")
	assert.Equal(t, modeRunning, m.mode)
	assert.Empty(t, env.rec.CallsTo("xrandr"), "nothing runs inside Update")
	assert.Contains(t, m.View(), "running…")

	next, ignored := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Nil(t, ignored)
	assert.Empty(t, next.(shellModel).input.Value(), "input is ignored while running")

	m = finish(t, m, cmd)
	assert.Equal(t, modePrompt, m.mode)
	assert.Contains(t, transcript(m), "❯ show monitors")
	assert.Contains(t, transcript(m), "HDMI-1 connected")
	assert.Len(t, env.rec.CallsTo("xrandr"), 1)
}

func TestShellModel_ConfirmFlow(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		rec := hostRecorder().
			On("ps", shell.Scripted{Stdout: psInit + psFirefox}, shell.Scripted{Stdout: psInit}).
			On("pkill", shell.Scripted{})
		env := newTestEnv(t, rec, true)
		m := newShellModel(context.Background(), NewSession(env.app))

		m, cmd := submit(t, m, "kill firefox")
		assert.Nil(t, cmd)
		assert.Equal(t, modeConfirm, m.mode)
		assert.Contains(t, transcript(m), "Proceed? [y/N]")
		assert.Contains(t, m.View(), "confirm (y/n)")

		m, cmd = submit(t, m, "y")
		m = finish(t, m, cmd)
		assert.Contains(t, transcript(m), "Stopped: firefox")
		assert.Len(t, rec.CallsTo("pkill"), 1)
	})

	t.Run("escape declines", func(t *testing.T) {
		rec := hostRecorder().On("ps", shell.Scripted{Stdout: psInit})
		env := newTestEnv(t, rec, true)
		m := newShellModel(context.Background(), NewSession(env.app))

		m, _ = submit(t, m, "kill firefox")
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m = finish(t, next.(shellModel), cmd)
		assert.Contains(t, transcript(m), "was not approved")
		assert.Empty(t, rec.CallsTo("pkill"))
		assert.Equal(t, modePrompt, m.mode)
	})
}

func TestShellModel_ExitAndQuitKeys(t *testing.T) {
	env := newTestEnv(t, hostRecorder(), false)

	m := newShellModel(context.Background(), NewSession(env.app))
	m, cmd := submit(t, m, "goodbye")
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.True(t, m.quitting)
	assert.Contains(t, m.farewell, "Goodbye.")
	assert.Empty(t, m.View())

	m = newShellModel(context.Background(), NewSession(env.app))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, isQuit = cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Contains(t, next.(shellModel).farewell, "0 operations recorded")
}

func TestShellModel_InputRecall(t *testing.T) {
	env := newTestEnv(t, hostRecorder().On("ps", shell.Scripted{Stdout: psInit}), false)
	m := newShellModel(context.Background(), NewSession(env.app))

	m, cmd := submit(t, m, "show monitors")
	m = finish(t, m, cmd)
	m, _ = submit(t, m, "history")
	m, _ = submit(t, m, "history")
	require.Equal(t, []string{"show monitors", "history"}, m.history)

	up := func(m shellModel) shellModel {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
		return next.(shellModel)
	}
	down := func(m shellModel) shellModel {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
		return next.(shellModel)
	}

	m = up(m)
	assert.Equal(t, "history", m.input.Value())
	m = up(m)
	assert.Equal(t, "show monitors", m.input.Value())
	m = up(m)
	assert.Equal(t, "show monitors", m.input.Value())
	m = down(m)
	assert.Equal(t, "history", m.input.Value())
	m = down(m)
	assert.Empty(t, m.input.Value())
}

func TestShellModel_ResizeAndClear(t *testing.T) {
	env := newTestEnv(t, hostRecorder(), false)
	m := newShellModel(context.Background(), NewSession(env.app))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(shellModel)
	assert.Equal(t, 120, m.viewport.Width)
	assert.Equal(t, 38, m.viewport.Height)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = next.(shellModel)
	assert.Empty(t, m.transcript)
}
