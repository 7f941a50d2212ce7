// Package testutil holds fixtures shared by package tests: snapshot
// builders and a scripted host.
package testutil

import (
	"fmt"
	"strings"

	"github.com/turtlefleet/turtle/internal/observe"
	"github.com/turtlefleet/turtle/internal/shell"
)

// Snapshot options
type SnapshotOption func(*observe.Snapshot)

// WithProcesses adds one process per pid, named "proc<pid>".
func WithProcesses(pids ...int) SnapshotOption {
	return func(s *observe.Snapshot) {
		for _, pid := range pids {
			s.Processes = append(s.Processes, observe.ProcessRecord{PID: pid, Name: fmt.Sprintf("proc%d", pid), Status: "S"})
		}
	}
}

// WithProcess adds a named process.
func WithProcess(pid int, name string, cpu float64) SnapshotOption {
	return func(s *observe.Snapshot) {
		s.Processes = append(s.Processes, observe.ProcessRecord{PID: pid, Name: name, CPU: cpu, Status: "S"})
	}
}

// WithWindow adds a visible window.
func WithWindow(id string, x, y, w, h int) SnapshotOption {
	return func(s *observe.Snapshot) {
		s.Windows = append(s.Windows, observe.WindowRecord{ID: id, Title: "window " + id, X: x, Y: y, Width: w, Height: h, Visible: true})
	}
}

// WithCPU sets the estimated CPU usage.
func WithCPU(percent float64) SnapshotOption {
	return func(s *observe.Snapshot) {
		s.Resources.CPUPercent = percent
		s.Resources.LoadAverage = percent / 25
	}
}

// NewSnapshot builds a snapshot of a connected, idle host.
func NewSnapshot(opts ...SnapshotOption) *observe.Snapshot {
	s := &observe.Snapshot{
		Timestamp: 1767225600,
		Network:   observe.Network{Connected: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PSLine renders one row of `ps aux --no-headers` output.
func PSLine(pid int, cpu float64, command string) string {
	return fmt.Sprintf("user %d %.1f 0.5 10000 20480 ? S 09:00 0:01 %s\n", pid, cpu, command)
}

// PSTable joins rows into one ps listing.
func PSTable(rows ...string) string {
	return strings.Join(rows, "")
}

// PSScripted is a ps response listing rows.
func PSScripted(rows ...string) shell.Scripted {
	return shell.Scripted{Stdout: PSTable(rows...)}
}

// Host returns a Recorder scripted as a quiet host: low load, 42% disk,
// no network and one connected monitor. Process listings are left to the
// caller, since most tests care about them.
func Host() *shell.Recorder {
	return shell.NewRecorder().
		On("cat", shell.Scripted{Stdout: "0.40 0.30 0.20 1/100 4242\n"}).
		On("df", shell.Scripted{Stdout: "Filesystem 1024-blocks Used Available Capacity Mounted on\n/dev/sda1 100 42 58 42% /\n"}).
		On("ping", shell.Scripted{ExitCode: 1}).
		On("xrandr", shell.Scripted{Stdout: "Screen 0: minimum 8 x 8\nHDMI-1 connected 2560x1440+0+0\nDP-1 disconnected\n"})
}
