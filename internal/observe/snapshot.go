// Package observe captures point-in-time snapshots of the host: processes,
// windows, coarse resource usage and network reachability.
package observe

import "fmt"

// ProcessRecord is one row of the process table.
type ProcessRecord struct {
	PID      int
	Name     string
	CPU      float64 // percent
	MemoryMB int
	Status   string
}

// WindowRecord is one managed window and its geometry.
type WindowRecord struct {
	ID      string
	Title   string
	X       int
	Y       int
	Width   int
	Height  int
	Visible bool
}

// Resources is a coarse view of host load. CPU is an estimate derived from
// the one-minute load average, not a measured percentage.
type Resources struct {
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   float64
	LoadAverage   float64
}

// Network records basic reachability. Latency and connection count are
// optional and nil when unknown.
type Network struct {
	Connected         bool
	LatencyMs         *float64
	ActiveConnections *int
}

// Snapshot is the observable state of the host at one instant.
type Snapshot struct {
	Timestamp int64 // seconds since epoch
	Processes []ProcessRecord
	Windows   []WindowRecord
	Resources Resources
	Network   Network
}

// PIDs returns the set of process IDs in the snapshot.
func (s *Snapshot) PIDs() map[int]ProcessRecord {
	out := make(map[int]ProcessRecord, len(s.Processes))
	for _, p := range s.Processes {
		out[p.PID] = p
	}
	return out
}

// Window returns the window with the given id.
func (s *Snapshot) Window(id string) (WindowRecord, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowRecord{}, false
}

// Summary is a one-line description used in logs.
func (s *Snapshot) Summary() string {
	return fmt.Sprintf("%d processes, %d windows, cpu~%.0f%%, mem %.0f%%, net=%t",
		len(s.Processes), len(s.Windows), s.Resources.CPUPercent, s.Resources.MemoryPercent, s.Network.Connected)
}
