package gate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtlefleet/turtle/internal/risk"
)

// Record is one successfully executed operation.
type Record struct {
	ID      uuid.UUID
	At      time.Time
	Context risk.SafetyContext
	Result  string
}

// History is the append-only ledger of executed operations. It lives only
// as long as the process. Reads are safe while a gate run is appending.
type History struct {
	mu      sync.RWMutex
	records []Record
}

// Append adds a record and returns it.
func (h *History) Append(sc risk.SafetyContext, result string, at time.Time) Record {
	rec := Record{ID: uuid.New(), At: at, Context: sc, Result: result}
	h.mu.Lock()
	h.records = append(h.records, rec)
	h.mu.Unlock()
	return rec
}

// Len returns the number of records.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.records)
}

// Entries returns a copy of the records, oldest first.
func (h *History) Entries() []Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}
