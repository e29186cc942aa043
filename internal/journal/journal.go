package journal

import (
	"sync"

	"github.com/railtransit/reservation-engine/internal/models"
)

// Writer appends attempted state transitions to the transaction journal.
// The journal is audit-only: the engine writes it as a side effect and never
// reads it back into live state, so a failed append must never abort the
// operation being journaled.
type Writer interface {
	Append(entry models.JournalEntry) error
}

// Recorder is an in-memory Writer that keeps entries in append order, used
// by tests and by engines running without a durable journal.
type Recorder struct {
	mu      sync.Mutex
	entries []models.JournalEntry
}

// NewRecorder creates an empty in-memory journal.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Append records the entry.
func (r *Recorder) Append(entry models.JournalEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of all recorded entries in append order.
func (r *Recorder) Entries() []models.JournalEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.JournalEntry(nil), r.entries...)
}

// ByPNR returns recorded entries for one PNR in append order.
func (r *Recorder) ByPNR(pnr string) []models.JournalEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.JournalEntry
	for _, entry := range r.entries {
		if entry.PNR == pnr {
			out = append(out, entry)
		}
	}
	return out
}
