package waitlist

import (
	"sync"

	"github.com/railtransit/reservation-engine/internal/models"
)

// CommitResult is the outcome of attempting to commit seats for one entry
// during a promotion pass.
type CommitResult int

const (
	// CommitPromoted means seats were reserved and the booking confirmed;
	// the entry leaves the queue.
	CommitPromoted CommitResult = iota

	// CommitRetained means the commit could not complete; the entry stays
	// in the queue unmodified, in its original relative order.
	CommitRetained

	// CommitDropped means the referenced booking no longer qualifies for
	// promotion (missing or no longer waitlisted); the stale entry is
	// discarded without consuming seats.
	CommitDropped
)

// CommitFunc commits seats for a promotable entry: reserve the seats in
// inventory and confirm the referenced booking. It must leave no partial
// state behind when it reports CommitRetained.
type CommitFunc func(entry models.WaitlistEntry) CommitResult

// Queue holds FIFO-ranked deferred requests per (service, travel date) key.
// Rank is assigned from the current last entry at enqueue time and never
// reassigned: promotions remove entries but never renumber survivors.
type Queue struct {
	mu     sync.Mutex
	queues map[string][]models.WaitlistEntry
}

// New creates an empty waitlist queue.
func New() *Queue {
	return &Queue{queues: make(map[string][]models.WaitlistEntry)}
}

func key(serviceID, date string) string {
	return serviceID + "|" + date
}

// Enqueue appends a deferred booking to its (service, date) queue and returns
// the assigned rank. Rank is lastRank+1 computed from the current last entry,
// not from queue length, so a re-enqueue after partial promotion still yields
// a monotonically increasing rank within the key.
func (q *Queue) Enqueue(booking models.Booking) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := key(booking.ServiceID, booking.TravelDate)
	rank := 1
	if entries := q.queues[k]; len(entries) > 0 {
		rank = entries[len(entries)-1].Rank + 1
	}
	q.queues[k] = append(q.queues[k], models.WaitlistEntry{
		PNR:        booking.PNR,
		ServiceID:  booking.ServiceID,
		TravelDate: booking.TravelDate,
		NumSeats:   booking.SeatCount(),
		Rank:       rank,
	})
	return rank
}

// Promote runs a single pass over the queue for the key in rank order,
// committing every entry that fits within availableSeats via commit. An entry
// larger than the remaining budget is skipped but retained, and a later,
// smaller entry may still be promoted with the remaining capacity: promotion
// is FIFO-fair, not size-fair, with no partial promotion and no reordering.
// The queue for the key is replaced with exactly the retained entries,
// keeping their original ranks. It returns the PNRs promoted, in order.
func (q *Queue) Promote(serviceID, date string, availableSeats int, commit CommitFunc) []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := key(serviceID, date)
	entries := q.queues[k]
	if len(entries) == 0 || availableSeats <= 0 {
		return nil
	}

	var promoted []string
	retained := entries[:0:0]
	for _, entry := range entries {
		if availableSeats < entry.NumSeats {
			retained = append(retained, entry)
			continue
		}
		switch commit(entry) {
		case CommitPromoted:
			availableSeats -= entry.NumSeats
			promoted = append(promoted, entry.PNR)
		case CommitDropped:
			// discard stale entry
		default:
			retained = append(retained, entry)
		}
	}
	q.queues[k] = retained
	return promoted
}

// Remove drops the entry for the given PNR from its (service, date) queue,
// without renumbering the survivors. It reports whether an entry was removed.
func (q *Queue) Remove(serviceID, date, pnr string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	k := key(serviceID, date)
	entries := q.queues[k]
	for i, entry := range entries {
		if entry.PNR == pnr {
			q.queues[k] = append(entries[:i:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// Entries returns a copy of the queue for the key in rank order.
func (q *Queue) Entries(serviceID, date string) []models.WaitlistEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries := q.queues[key(serviceID, date)]
	return append([]models.WaitlistEntry(nil), entries...)
}

// Len returns the number of entries waiting under the key.
func (q *Queue) Len(serviceID, date string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[key(serviceID, date)])
}
