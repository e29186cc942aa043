package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/railtransit/reservation-engine/internal/models"
)

var (
	// ErrNotFound indicates no booking exists for the given PNR
	ErrNotFound = errors.New("booking not found")

	// ErrInvalidTransition indicates a status change the lattice forbids
	ErrInvalidTransition = errors.New("invalid booking status transition")

	// ErrDuplicatePNR indicates a booking already exists for the given PNR
	ErrDuplicatePNR = errors.New("booking already exists for PNR")
)

// Ledger is the append-biased collection of booking records and the source
// of truth for fare, passenger manifest and status. Records are kept in
// insertion order; status moves only through the one-way lattice and a
// rejected transition leaves the record untouched.
type Ledger struct {
	mu      sync.Mutex
	byPNR   map[string]*models.Booking
	ordered []string
}

// New creates an empty booking ledger.
func New() *Ledger {
	return &Ledger{byPNR: make(map[string]*models.Booking)}
}

// Create inserts a new booking record. The PNR must come from the PNR
// generator; the ledger only rejects duplicates and unknown statuses.
func (l *Ledger) Create(booking models.Booking) error {
	if booking.PNR == "" {
		return fmt.Errorf("create booking: PNR is required")
	}
	if !booking.Status.IsValid() {
		return fmt.Errorf("create booking %s: unknown status %q", booking.PNR, booking.Status)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byPNR[booking.PNR]; exists {
		return fmt.Errorf("create booking %s: %w", booking.PNR, ErrDuplicatePNR)
	}

	stored := booking
	stored.Passengers = append([]models.Passenger(nil), booking.Passengers...)
	l.byPNR[booking.PNR] = &stored
	l.ordered = append(l.ordered, booking.PNR)
	return nil
}

// Find returns a copy of the booking for the given PNR.
func (l *Ledger) Find(pnr string) (models.Booking, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.byPNR[pnr]
	if !ok {
		return models.Booking{}, fmt.Errorf("booking %s: %w", pnr, ErrNotFound)
	}
	return copyBooking(stored), nil
}

// SetStatus moves the booking through the status lattice. Attempts to move a
// Cancelled record, or to set Waitlist on an existing record, are rejected
// with ErrInvalidTransition and leave the record unchanged.
func (l *Ledger) SetStatus(pnr string, next models.BookingStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored, ok := l.byPNR[pnr]
	if !ok {
		return fmt.Errorf("booking %s: %w", pnr, ErrNotFound)
	}
	if !stored.Status.CanTransitionTo(next) {
		return fmt.Errorf("booking %s: %s -> %s: %w", pnr, stored.Status, next, ErrInvalidTransition)
	}
	stored.Status = next
	return nil
}

// All returns copies of every booking in insertion order, for reporting and
// snapshot export.
func (l *Ledger) All() []models.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Booking, 0, len(l.ordered))
	for _, pnr := range l.ordered {
		out = append(out, copyBooking(l.byPNR[pnr]))
	}
	return out
}

// Len returns the number of booking records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ordered)
}

func copyBooking(b *models.Booking) models.Booking {
	out := *b
	out.Passengers = append([]models.Passenger(nil), b.Passengers...)
	return out
}
