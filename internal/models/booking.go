package models

// BookingStatus represents the lifecycle status of a booking.
//
// The status lattice is one-way: Waitlist -> Confirmed, Waitlist -> Cancelled,
// Confirmed -> Cancelled. Cancelled is terminal and nothing transitions back
// to Waitlist after creation.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusWaitlist  BookingStatus = "Waitlist"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// IsValid reports whether s is one of the known booking statuses.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusWaitlist, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status lattice permits moving from s to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusWaitlist:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		// Cancelled is terminal.
		return false
	}
}

// Booking represents a passenger reservation on a scheduled service.
// The PNR is issued by the PNR generator at creation time, never by callers.
type Booking struct {
	PNR        string        `json:"pnr" db:"pnr"`
	ServiceID  string        `json:"service_id" db:"service_id"`
	TravelDate string        `json:"travel_date" db:"travel_date"`
	Passengers []Passenger   `json:"passengers" db:"-"`
	TotalFare  float64       `json:"total_fare" db:"total_fare"`
	Status     BookingStatus `json:"status" db:"status"`
}

// SeatCount returns the number of seats this booking occupies.
func (b *Booking) SeatCount() int {
	return len(b.Passengers)
}
