package models

// WaitlistEntry is a deferred booking request waiting for freed capacity.
// It references its ledger record by PNR and never owns it. Rank is assigned
// at enqueue time and is never reassigned: surviving entries keep their
// original rank when earlier entries are promoted or removed, so rank is a
// stable tie-break rather than a live queue position.
type WaitlistEntry struct {
	PNR        string `json:"pnr"`
	ServiceID  string `json:"service_id"`
	TravelDate string `json:"travel_date"`
	NumSeats   int    `json:"num_seats"`
	Rank       int    `json:"rank"`
}
