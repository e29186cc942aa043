package models

// ServiceState is a service descriptor together with its per-date seat
// calendar as of snapshot time.
type ServiceState struct {
	Descriptor ServiceDescriptor `json:"descriptor"`
	Calendar   map[string]int    `json:"calendar"` // travel date -> available seats
}

// Snapshot is the durable state exported by the engine after every successful
// mutating operation. Waitlist ordering is not persisted explicitly: it is
// re-derived on import by re-enqueueing bookings with status Waitlist in
// Bookings slice order, so stores must preserve insertion order exactly.
type Snapshot struct {
	Services   []ServiceState `json:"services"`
	Bookings   []Booking      `json:"bookings"`
	PNRCounter uint64         `json:"pnr_counter"`
}
