package inventory

import (
	"sync"

	"github.com/railtransit/reservation-engine/internal/models"
	"github.com/railtransit/reservation-engine/pkg/validator"
)

// Inventory tracks remaining seats per (service, travel date). Calendars are
// sparse: a date entry is materialized at full capacity on first valid access
// and never deleted. A malformed date never materializes an entry.
type Inventory struct {
	mu        sync.Mutex
	dates     *validator.DateValidator
	calendars map[string]*calendar
}

type calendar struct {
	capacity  int
	available map[string]int // travel date -> seats remaining
}

// New creates an empty seat inventory.
func New() *Inventory {
	return &Inventory{
		dates:     validator.NewDateValidator(),
		calendars: make(map[string]*calendar),
	}
}

// Available returns the remaining seats for the service on the given date,
// materializing the date at full capacity if it has not been seen.
func (inv *Inventory) Available(svc models.ServiceDescriptor, date string) (int, error) {
	if err := inv.dates.Validate(date); err != nil {
		return 0, err
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	cal := inv.calendarFor(svc)
	if _, ok := cal.available[date]; !ok {
		cal.available[date] = cal.capacity
	}
	return cal.available[date], nil
}

// Reserve atomically decrements the remaining seats by count if at least
// count seats remain. It returns false with no mutation when capacity is
// insufficient. An unseen date is synthesized at full capacity before the
// check is applied.
func (inv *Inventory) Reserve(svc models.ServiceDescriptor, date string, count int) (bool, error) {
	if err := inv.dates.Validate(date); err != nil {
		return false, err
	}
	if count <= 0 {
		return false, nil
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	cal := inv.calendarFor(svc)
	remaining, ok := cal.available[date]
	if !ok {
		remaining = cal.capacity
	}
	if remaining < count {
		// Still materialize the date so the observed state is consistent
		// with Available having been called.
		cal.available[date] = remaining
		return false, nil
	}
	cal.available[date] = remaining - count
	return true, nil
}

// Release credits count seats back to the date, clamped to the service
// capacity. The clamp protects against double-release inflating inventory
// past capacity. Releasing an unseen or malformed date is a no-op.
func (inv *Inventory) Release(svc models.ServiceDescriptor, date string, count int) {
	if inv.dates.Validate(date) != nil || count <= 0 {
		return
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	cal, ok := inv.calendars[svc.ID]
	if !ok {
		return
	}
	remaining, ok := cal.available[date]
	if !ok {
		return
	}
	remaining += count
	if remaining > cal.capacity {
		remaining = cal.capacity
	}
	cal.available[date] = remaining
}

// Calendar returns a copy of the materialized per-date availability for the
// service, for snapshot export. The result is nil if the service has never
// been touched.
func (inv *Inventory) Calendar(serviceID string) map[string]int {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	cal, ok := inv.calendars[serviceID]
	if !ok {
		return nil
	}
	out := make(map[string]int, len(cal.available))
	for date, seats := range cal.available {
		out[date] = seats
	}
	return out
}

// RestoreCalendar replaces the calendar for a service from snapshot data.
// Entries are clamped into [0, capacity] so a corrupted snapshot can never
// violate the inventory invariant.
func (inv *Inventory) RestoreCalendar(svc models.ServiceDescriptor, dates map[string]int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	cal := &calendar{capacity: svc.Capacity, available: make(map[string]int, len(dates))}
	for date, seats := range dates {
		if inv.dates.Validate(date) != nil {
			continue
		}
		if seats < 0 {
			seats = 0
		}
		if seats > svc.Capacity {
			seats = svc.Capacity
		}
		cal.available[date] = seats
	}
	inv.calendars[svc.ID] = cal
}

func (inv *Inventory) calendarFor(svc models.ServiceDescriptor) *calendar {
	cal, ok := inv.calendars[svc.ID]
	if !ok {
		cal = &calendar{capacity: svc.Capacity, available: make(map[string]int)}
		inv.calendars[svc.ID] = cal
	}
	return cal
}
