package engine

import (
	"github.com/railtransit/reservation-engine/internal/inventory"
	"github.com/railtransit/reservation-engine/internal/ledger"
	"github.com/railtransit/reservation-engine/internal/models"
	"github.com/railtransit/reservation-engine/internal/waitlist"
)

// ExportSnapshot returns the engine's durable state: every catalog service
// with its materialized seat calendar, every booking in insertion order and
// the PNR counter. Waitlist ordering is implicit in the booking order.
func (e *Engine) ExportSnapshot() models.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exportLocked()
}

func (e *Engine) exportLocked() models.Snapshot {
	snap := models.Snapshot{PNRCounter: e.pnrGen.Current()}
	for _, svc := range e.catalog.All() {
		snap.Services = append(snap.Services, models.ServiceState{
			Descriptor: svc,
			Calendar:   e.inventory.Calendar(svc.ID),
		})
	}
	snap.Bookings = e.ledger.All()
	return snap
}

// ImportSnapshot replaces the engine's collections from a loaded snapshot.
// Bookings re-enter the ledger in snapshot order and every booking with
// status Waitlist is re-enqueued in that same order, which is how rank
// ordering is reconstructed: ranks are re-derived from load order, not
// persisted. A record that fails to insert is skipped with a warning; one
// bad record never aborts the rest of the load. Catalog contents are not
// touched: the catalog is an external collaborator and the caller seeds it
// (snapshot stores return descriptors for that purpose).
func (e *Engine) ImportSnapshot(snap models.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inventory = inventory.New()
	e.ledger = ledger.New()
	e.queue = waitlist.New()

	for _, state := range snap.Services {
		if len(state.Calendar) == 0 {
			continue
		}
		e.inventory.RestoreCalendar(state.Descriptor, state.Calendar)
	}

	for _, booking := range snap.Bookings {
		if err := e.ledger.Create(booking); err != nil {
			e.logger.WithError(err).WithField("pnr", booking.PNR).Warn("skipping unloadable booking record")
			continue
		}
		if booking.Status == models.BookingStatusWaitlist {
			e.queue.Enqueue(booking)
		}
	}

	if err := e.pnrGen.Restore(snap.PNRCounter); err != nil {
		return err
	}
	return nil
}
