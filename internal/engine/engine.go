package engine

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/railtransit/reservation-engine/internal/catalog"
	"github.com/railtransit/reservation-engine/internal/inventory"
	"github.com/railtransit/reservation-engine/internal/journal"
	"github.com/railtransit/reservation-engine/internal/ledger"
	"github.com/railtransit/reservation-engine/internal/models"
	"github.com/railtransit/reservation-engine/internal/payment"
	"github.com/railtransit/reservation-engine/internal/pnr"
	"github.com/railtransit/reservation-engine/internal/waitlist"
	"github.com/railtransit/reservation-engine/pkg/validator"
)

var (
	// ErrInvalidDate indicates the travel date failed format validation
	ErrInvalidDate = errors.New("invalid travel date")

	// ErrUnknownService indicates the catalog could not resolve the service
	ErrUnknownService = errors.New("unknown service")

	// ErrNotFound indicates no booking exists for the PNR
	ErrNotFound = errors.New("booking not found")

	// ErrAlreadyCancelled indicates the booking is already cancelled
	ErrAlreadyCancelled = errors.New("booking is already cancelled")

	// ErrPaymentDeclined indicates the payment gate refused the charge
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrNoPassengers indicates a booking request without passengers
	ErrNoPassengers = errors.New("at least one passenger is required")

	// ErrTooManyPassengers indicates the group exceeds the per-booking limit
	ErrTooManyPassengers = errors.New("too many passengers in one booking")
)

// Directory is the slice of the catalog collaborator the engine depends on:
// descriptor lookup for request validation and enumeration for snapshots.
type Directory interface {
	catalog.Resolver
	All() []models.ServiceDescriptor
}

// SnapshotStore persists engine snapshots. Save is called synchronously after
// every successful mutating operation.
type SnapshotStore interface {
	Save(snapshot models.Snapshot) error
}

// Config tunes engine policy knobs.
type Config struct {
	// MaxGroupSize caps passengers per booking (legacy limit 6).
	MaxGroupSize int

	// ConfirmedRefundRate is the refund fraction for cancelling a
	// confirmed booking (legacy 0.8).
	ConfirmedRefundRate float64

	// WaitlistRefundRate is the refund fraction for cancelling a
	// waitlisted booking (legacy 1.0).
	WaitlistRefundRate float64
}

// DefaultConfig returns the legacy policy values.
func DefaultConfig() Config {
	return Config{
		MaxGroupSize:        6,
		ConfirmedRefundRate: 0.8,
		WaitlistRefundRate:  1.0,
	}
}

// BookResult reports the outcome of a successful booking request.
type BookResult struct {
	PNR          string
	Status       models.BookingStatus
	TotalFare    float64
	WaitlistRank int // zero unless Status is Waitlist
}

// CancelResult reports the outcome of a successful cancellation.
type CancelResult struct {
	RefundAmount float64
	Promoted     []string // PNRs confirmed by the promotion pass, in rank order
}

// Engine orchestrates the seat inventory, booking ledger, waitlist queue and
// PNR generator behind a single mutex: at most one Book, Cancel or promotion
// call executes at a time against an engine instance, which is what keeps the
// check-then-act on seat capacity race free.
type Engine struct {
	mu sync.Mutex

	catalog Directory
	gateway payment.Gateway
	journal journal.Writer
	store   SnapshotStore
	pnrGen  *pnr.Generator
	config  Config
	logger  *logrus.Logger

	dates     *validator.DateValidator
	inventory *inventory.Inventory
	ledger    *ledger.Ledger
	queue     *waitlist.Queue
}

// New creates a reservation engine. The engine owns its collections; callers
// interact with inventory, ledger and waitlist only through engine
// operations. store may be nil for a purely in-memory engine.
func New(
	directory Directory,
	gateway payment.Gateway,
	journalWriter journal.Writer,
	pnrGen *pnr.Generator,
	store SnapshotStore,
	config Config,
	logger *logrus.Logger,
) *Engine {
	if config.MaxGroupSize <= 0 {
		config.MaxGroupSize = DefaultConfig().MaxGroupSize
	}
	return &Engine{
		catalog:   directory,
		gateway:   gateway,
		journal:   journalWriter,
		store:     store,
		pnrGen:    pnrGen,
		config:    config,
		logger:    logger,
		dates:     validator.NewDateValidator(),
		inventory: inventory.New(),
		ledger:    ledger.New(),
		queue:     waitlist.New(),
	}
}

// Book processes a booking request for the service on the travel date.
//
// Passengers pay the full fare up front even when the request is deferred to
// the waitlist. When the payment gate declines, no ledger record is created;
// the already issued PNR is consumed and orphaned, which matches the legacy
// behavior of journaling the failed attempt under that PNR.
func (e *Engine) Book(serviceID, date string, passengers []models.Passenger) (BookResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.dates.Validate(date); err != nil {
		return BookResult{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	svc, err := e.catalog.Resolve(serviceID)
	if err != nil {
		return BookResult{}, fmt.Errorf("service %s: %w", serviceID, ErrUnknownService)
	}

	if err := e.validatePassengers(passengers); err != nil {
		return BookResult{}, err
	}

	fare := svc.BaseFare * float64(len(passengers))

	pnrNumber, err := e.pnrGen.Next()
	if err != nil {
		return BookResult{}, fmt.Errorf("issue PNR: %w", err)
	}

	e.appendJournal(pnrNumber, models.JournalActionBookingAttempt, models.JournalOutcomePendingPayment)

	available, err := e.inventory.Available(svc, date)
	if err != nil {
		return BookResult{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	status := models.BookingStatusWaitlist
	if available >= len(passengers) {
		status = models.BookingStatusConfirmed
	}

	if !e.gateway.Charge(fare) {
		e.appendJournal(pnrNumber, models.JournalActionPaymentFailed, models.JournalOutcomeRolledBack)
		return BookResult{}, fmt.Errorf("booking %s: %w", pnrNumber, ErrPaymentDeclined)
	}

	booking := models.Booking{
		PNR:        pnrNumber,
		ServiceID:  svc.ID,
		TravelDate: date,
		Passengers: passengers,
		TotalFare:  fare,
		Status:     status,
	}

	result := BookResult{PNR: pnrNumber, Status: status, TotalFare: fare}

	if status == models.BookingStatusConfirmed {
		if ok, err := e.inventory.Reserve(svc, date, len(passengers)); err != nil || !ok {
			// Cannot happen while the engine mutex is held; refuse to
			// commit a record the inventory did not back.
			e.appendJournal(pnrNumber, models.JournalActionPaymentFailed, models.JournalOutcomeRolledBack)
			e.gateway.Refund(fare)
			return BookResult{}, fmt.Errorf("booking %s: inventory reserve failed after capacity check", pnrNumber)
		}
		if err := e.ledger.Create(booking); err != nil {
			return BookResult{}, fmt.Errorf("booking %s: %w", pnrNumber, err)
		}
		e.appendJournal(pnrNumber, models.JournalActionPaymentSuccess, models.JournalOutcomeCommitted)
	} else {
		if err := e.ledger.Create(booking); err != nil {
			return BookResult{}, fmt.Errorf("booking %s: %w", pnrNumber, err)
		}
		result.WaitlistRank = e.queue.Enqueue(booking)
		e.appendJournal(pnrNumber, models.JournalActionPaymentSuccess, models.JournalOutcomeWaitlisted)
	}

	e.logger.WithFields(logrus.Fields{
		"pnr":     pnrNumber,
		"service": svc.ID,
		"date":    date,
		"seats":   len(passengers),
		"status":  status,
	}).Info("booking recorded")

	e.persistLocked()
	return result, nil
}

// Cancel cancels the booking for the PNR. Cancelling a confirmed booking
// releases its seats, runs the promotion pass with the freshly updated
// availability and refunds at the confirmed rate. Cancelling a waitlisted
// booking removes its queue entry and refunds in full. Refunds are
// fire-and-forget: their outcome does not affect the cancellation.
func (e *Engine) Cancel(pnrNumber string) (CancelResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	booking, err := e.ledger.Find(pnrNumber)
	if err != nil {
		return CancelResult{}, fmt.Errorf("cancel %s: %w", pnrNumber, ErrNotFound)
	}
	if booking.Status == models.BookingStatusCancelled {
		return CancelResult{}, fmt.Errorf("cancel %s: %w", pnrNumber, ErrAlreadyCancelled)
	}

	e.appendJournal(pnrNumber, models.JournalActionCancelAttempt, models.JournalOutcomePendingRefund)

	result := CancelResult{}
	switch booking.Status {
	case models.BookingStatusConfirmed:
		svc, err := e.catalog.Resolve(booking.ServiceID)
		if err != nil {
			return CancelResult{}, fmt.Errorf("cancel %s: service %s: %w", pnrNumber, booking.ServiceID, ErrUnknownService)
		}
		e.inventory.Release(svc, booking.TravelDate, booking.SeatCount())

		available, availErr := e.inventory.Available(svc, booking.TravelDate)
		if availErr == nil && available > 0 {
			result.Promoted = e.promoteLocked(svc, booking.TravelDate, available)
		}

		if err := e.ledger.SetStatus(pnrNumber, models.BookingStatusCancelled); err != nil {
			return CancelResult{}, fmt.Errorf("cancel %s: %w", pnrNumber, err)
		}
		result.RefundAmount = booking.TotalFare * e.config.ConfirmedRefundRate
		e.gateway.Refund(result.RefundAmount)
		e.appendJournal(pnrNumber, models.JournalActionCancelSuccess, models.JournalOutcomeCommitted)

	case models.BookingStatusWaitlist:
		// Drop the live queue entry so a stale reference can never be
		// promoted later.
		e.queue.Remove(booking.ServiceID, booking.TravelDate, pnrNumber)

		if err := e.ledger.SetStatus(pnrNumber, models.BookingStatusCancelled); err != nil {
			return CancelResult{}, fmt.Errorf("cancel %s: %w", pnrNumber, err)
		}
		result.RefundAmount = booking.TotalFare * e.config.WaitlistRefundRate
		e.gateway.Refund(result.RefundAmount)
		e.appendJournal(pnrNumber, models.JournalActionCancelSuccessWL, models.JournalOutcomeCommitted)
	}

	e.logger.WithFields(logrus.Fields{
		"pnr":      pnrNumber,
		"service":  booking.ServiceID,
		"date":     booking.TravelDate,
		"refund":   result.RefundAmount,
		"promoted": len(result.Promoted),
	}).Info("booking cancelled")

	e.persistLocked()
	return result, nil
}

// PromoteManually runs the promotion pass for the (service, date) key using
// the current availability, for operator-triggered out-of-band
// reconciliation. It returns the PNRs promoted, in rank order.
func (e *Engine) PromoteManually(serviceID, date string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.dates.Validate(date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	svc, err := e.catalog.Resolve(serviceID)
	if err != nil {
		return nil, fmt.Errorf("service %s: %w", serviceID, ErrUnknownService)
	}

	available, err := e.inventory.Available(svc, date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	if available <= 0 {
		return nil, nil
	}

	promoted := e.promoteLocked(svc, date, available)
	if len(promoted) > 0 {
		e.persistLocked()
	}
	return promoted, nil
}

// Available reports the remaining seats for the service on the date.
func (e *Engine) Available(serviceID, date string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.dates.Validate(date); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	svc, err := e.catalog.Resolve(serviceID)
	if err != nil {
		return 0, fmt.Errorf("service %s: %w", serviceID, ErrUnknownService)
	}
	available, err := e.inventory.Available(svc, date)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return available, nil
}

// Find returns the booking for the PNR.
func (e *Engine) Find(pnrNumber string) (models.Booking, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	booking, err := e.ledger.Find(pnrNumber)
	if err != nil {
		return models.Booking{}, fmt.Errorf("booking %s: %w", pnrNumber, ErrNotFound)
	}
	return booking, nil
}

// Bookings returns every booking in insertion order, for reporting.
func (e *Engine) Bookings() []models.Booking {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ledger.All()
}

// WaitlistEntries returns the live queue for the (service, date) key in rank
// order, for reporting.
func (e *Engine) WaitlistEntries(serviceID, date string) []models.WaitlistEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Entries(serviceID, date)
}

// promoteLocked runs the queue's promotion pass, committing each promotable
// entry by reserving its seats and confirming its ledger record. The caller
// must hold the engine mutex.
func (e *Engine) promoteLocked(svc models.ServiceDescriptor, date string, available int) []string {
	promoted := e.queue.Promote(svc.ID, date, available, func(entry models.WaitlistEntry) waitlist.CommitResult {
		booking, err := e.ledger.Find(entry.PNR)
		if err != nil || booking.Status != models.BookingStatusWaitlist {
			return waitlist.CommitDropped
		}
		ok, err := e.inventory.Reserve(svc, entry.TravelDate, entry.NumSeats)
		if err != nil || !ok {
			return waitlist.CommitRetained
		}
		if err := e.ledger.SetStatus(entry.PNR, models.BookingStatusConfirmed); err != nil {
			// Undo the reservation so no partial state survives.
			e.inventory.Release(svc, entry.TravelDate, entry.NumSeats)
			return waitlist.CommitRetained
		}
		e.appendJournal(entry.PNR, models.JournalActionPromotion, models.JournalOutcomeCommitted)
		return waitlist.CommitPromoted
	})

	for _, pnrNumber := range promoted {
		e.logger.WithFields(logrus.Fields{
			"pnr":     pnrNumber,
			"service": svc.ID,
			"date":    date,
		}).Info("waitlist entry promoted")
	}
	return promoted
}

func (e *Engine) validatePassengers(passengers []models.Passenger) error {
	if len(passengers) == 0 {
		return ErrNoPassengers
	}
	if len(passengers) > e.config.MaxGroupSize {
		return fmt.Errorf("%w: limit is %d", ErrTooManyPassengers, e.config.MaxGroupSize)
	}
	for i, p := range passengers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("passenger %d: %w", i+1, err)
		}
	}
	return nil
}

// appendJournal writes an audit entry. Journal failures are logged and
// swallowed: the journal is a side effect and must never abort the operation
// being recorded.
func (e *Engine) appendJournal(pnrNumber, action, outcome string) {
	if e.journal == nil {
		return
	}
	entry := models.NewJournalEntry(pnrNumber, action, outcome)
	if err := e.journal.Append(entry); err != nil {
		e.logger.WithError(err).WithFields(logrus.Fields{
			"pnr":    pnrNumber,
			"action": action,
		}).Warn("journal append failed")
	}
}

// persistLocked saves a snapshot after a successful mutating operation. A
// failed save is logged but does not fail the operation: the in-memory state
// is already committed. The caller must hold the engine mutex.
func (e *Engine) persistLocked() {
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.exportLocked()); err != nil {
		e.logger.WithError(err).Error("snapshot persist failed")
	}
}
