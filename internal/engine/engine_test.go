package engine

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railtransit/reservation-engine/internal/catalog"
	"github.com/railtransit/reservation-engine/internal/journal"
	"github.com/railtransit/reservation-engine/internal/models"
	"github.com/railtransit/reservation-engine/internal/pnr"
)

// scriptedGateway approves or declines charges from a fixed script; once the
// script runs out every charge is approved. Refunds are recorded for
// assertion.
type scriptedGateway struct {
	script  []bool
	charges []float64
	refunds []float64
}

func (g *scriptedGateway) Charge(amount float64) bool {
	g.charges = append(g.charges, amount)
	if len(g.script) == 0 {
		return true
	}
	ok := g.script[0]
	g.script = g.script[1:]
	return ok
}

func (g *scriptedGateway) Refund(amount float64) {
	g.refunds = append(g.refunds, amount)
}

type engineFixture struct {
	engine  *Engine
	catalog *catalog.Static
	gateway *scriptedGateway
	journal *journal.Recorder
}

func newFixture(t *testing.T, services ...models.ServiceDescriptor) *engineFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := catalog.NewStatic()
	for _, svc := range services {
		require.NoError(t, dir.Add(svc))
	}

	gateway := &scriptedGateway{}
	recorder := journal.NewRecorder()
	generator := pnr.NewGenerator(pnr.NewMemoryStore(0), 0, logger)

	return &engineFixture{
		engine:  New(dir, gateway, recorder, generator, nil, DefaultConfig(), logger),
		catalog: dir,
		gateway: gateway,
		journal: recorder,
	}
}

func smallService() models.ServiceDescriptor {
	return models.ServiceDescriptor{
		ID:          "X1",
		Name:        "Coastal Express",
		Kind:        models.ServiceKindExpress,
		Origin:      "Harbor",
		Destination: "Summit",
		Capacity:    2,
		BaseFare:    50.00,
		HasPantry:   false,
	}
}

func pax(names ...string) []models.Passenger {
	out := make([]models.Passenger, 0, len(names))
	for _, name := range names {
		out = append(out, models.Passenger{Name: name, Age: 30, Gender: "F"})
	}
	return out
}

func TestBook_ConfirmsWhenSeatsAvailable(t *testing.T) {
	f := newFixture(t, smallService())

	result, err := f.engine.Book("X1", "01/01/2030", pax("Asha", "Ravi"))
	require.NoError(t, err)

	assert.Equal(t, "100000000001", result.PNR)
	assert.Equal(t, models.BookingStatusConfirmed, result.Status)
	assert.Equal(t, 100.00, result.TotalFare)
	assert.Zero(t, result.WaitlistRank)

	available, err := f.engine.Available("X1", "01/01/2030")
	require.NoError(t, err)
	assert.Equal(t, 0, available)

	require.Len(t, f.gateway.charges, 1)
	assert.Equal(t, 100.00, f.gateway.charges[0])
}

func TestBook_WaitlistsWhenFull(t *testing.T) {
	f := newFixture(t, smallService())

	_, err := f.engine.Book("X1", "01/01/2030", pax("Asha", "Ravi"))
	require.NoError(t, err)

	result, err := f.engine.Book("X1", "01/01/2030", pax("Mira"))
	require.NoError(t, err)

	assert.Equal(t, "100000000002", result.PNR)
	assert.Equal(t, models.BookingStatusWaitlist, result.Status)
	assert.Equal(t, 50.00, result.TotalFare)
	assert.Equal(t, 1, result.WaitlistRank)

	// Waitlisted passengers are charged up front, same as confirmed ones.
	require.Len(t, f.gateway.charges, 2)
	assert.Equal(t, 50.00, f.gateway.charges[1])

	entries := f.engine.WaitlistEntries("X1", "01/01/2030")
	require.Len(t, entries, 1)
	assert.Equal(t, "100000000002", entries[0].PNR)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestBook_PartialCapacityGoesToWaitlist(t *testing.T) {
	f := newFixture(t, smallService())

	_, err := f.engine.Book("X1", "01/01/2030", pax("Asha"))
	require.NoError(t, err)

	// One seat left, two requested: the whole group waits. No partial
	// confirmation.
	result, err := f.engine.Book("X1", "01/01/2030", pax("Ravi", "Mira"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusWaitlist, result.Status)

	available, err := f.engine.Available("X1", "01/01/2030")
	require.NoError(t, err)
	assert.Equal(t, 1, available)
}

func TestBook_ValidationFailures(t *testing.T) {
	f := newFixture(t, smallService())

	tests := []struct {
		name       string
		serviceID  string
		date       string
		passengers []models.Passenger
		wantErr    error
	}{
		{"Invalid date format", "X1", "2030-01-01", pax("Asha"), ErrInvalidDate},
		{"Month out of range", "X1", "13/01/2030", pax("Asha"), ErrInvalidDate},
		{"Unknown service", "ZZ9", "01/01/2030", pax("Asha"), ErrUnknownService},
		{"No passengers", "X1", "01/01/2030", nil, ErrNoPassengers},
		{"Too many passengers", "X1", "01/01/2030", pax("a", "b", "c", "d", "e", "f", "g"), ErrTooManyPassengers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Book(tt.serviceID, tt.date, tt.passengers)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Validation failures never reach the payment gate.
	assert.Empty(t, f.gateway.charges)
}

func TestBook_PaymentDeclinedOrphansPNR(t *testing.T) {
	f := newFixture(t, smallService())
	f.gateway.script = []bool{false}

	_, err := f.engine.Book("X1", "01/01/2030", pax("Asha"))
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// No ledger record, no seat consumed.
	_, err = f.engine.Find("100000000001")
	assert.ErrorIs(t, err, ErrNotFound)
	available, err := f.engine.Available("X1", "01/01/2030")
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	// The issued PNR is consumed: the journal keys the failed attempt by
	// it, and the next booking gets the next number.
	history := f.journal.ByPNR("100000000001")
	require.Len(t, history, 2)
	assert.Equal(t, models.JournalActionBookingAttempt, history[0].Action)
	assert.Equal(t, models.JournalActionPaymentFailed, history[1].Action)
	assert.Equal(t, models.JournalOutcomeRolledBack, history[1].Outcome)

	result, err := f.engine.Book("X1", "01/01/2030", pax("Asha"))
	require.NoError(t, err)
	assert.Equal(t, "100000000002", result.PNR)
}

func TestCancel_ConfirmedRefundsAndPromotes(t *testing.T) {
	f := newFixture(t, smallService())

	first, err := f.engine.Book("X1", "01/01/2030", pax("Asha", "Ravi"))
	require.NoError(t, err)
	second, err := f.engine.Book("X1", "01/01/2030", pax("Mira"))
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusWaitlist, second.Status)

	result, err := f.engine.Cancel(first.PNR)
	require.NoError(t, err)

	// 80% refund on the confirmed fare of 100.
	assert.Equal(t, 80.00, result.RefundAmount)
	require.Len(t, f.gateway.refunds, 1)
	assert.Equal(t, 80.00, f.gateway.refunds[0])

	// The freed seats promote the waitlisted booking.
	require.Len(t, result.Promoted, 1)
	assert.Equal(t, second.PNR, result.Promoted[0])

	promoted, err := f.engine.Find(second.PNR)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, promoted.Status)

	// Two freed minus one taken by the promotion.
	available, err := f.engine.Available("X1", "01/01/2030")
	require.NoError(t, err)
	assert.Equal(t, 1, available)

	assert.Empty(t, f.engine.WaitlistEntries("X1", "01/01/2030"))

	cancelled, err := f.engine.Find(first.PNR)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)
}

func TestCancel_WaitlistedRefundsInFull(t *testing.T) {
	f := newFixture(t, smallService())

	_, err := f.engine.Book("X1", "01/01/2030", pax("Asha", "Ravi"))
	require.NoError(t, err)
	waiting, err := f.engine.Book("X1", "01/01/2030", pax("Mira"))
	require.NoError(t, err)

	result, err := f.engine.Cancel(waiting.PNR)
	require.NoError(t, err)

	assert.Equal(t, 50.00, result.RefundAmount)
	assert.Empty(t, result.Promoted)
	assert.Empty(t, f.engine.WaitlistEntries("X1", "01/01/2030"))

	booking, err := f.engine.Find(waiting.PNR)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, booking.Status)

	history := f.journal.ByPNR(waiting.PNR)
	require.NotEmpty(t, history)
	last := history[len(history)-1]
	assert.Equal(t, models.JournalActionCancelSuccessWL, last.Action)
}

func TestCancel_Errors(t *testing.T) {
	f := newFixture(t, smallService())

	_, err := f.engine.Cancel("999999999999")
	assert.ErrorIs(t, err, ErrNotFound)

	booked, err := f.engine.Book("X1", "01/01/2030", pax("Asha"))
	require.NoError(t, err)
	_, err = f.engine.Cancel(booked.PNR)
	require.NoError(t, err)

	_, err = f.engine.Cancel(booked.PNR)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	// The repeated cancel must not journal another attempt.
	var attempts int
	for _, entry := range f.journal.ByPNR(booked.PNR) {
		if entry.Action == models.JournalActionCancelAttempt {
			attempts++
		}
	}
	assert.Equal(t, 1, attempts)
}

func TestPromotion_RetainsEntryThatNoLongerFits(t *testing.T) {
	svc := smallService()
	svc.Capacity = 3
	f := newFixture(t, svc)

	first, err := f.engine.Book("X1", "01/01/2030", pax("a", "b", "c"))
	require.NoError(t, err)
	big, err := f.engine.Book("X1", "01/01/2030", pax("d", "e", "f"))
	require.NoError(t, err)
	small, err := f.engine.Book("X1", "01/01/2030", pax("g"))
	require.NoError(t, err)

	// Freeing three seats promotes the front entry, which takes all
	// three; the single-seat entry behind it stays queued at its
	// original rank.
	result, err := f.engine.Cancel(first.PNR)
	require.NoError(t, err)
	require.Equal(t, []string{big.PNR}, result.Promoted)

	entries := f.engine.WaitlistEntries("X1", "01/01/2030")
	require.Len(t, entries, 1)
	assert.Equal(t, small.PNR, entries[0].PNR)
	assert.Equal(t, 2, entries[0].Rank)
}

func TestPromotion_SkipsOverEntryTooLargeToFit(t *testing.T) {
	svc := smallService()
	svc.Capacity = 5
	f := newFixture(t, svc)

	_, err := f.engine.Book("X1", "01/01/2030", pax("a", "b", "c", "d"))
	require.NoError(t, err)
	single, err := f.engine.Book("X1", "01/01/2030", pax("e"))
	require.NoError(t, err)
	big, err := f.engine.Book("X1", "01/01/2030", pax("f", "g", "h"))
	require.NoError(t, err)
	require.Equal(t, models.BookingStatusWaitlist, big.Status)
	small, err := f.engine.Book("X1", "01/01/2030", pax("i"))
	require.NoError(t, err)

	// One seat frees up: the three-seat entry at the front does not fit
	// and is skipped in place; the single-seat entry behind it is
	// promoted past it.
	result, err := f.engine.Cancel(single.PNR)
	require.NoError(t, err)
	require.Equal(t, []string{small.PNR}, result.Promoted)

	entries := f.engine.WaitlistEntries("X1", "01/01/2030")
	require.Len(t, entries, 1)
	assert.Equal(t, big.PNR, entries[0].PNR)
	assert.Equal(t, 1, entries[0].Rank)
}

func TestPromoteManually(t *testing.T) {
	f := newFixture(t, smallService())

	_, err := f.engine.Book("X1", "01/01/2030", pax("Asha", "Ravi"))
	require.NoError(t, err)
	_, err = f.engine.Book("X1", "01/01/2030", pax("Mira"))
	require.NoError(t, err)

	// Nothing free yet.
	promoted, err := f.engine.PromoteManually("X1", "01/01/2030")
	require.NoError(t, err)
	assert.Empty(t, promoted)

	_, err = f.engine.PromoteManually("ZZ9", "01/01/2030")
	assert.ErrorIs(t, err, ErrUnknownService)
	_, err = f.engine.PromoteManually("X1", "bad-date")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestBookings_InsertionOrder(t *testing.T) {
	f := newFixture(t, smallService())

	_, err := f.engine.Book("X1", "01/01/2030", pax("Asha"))
	require.NoError(t, err)
	_, err = f.engine.Book("X1", "02/01/2030", pax("Ravi"))
	require.NoError(t, err)

	bookings := f.engine.Bookings()
	require.Len(t, bookings, 2)
	assert.Equal(t, "100000000001", bookings[0].PNR)
	assert.Equal(t, "100000000002", bookings[1].PNR)
}
