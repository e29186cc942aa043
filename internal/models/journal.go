package models

import (
	"time"

	"github.com/google/uuid"
)

// Journal action and outcome vocabulary written by the engine. The journal is
// append-only audit data; it is never read back into live state.
const (
	JournalActionBookingAttempt     = "BOOKING_ATTEMPT"
	JournalActionPaymentSuccess     = "PAYMENT_SUCCESS"
	JournalActionPaymentFailed      = "PAYMENT_FAILED"
	JournalActionCancelAttempt      = "CANCELLATION_ATTEMPT"
	JournalActionCancelSuccess      = "CANCELLATION_SUCCESS"
	JournalActionCancelSuccessWL    = "CANCELLATION_SUCCESS_WL"
	JournalActionPromotion          = "PROMOTION"

	JournalOutcomePendingPayment = "PENDING_PAYMENT"
	JournalOutcomePendingRefund  = "PENDING_REFUND"
	JournalOutcomeCommitted      = "COMMITTED"
	JournalOutcomeRolledBack     = "ROLLED_BACK"
	JournalOutcomeWaitlisted     = "WAITLISTED"
)

// JournalEntry is a single attempted state transition recorded for audit.
type JournalEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PNR       string    `json:"pnr" db:"pnr"`
	Action    string    `json:"action" db:"action"`
	Outcome   string    `json:"outcome" db:"outcome"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewJournalEntry builds a journal entry for the given transition attempt.
func NewJournalEntry(pnr, action, outcome string) JournalEntry {
	return JournalEntry{
		ID:        uuid.New(),
		PNR:       pnr,
		Action:    action,
		Outcome:   outcome,
		CreatedAt: time.Now(),
	}
}
