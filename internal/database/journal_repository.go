package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/railtransit/reservation-engine/internal/models"
)

// JournalRepository appends engine transition attempts to the
// transaction_journal table. It implements journal.Writer. Entries are
// audit-only and are never read back into live engine state.
type JournalRepository struct {
	db DB
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(db DB) *JournalRepository {
	return &JournalRepository{db: db}
}

// Append inserts one journal entry.
func (r *JournalRepository) Append(entry models.JournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transaction_journal (id, pnr, action, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(query, entry.ID, entry.PNR, entry.Action, entry.Outcome, entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to append journal entry for %s: %w", entry.PNR, err)
	}
	return nil
}

// History returns the recorded entries for a PNR in append order, for the
// operator audit report.
func (r *JournalRepository) History(pnr string) ([]models.JournalEntry, error) {
	query := `
		SELECT id, pnr, action, outcome, created_at
		FROM transaction_journal
		WHERE pnr = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(query, pnr)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal for %s: %w", pnr, err)
	}
	defer rows.Close()

	var out []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(&entry.ID, &entry.PNR, &entry.Action, &entry.Outcome, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
