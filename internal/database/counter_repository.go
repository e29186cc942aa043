package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/railtransit/reservation-engine/internal/pnr"
)

// CounterRepository persists the PNR counter as a single-row table. It
// implements pnr.CounterStore.
type CounterRepository struct {
	db DB
}

// NewCounterRepository creates a new CounterRepository
func NewCounterRepository(db DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Load returns the stored counter value. A missing row reads as zero, which
// the generator clamps up to its floor.
func (r *CounterRepository) Load() (uint64, error) {
	var value int64
	err := r.db.QueryRow(`SELECT value FROM pnr_counter WHERE id = 1`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load pnr counter: %w", err)
	}
	if value < 0 {
		return 0, fmt.Errorf("%w: negative value %d", pnr.ErrCorruptedCounter, value)
	}
	return uint64(value), nil
}

// Save upserts the counter value.
func (r *CounterRepository) Save(value uint64) error {
	query := `
		INSERT INTO pnr_counter (id, value) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := r.db.Exec(query, int64(value)); err != nil {
		return fmt.Errorf("failed to save pnr counter: %w", err)
	}
	return nil
}
