package database

import "fmt"

// schemaStatements create the reservation tables. Bookings carry a BIGSERIAL
// insertion sequence: snapshot loads order by it, and waitlist rank
// re-derivation depends on that order being exactly the insertion order.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS services (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		capacity INT NOT NULL CHECK (capacity > 0),
		base_fare NUMERIC(12,2) NOT NULL,
		has_pantry BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS seat_calendar (
		service_id TEXT NOT NULL REFERENCES services(id) ON DELETE CASCADE,
		travel_date TEXT NOT NULL,
		available_seats INT NOT NULL CHECK (available_seats >= 0),
		PRIMARY KEY (service_id, travel_date)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		seq BIGSERIAL PRIMARY KEY,
		pnr TEXT NOT NULL UNIQUE,
		service_id TEXT NOT NULL,
		travel_date TEXT NOT NULL,
		total_fare DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		passengers JSONB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pnr_counter (
		id INT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
		value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transaction_journal (
		id UUID PRIMARY KEY,
		pnr TEXT NOT NULL,
		action TEXT NOT NULL,
		outcome TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transaction_journal_pnr ON transaction_journal(pnr)`,
}

// Migrate creates the reservation schema if it does not exist.
func Migrate(db DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
