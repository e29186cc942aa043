package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/railtransit/reservation-engine/internal/models"
)

// BookingRepository handles read operations for the bookings table, for
// reporting against the persisted snapshot. The snapshot store owns writes.
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Find returns the persisted booking for a PNR.
func (r *BookingRepository) Find(pnr string) (*models.Booking, error) {
	query := `
		SELECT pnr, service_id, travel_date, total_fare, status, passengers
		FROM bookings
		WHERE pnr = $1
	`
	booking, err := scanBooking(r.db.QueryRow(query, pnr))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("booking %s not found", pnr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find booking %s: %w", pnr, err)
	}
	return booking, nil
}

// All returns every persisted booking in insertion order.
func (r *BookingRepository) All() ([]models.Booking, error) {
	query := `
		SELECT pnr, service_id, travel_date, total_fare, status, passengers
		FROM bookings
		ORDER BY seq
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		booking, err := scanBookingRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *booking)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row *sql.Row) (*models.Booking, error) {
	return scanBookingRow(row)
}

func scanBookingRow(row rowScanner) (*models.Booking, error) {
	var booking models.Booking
	var passengers []byte
	if err := row.Scan(
		&booking.PNR, &booking.ServiceID, &booking.TravelDate,
		&booking.TotalFare, &booking.Status, &passengers,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(passengers, &booking.Passengers); err != nil {
		return nil, fmt.Errorf("failed to decode passengers for %s: %w", booking.PNR, err)
	}
	return &booking, nil
}
