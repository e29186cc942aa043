package database

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/railtransit/reservation-engine/internal/models"
)

// SnapshotStore persists engine snapshots in Postgres. Save replaces the
// whole durable state in one transaction; Load reads bookings ordered by
// their insertion sequence so waitlist rank re-derivation sees exactly the
// original order. It implements the engine's SnapshotStore contract.
type SnapshotStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSnapshotStore creates a new SnapshotStore
func NewSnapshotStore(db *sqlx.DB, logger *logrus.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

// Save writes the snapshot transactionally: services and their calendars,
// bookings in slice order, and the PNR counter.
func (s *SnapshotStore) Save(snapshot models.Snapshot) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM seat_calendar`); err != nil {
		return fmt.Errorf("clear seat calendar: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM bookings`); err != nil {
		return fmt.Errorf("clear bookings: %w", err)
	}

	for _, state := range snapshot.Services {
		svc := state.Descriptor
		if _, err := tx.Exec(`
			INSERT INTO services (id, name, kind, origin, destination, capacity, base_fare, has_pantry)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				kind = EXCLUDED.kind,
				origin = EXCLUDED.origin,
				destination = EXCLUDED.destination,
				capacity = EXCLUDED.capacity,
				base_fare = EXCLUDED.base_fare,
				has_pantry = EXCLUDED.has_pantry
		`, svc.ID, svc.Name, svc.Kind, svc.Origin, svc.Destination, svc.Capacity, svc.BaseFare, svc.HasPantry); err != nil {
			return fmt.Errorf("save service %s: %w", svc.ID, err)
		}

		for date, seats := range state.Calendar {
			if _, err := tx.Exec(`
				INSERT INTO seat_calendar (service_id, travel_date, available_seats)
				VALUES ($1, $2, $3)
			`, svc.ID, date, seats); err != nil {
				return fmt.Errorf("save calendar for %s: %w", svc.ID, err)
			}
		}
	}

	for _, booking := range snapshot.Bookings {
		passengers, err := json.Marshal(booking.Passengers)
		if err != nil {
			return fmt.Errorf("encode passengers for %s: %w", booking.PNR, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO bookings (pnr, service_id, travel_date, total_fare, status, passengers)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, booking.PNR, booking.ServiceID, booking.TravelDate, booking.TotalFare, booking.Status, passengers); err != nil {
			return fmt.Errorf("save booking %s: %w", booking.PNR, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO pnr_counter (id, value) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value
	`, int64(snapshot.PNRCounter)); err != nil {
		return fmt.Errorf("save pnr counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot save: %w", err)
	}
	return nil
}

// Load reads the persisted snapshot. A booking row whose passenger payload
// fails to decode is skipped with a warning; one bad row never aborts the
// rest of the load.
func (s *SnapshotStore) Load() (models.Snapshot, error) {
	snapshot := models.Snapshot{}

	svcRows, err := s.db.Query(`
		SELECT id, name, kind, origin, destination, capacity, base_fare, has_pantry
		FROM services
		ORDER BY id
	`)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load services: %w", err)
	}
	defer svcRows.Close()

	for svcRows.Next() {
		var svc models.ServiceDescriptor
		if err := svcRows.Scan(
			&svc.ID, &svc.Name, &svc.Kind, &svc.Origin, &svc.Destination,
			&svc.Capacity, &svc.BaseFare, &svc.HasPantry,
		); err != nil {
			return models.Snapshot{}, fmt.Errorf("scan service: %w", err)
		}

		calendar, err := s.loadCalendar(svc.ID)
		if err != nil {
			return models.Snapshot{}, err
		}
		snapshot.Services = append(snapshot.Services, models.ServiceState{
			Descriptor: svc,
			Calendar:   calendar,
		})
	}
	if err := svcRows.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("load services: %w", err)
	}

	bookingRows, err := s.db.Query(`
		SELECT pnr, service_id, travel_date, total_fare, status, passengers
		FROM bookings
		ORDER BY seq
	`)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load bookings: %w", err)
	}
	defer bookingRows.Close()

	for bookingRows.Next() {
		booking, err := scanBookingRow(bookingRows)
		if err != nil {
			s.logger.WithError(err).Warn("skipping unreadable booking row")
			continue
		}
		snapshot.Bookings = append(snapshot.Bookings, *booking)
	}
	if err := bookingRows.Err(); err != nil {
		return models.Snapshot{}, fmt.Errorf("load bookings: %w", err)
	}

	counter := NewCounterRepository(s.db)
	value, err := counter.Load()
	if err != nil {
		s.logger.WithError(err).Warn("PNR counter unreadable, snapshot carries zero")
		value = 0
	}
	snapshot.PNRCounter = value

	return snapshot, nil
}

func (s *SnapshotStore) loadCalendar(serviceID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT travel_date, available_seats
		FROM seat_calendar
		WHERE service_id = $1
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("load calendar for %s: %w", serviceID, err)
	}
	defer rows.Close()

	calendar := make(map[string]int)
	for rows.Next() {
		var date string
		var seats int
		if err := rows.Scan(&date, &seats); err != nil {
			return nil, fmt.Errorf("scan calendar for %s: %w", serviceID, err)
		}
		calendar[date] = seats
	}
	return calendar, rows.Err()
}
