package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/railtransit/reservation-engine/internal/catalog"
	"github.com/railtransit/reservation-engine/internal/models"
)

// ServiceRepository handles database operations for the services table. It
// implements the catalog contract the engine depends on, so a deployment can
// run the directory off Postgres instead of the in-memory catalog.
type ServiceRepository struct {
	db DB
}

// NewServiceRepository creates a new ServiceRepository
func NewServiceRepository(db DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

// Upsert inserts or replaces a service descriptor.
func (r *ServiceRepository) Upsert(svc models.ServiceDescriptor) error {
	query := `
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
	`
	_, err := r.db.Exec(query,
		svc.ID, svc.Name, svc.Kind, svc.Origin, svc.Destination,
		svc.Capacity, svc.BaseFare, svc.HasPantry,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert service %s: %w", svc.ID, err)
	}
	return nil
}

// Resolve returns the descriptor for the identifier.
func (r *ServiceRepository) Resolve(serviceID string) (models.ServiceDescriptor, error) {
	query := `
		SELECT id, name, kind, origin, destination, capacity, base_fare, has_pantry
		FROM services
		WHERE id = $1
	`
	var svc models.ServiceDescriptor
	err := r.db.QueryRow(query, serviceID).Scan(
		&svc.ID, &svc.Name, &svc.Kind, &svc.Origin, &svc.Destination,
		&svc.Capacity, &svc.BaseFare, &svc.HasPantry,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ServiceDescriptor{}, fmt.Errorf("service %s: %w", serviceID, catalog.ErrUnknownService)
	}
	if err != nil {
		return models.ServiceDescriptor{}, fmt.Errorf("failed to resolve service %s: %w", serviceID, err)
	}
	return svc, nil
}

// All returns every service descriptor ordered by identifier.
func (r *ServiceRepository) All() []models.ServiceDescriptor {
	query := `
		SELECT id, name, kind, origin, destination, capacity, base_fare, has_pantry
		FROM services
		ORDER BY id
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []models.ServiceDescriptor
	for rows.Next() {
		var svc models.ServiceDescriptor
		if err := rows.Scan(
			&svc.ID, &svc.Name, &svc.Kind, &svc.Origin, &svc.Destination,
			&svc.Capacity, &svc.BaseFare, &svc.HasPantry,
		); err != nil {
			return out
		}
		out = append(out, svc)
	}
	return out
}

// Delete removes a service descriptor. It reports whether one existed.
func (r *ServiceRepository) Delete(serviceID string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM services WHERE id = $1`, serviceID)
	if err != nil {
		return false, fmt.Errorf("failed to delete service %s: %w", serviceID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
