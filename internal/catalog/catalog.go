package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/railtransit/reservation-engine/internal/models"
)

// ErrUnknownService indicates the catalog has no service for the identifier.
var ErrUnknownService = errors.New("unknown service")

// Resolver is the directory collaborator the engine uses to validate booking
// requests. The reservation core never mutates descriptors it resolves.
type Resolver interface {
	Resolve(serviceID string) (models.ServiceDescriptor, error)
}

// Static is an in-memory catalog of scheduled services.
type Static struct {
	mu       sync.RWMutex
	services map[string]models.ServiceDescriptor
}

// NewStatic creates an empty in-memory catalog.
func NewStatic() *Static {
	return &Static{services: make(map[string]models.ServiceDescriptor)}
}

// Add registers or replaces a service descriptor.
func (c *Static) Add(svc models.ServiceDescriptor) error {
	if svc.ID == "" {
		return fmt.Errorf("service ID is required")
	}
	if svc.Capacity <= 0 {
		return fmt.Errorf("service %s: capacity must be positive", svc.ID)
	}
	if svc.BaseFare < 0 {
		return fmt.Errorf("service %s: base fare cannot be negative", svc.ID)
	}
	if !svc.Kind.IsValid() {
		return fmt.Errorf("service %s: unknown kind %q", svc.ID, svc.Kind)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[svc.ID] = svc
	return nil
}

// Remove deletes a service descriptor. It reports whether one existed.
func (c *Static) Remove(serviceID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.services[serviceID]; !ok {
		return false
	}
	delete(c.services, serviceID)
	return true
}

// Resolve returns the descriptor for the identifier.
func (c *Static) Resolve(serviceID string) (models.ServiceDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	svc, ok := c.services[serviceID]
	if !ok {
		return models.ServiceDescriptor{}, fmt.Errorf("service %s: %w", serviceID, ErrUnknownService)
	}
	return svc, nil
}

// All returns every descriptor in the catalog, in unspecified order.
func (c *Static) All() []models.ServiceDescriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.ServiceDescriptor, 0, len(c.services))
	for _, svc := range c.services {
		out = append(out, svc)
	}
	return out
}

// Seed loads the legacy default services into an empty catalog. It is a
// no-op when the catalog already has entries.
func (c *Static) Seed() {
	c.mu.Lock()
	already := len(c.services) > 0
	c.mu.Unlock()
	if already {
		return
	}

	defaults := []models.ServiceDescriptor{
		{
			ID:          "ET001",
			Name:        "Fast Express",
			Kind:        models.ServiceKindExpress,
			Origin:      "CityA",
			Destination: "CityB",
			Capacity:    10,
			BaseFare:    55.00,
			HasPantry:   true,
		},
		{
			ID:          "SR205",
			Name:        "Slow Runner",
			Kind:        models.ServiceKindIntercity,
			Origin:      "CityB",
			Destination: "CityC",
			Capacity:    50,
			BaseFare:    75.50,
			HasPantry:   false,
		},
	}
	for _, svc := range defaults {
		_ = c.Add(svc)
	}
}
