package pnr

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
)

// DefaultFloor is the lowest PNR value the generator will ever issue above.
const DefaultFloor uint64 = 100000000000

// ErrCorruptedCounter indicates the persisted counter could not be read.
// It is recovered locally by resetting to the floor and is never fatal.
var ErrCorruptedCounter = errors.New("pnr counter store is corrupted")

// CounterStore persists the monotonic PNR counter across restarts.
type CounterStore interface {
	// Load returns the stored counter value. Implementations wrap
	// ErrCorruptedCounter when the stored value is unreadable.
	Load() (uint64, error)

	// Save durably records the counter value before it is handed out.
	Save(value uint64) error
}

// Generator issues unique, strictly increasing PNR identifiers. Every issued
// value is persisted synchronously on the same call, so a crash between
// increment and persist is never observable. The counter is floor-bounded:
// a stored value below the configured floor is clamped up, never down.
type Generator struct {
	mu      sync.Mutex
	current uint64
	floor   uint64
	store   CounterStore
	logger  *logrus.Logger
}

// NewGenerator loads the counter from store, clamping to floor. A corrupted
// store resets the counter to floor with a warning.
func NewGenerator(store CounterStore, floor uint64, logger *logrus.Logger) *Generator {
	if floor == 0 {
		floor = DefaultFloor
	}
	g := &Generator{floor: floor, store: store, logger: logger}

	value, err := store.Load()
	if err != nil {
		g.logger.WithError(err).Warn("PNR counter store unreadable, resetting to floor")
		value = floor
	}
	if value < floor {
		value = floor
	}
	g.current = value
	return g
}

// Next issues the next PNR, persisting the incremented counter before
// returning it. On persist failure no PNR is issued and the counter is left
// at its previous value.
func (g *Generator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.current + 1
	if err := g.store.Save(next); err != nil {
		return "", fmt.Errorf("persist pnr counter: %w", err)
	}
	g.current = next
	return strconv.FormatUint(next, 10), nil
}

// Current returns the last issued counter value, for snapshot export.
func (g *Generator) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Restore replaces the counter from snapshot data, clamped up to the floor,
// and persists the restored value.
func (g *Generator) Restore(value uint64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if value < g.floor {
		value = g.floor
	}
	if err := g.store.Save(value); err != nil {
		return fmt.Errorf("persist pnr counter: %w", err)
	}
	g.current = value
	return nil
}
