package pnr

import "sync"

// MemoryStore is a CounterStore held in process memory, for engines that run
// without durable persistence and for tests.
type MemoryStore struct {
	mu    sync.Mutex
	value uint64
}

// NewMemoryStore creates a memory-backed counter store seeded with value.
func NewMemoryStore(value uint64) *MemoryStore {
	return &MemoryStore{value: value}
}

// Load returns the stored counter value.
func (s *MemoryStore) Load() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value, nil
}

// Save records the counter value.
func (s *MemoryStore) Save(value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	return nil
}
