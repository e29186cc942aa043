package flatfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/railtransit/reservation-engine/internal/pnr"
)

// CounterStore persists the PNR counter as a bare integer file, like the
// legacy pnr_counter.txt. It implements pnr.CounterStore.
type CounterStore struct {
	path string
}

// NewCounterStore creates a counter store backed by the file at path.
func NewCounterStore(path string) *CounterStore {
	return &CounterStore{path: path}
}

// Load reads the stored counter. A missing file reads as zero, which the
// generator clamps up to its floor. Unreadable content is reported as
// pnr.ErrCorruptedCounter so the generator can recover.
func (s *CounterStore) Load() (uint64, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pnr counter: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, fmt.Errorf("%w: empty counter file", pnr.ErrCorruptedCounter)
	}
	value, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", pnr.ErrCorruptedCounter, text)
	}
	return value, nil
}

// Save durably writes the counter value via temp file and rename.
func (s *CounterStore) Save(value uint64) error {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "pnr_counter.tmp-*")
	if err != nil {
		return fmt.Errorf("write pnr counter: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.FormatUint(value, 10)); err != nil {
		tmp.Close()
		return fmt.Errorf("write pnr counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write pnr counter: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write pnr counter: %w", err)
	}
	return nil
}
