package flatfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/railtransit/reservation-engine/internal/models"
)

// Data file names, mirroring the legacy layout.
const (
	servicesFile = "services_data.txt"
	bookingsFile = "bookings_data.txt"
	counterFile  = "pnr_counter.txt"
	journalFile  = "transactions.log"
)

// Store persists engine snapshots as legacy-format flat files in a single
// directory. Writes go through a temp file and rename so a crash mid-save
// never truncates the previous snapshot.
type Store struct {
	dir    string
	logger *logrus.Logger
}

// NewStore creates a flat-file store rooted at dir, creating it if needed.
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save writes the snapshot's services, bookings and PNR counter files.
func (s *Store) Save(snapshot models.Snapshot) error {
	serviceLines := make([]string, 0, len(snapshot.Services))
	for _, state := range snapshot.Services {
		serviceLines = append(serviceLines, EncodeService(state))
	}
	if err := s.writeLines(servicesFile, serviceLines); err != nil {
		return err
	}

	bookingLines := make([]string, 0, len(snapshot.Bookings))
	for _, booking := range snapshot.Bookings {
		bookingLines = append(bookingLines, EncodeBooking(booking))
	}
	if err := s.writeLines(bookingsFile, bookingLines); err != nil {
		return err
	}

	return s.writeLines(counterFile, []string{fmt.Sprintf("%d", snapshot.PNRCounter)})
}

// Load reads the snapshot back. Booking and service lines are preserved in
// file order, which is what waitlist rank re-derivation depends on. A line
// that fails to parse is skipped with a warning and the load continues; one
// bad record never aborts the rest.
func (s *Store) Load() (models.Snapshot, error) {
	snapshot := models.Snapshot{}

	serviceLines, err := s.readLines(servicesFile)
	if err != nil {
		return models.Snapshot{}, err
	}
	for _, line := range serviceLines {
		state, err := DecodeService(line)
		if err != nil {
			s.logger.WithError(err).Warn("skipping corrupted service record")
			continue
		}
		snapshot.Services = append(snapshot.Services, state)
	}

	bookingLines, err := s.readLines(bookingsFile)
	if err != nil {
		return models.Snapshot{}, err
	}
	for _, line := range bookingLines {
		booking, err := DecodeBooking(line)
		if err != nil {
			s.logger.WithError(err).Warn("skipping corrupted booking record")
			continue
		}
		snapshot.Bookings = append(snapshot.Bookings, booking)
	}

	counter := NewCounterStore(filepath.Join(s.dir, counterFile))
	value, err := counter.Load()
	if err != nil {
		s.logger.WithError(err).Warn("PNR counter file unreadable, snapshot carries zero")
		value = 0
	}
	snapshot.PNRCounter = value

	return snapshot, nil
}

// Journal returns an append-only journal log stored alongside the snapshot.
func (s *Store) Journal() *JournalLog {
	return NewJournalLog(filepath.Join(s.dir, journalFile))
}

// CounterFile returns the path of the PNR counter file, for wiring the
// store's directory to a pnr.CounterStore.
func (s *Store) CounterFile() string {
	return filepath.Join(s.dir, counterFile)
}

func (s *Store) writeLines(name string, lines []string) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) readLines(name string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}
