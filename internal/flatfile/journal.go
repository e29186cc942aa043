package flatfile

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/railtransit/reservation-engine/internal/models"
)

// JournalLog is an append-only transaction log of timestamp|pnr|action|outcome
// lines. It implements journal.Writer. The file is opened per append so the
// log survives whatever happens to the process between writes.
type JournalLog struct {
	mu   sync.Mutex
	path string
}

// NewJournalLog creates a journal log backed by the file at path.
func NewJournalLog(path string) *JournalLog {
	return &JournalLog{path: path}
}

// Append writes one journal entry line.
func (j *JournalLog) Append(entry models.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	line := strings.Join([]string{
		entry.CreatedAt.Format(time.RFC3339),
		entry.PNR,
		entry.Action,
		entry.Outcome,
	}, "|")
	if _, err := f.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("append journal: %w", err)
	}
	return nil
}

// History returns the raw journal lines recorded for a PNR, in append order.
func (j *JournalLog) History(pnr string) ([]string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	data, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) >= 2 && fields[1] == pnr {
			out = append(out, line)
		}
	}
	return out, nil
}
