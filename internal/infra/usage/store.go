package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Stats is the persisted call-counter record.
type Stats struct {
	DailyCount    int    `json:"daily_count"`
	TotalCount    int    `json:"total_count"`
	LastResetDate string `json:"last_reset_date"`
}

// Store persists transcription call counters to a small JSON state file.
// One Record call counts one billable API round-trip. The daily counter
// resets when the date changes; the total never resets.
type Store struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	stats Stats
}

func NewStore(path string, logger *slog.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("reading usage file", "path", s.path, "error", err)
		}
		return
	}
	if err := json.Unmarshal(data, &s.stats); err != nil {
		s.logger.Warn("parsing usage file, starting fresh", "path", s.path, "error", err)
		s.stats = Stats{}
	}
}

// Record applies the daily rollover, increments both counters and saves.
func (s *Store) Record(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format(time.DateOnly)
	if s.stats.LastResetDate != today {
		s.stats.DailyCount = 0
		s.stats.LastResetDate = today
	}
	s.stats.DailyCount++
	s.stats.TotalCount++

	return s.save()
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling usage: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing usage file: %w", err)
	}
	return nil
}

// Snapshot returns the counters with the rollover applied, without
// counting a call or touching the file.
func (s *Store) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	today := s.now().Format(time.DateOnly)
	if st.LastResetDate != today {
		st.DailyCount = 0
		st.LastResetDate = today
	}
	return st
}
