package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"dictation/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	model TEXT NOT NULL,
	status TEXT NOT NULL,
	text TEXT NOT NULL,
	chars INTEGER NOT NULL,
	error TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

// Store keeps a local log of completed dictation sessions. It subscribes
// to controller events; transcripts never leave the machine.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens or creates the history database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StateChanged is part of the event sink contract; history only records
// completed sessions.
func (s *Store) StateChanged(domain.State) {}

// SessionDone appends one row per completed session.
func (s *Store) SessionDone(res domain.SessionResult) {
	errText := ""
	if res.Err != nil {
		errText = res.Err.Error()
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, started_at, duration_ms, model, status, text, chars, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.StartedAt.UTC().Format(time.RFC3339),
		res.Duration.Milliseconds(),
		res.Model,
		string(res.Status),
		res.Text,
		res.Chars,
		errText,
	)
	if err != nil {
		s.logger.Warn("writing session history", "session", res.ID, "error", err)
	}
}

// Entry is one stored session row.
type Entry struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Model     string
	Status    string
	Text      string
	Chars     int
	Error     string
}

// Recent returns the latest sessions, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, started_at, duration_ms, model, status, text, chars, error
		 FROM sessions ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &startedAt, &durationMS, &e.Model, &e.Status, &e.Text, &e.Chars, &e.Error); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing session timestamp: %w", err)
		}
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
