// Package audit mirrors published events into SQLite so they can be
// queried later. The daily log file stays the primary record.
package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/pagewire/events"
)

// ErrInvalidKind is returned when filtering by an unknown event kind.
var ErrInvalidKind = errors.New("unknown event kind")

// DefaultLimit is the number of entries List returns when no limit is set.
const DefaultLimit = 50

// EventStore manages mirrored events using SQLite.
type EventStore struct {
	db *sql.DB
}

// Entry is one stored event.
type Entry struct {
	ID         uuid.UUID   `json:"id"`
	Kind       events.Kind `json:"kind"`
	Subject    string      `json:"subject"`
	Message    string      `json:"message"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// EventFilter represents filtering options for listing events.
type EventFilter struct {
	Kind  *events.Kind // Filter by kind
	Limit int          // Pagination limit (default: DefaultLimit)
}

// NewEventStore creates a new event store with the given database path.
func NewEventStore(dbPath string) (*EventStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Bus subscribers write from many request goroutines
	db.SetMaxOpenConns(1)

	store := &EventStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the events table if it doesn't exist.
func (s *EventStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		event_id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		occurred_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events(occurred_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *EventStore) Close() error {
	return s.db.Close()
}

// Record stores one event. It has the events.Handler signature so it can be
// subscribed to the bus directly.
func (s *EventStore) Record(ev events.Event) error {
	query := `
		INSERT INTO events (event_id, kind, subject, message, occurred_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		ev.ID.String(),
		string(ev.Kind),
		ev.Subject,
		ev.Message(),
		formatTime(ev.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// List returns stored events, newest first.
func (s *EventStore) List(filter EventFilter) ([]Entry, error) {
	query := "SELECT event_id, kind, subject, message, occurred_at FROM events"
	var args []any

	if filter.Kind != nil {
		if !filter.Kind.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidKind, *filter.Kind)
		}
		query += " WHERE kind = ?"
		args = append(args, string(*filter.Kind))
	}

	limit := DefaultLimit
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query += " ORDER BY occurred_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var idStr, kind, subject, message, occurredAt string
		if err := rows.Scan(&idStr, &kind, &subject, &message, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event id: %w", err)
		}

		entries = append(entries, Entry{
			ID:         id,
			Kind:       events.Kind(kind),
			Subject:    subject,
			Message:    message,
			OccurredAt: parseTime(occurredAt),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return entries, nil
}

// timeFormat is fixed width so stored values sort chronologically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
