package sibyl

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores events in a SQLite database. A monotonically
// increasing sequence column preserves append order; saves buffer in
// memory and flush inside a single transaction.
type SQLiteBackend struct {
	db *sql.DB

	mu         sync.Mutex
	buffer     []Event
	bufferSize int
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS events (
	seq       INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL,
	type      TEXT NOT NULL,
	action    TEXT NOT NULL,
	id        INTEGER NOT NULL,
	parent_id INTEGER,
	details   TEXT NOT NULL
)`

// SQLiteOption customizes a SQLiteBackend.
type SQLiteOption func(*SQLiteBackend)

// WithSQLiteBufferSize overrides the automatic flush threshold.
func WithSQLiteBufferSize(n int) SQLiteOption {
	return func(b *SQLiteBackend) { b.bufferSize = n }
}

// NewSQLiteBackend opens (or creates) the database at path and ensures
// the events table exists.
func NewSQLiteBackend(path string, opts ...SQLiteOption) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sibyl: open sqlite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sibyl: create events table: %w", err)
	}
	b := &SQLiteBackend{db: db, bufferSize: optionBufferSize()}
	for _, o := range opts {
		o(b)
	}
	return b, nil
}

// Save buffers one event, flushing when the buffer reaches the
// threshold.
func (b *SQLiteBackend) Save(event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buffer = append(b.buffer, event)
	if len(b.buffer) >= b.bufferSize {
		return b.flushLocked()
	}
	return nil
}

// Flush commits all buffered events in one transaction. On failure the
// buffer is left intact for a later retry.
func (b *SQLiteBackend) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flushLocked()
}

func (b *SQLiteBackend) flushLocked() error {
	if len(b.buffer) == 0 {
		return nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("sibyl: begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO events (timestamp, type, action, id, parent_id, details)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sibyl: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, event := range b.buffer {
		details, err := json.Marshal(event.Details)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("sibyl: marshal details: %w", err)
		}
		// IDs are 64 random bits; store the bit pattern as the signed
		// integer SQLite understands and reinterpret on load.
		var parent sql.NullInt64
		if event.ParentID != nil {
			parent = sql.NullInt64{Int64: int64(*event.ParentID), Valid: true}
		}
		if _, err := stmt.Exec(
			event.Timestamp.UTC().Format(TimestampLayout),
			string(event.Type),
			string(event.Action),
			int64(event.ID),
			parent,
			string(details),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("sibyl: insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sibyl: commit events: %w", err)
	}

	b.buffer = b.buffer[:0]
	return nil
}

// Load returns every persisted event in insertion order.
func (b *SQLiteBackend) Load() ([]Event, error) {
	rows, err := b.db.Query(
		`SELECT seq, timestamp, type, action, id, parent_id, details
		 FROM events ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("sibyl: query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var (
			seq     int64
			ts      string
			typ     string
			action  string
			id      int64
			parent  sql.NullInt64
			details string
		)
		if err := rows.Scan(&seq, &ts, &typ, &action, &id, &parent, &details); err != nil {
			return nil, fmt.Errorf("sibyl: scan event: %w", err)
		}

		event := Event{
			Type:   TraceType(typ),
			Action: ActionType(action),
			ID:     uint64(id),
		}
		event.Timestamp, err = time.ParseInLocation(TimestampLayout, ts, time.UTC)
		if err != nil {
			return nil, &CorruptRecordError{Line: int(seq), Err: err}
		}
		if !event.Type.Valid() || !event.Action.Valid() {
			return nil, &CorruptRecordError{Line: int(seq), Err: fmt.Errorf("type %q action %q: %w", typ, action, ErrInvalidArgument)}
		}
		if parent.Valid {
			p := uint64(parent.Int64)
			event.ParentID = &p
		}
		if err := json.Unmarshal([]byte(details), &event.Details); err != nil {
			return nil, &CorruptRecordError{Line: int(seq), Err: err}
		}
		if event.Details == nil {
			event.Details = map[string]any{}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sibyl: read events: %w", err)
	}
	return events, nil
}

// Close flushes any buffered events and closes the database.
func (b *SQLiteBackend) Close() error {
	if err := b.Flush(); err != nil {
		return err
	}
	return b.db.Close()
}
