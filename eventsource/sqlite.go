package eventsource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS events (
	global_seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL,
	stream_id  TEXT NOT NULL,
	type       TEXT NOT NULL,
	data       BLOB,
	version    INTEGER NOT NULL,
	timestamp  TEXT NOT NULL,
	UNIQUE (stream_id, version)
);
CREATE INDEX IF NOT EXISTS idx_events_stream ON events (stream_id, version);
`

// SQLiteStore is a Store backed by a SQLite database file. Use ":memory:"
// for an ephemeral database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed event store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("eventsource: opening database: %w", err)
	}
	// The driver serializes access; a single connection avoids table-lock
	// errors under concurrent appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventsource: creating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, streamID string, expectedVersion int, events []*Event) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("eventsource: begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := streamVersionTx(ctx, tx, streamID)
	if err != nil {
		return 0, err
	}
	if current != expectedVersion {
		return 0, ErrConcurrencyConflict
	}

	version := current
	for _, e := range events {
		version++
		e.StreamID = streamID
		e.Version = version
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (id, stream_id, type, data, version, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.StreamID, e.Type, []byte(e.Data), e.Version, e.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return 0, fmt.Errorf("eventsource: inserting event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("eventsource: commit: %w", err)
	}
	return version, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, streamID string, fromVersion int) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stream_id, type, data, version, timestamp FROM events
		 WHERE stream_id = ? AND version >= ? ORDER BY version`,
		streamID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("eventsource: query: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ReadAll implements Store.
func (s *SQLiteStore) ReadAll(ctx context.Context, filter EventFilter) ([]*Event, error) {
	query := `SELECT id, stream_id, type, data, version, timestamp FROM events`
	var conds []string
	var args []any
	if filter.StreamID != "" {
		conds = append(conds, "stream_id = ?")
		args = append(args, filter.StreamID)
	}
	if len(filter.Types) > 0 {
		placeholders := strings.Repeat("?,", len(filter.Types))
		conds = append(conds, fmt.Sprintf("type IN (%s)", placeholders[:len(placeholders)-1]))
		for _, t := range filter.Types {
			args = append(args, t)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY global_seq"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventsource: query: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// StreamVersion implements Store.
func (s *SQLiteStore) StreamVersion(ctx context.Context, streamID string) (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("eventsource: query version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

// DeleteStream implements Store.
func (s *SQLiteStore) DeleteStream(ctx context.Context, streamID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE stream_id = ?`, streamID); err != nil {
		return fmt.Errorf("eventsource: deleting stream: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func streamVersionTx(ctx context.Context, tx *sql.Tx, streamID string) (int, error) {
	var version sql.NullInt64
	err := tx.QueryRowContext(ctx,
		`SELECT MAX(version) FROM events WHERE stream_id = ?`, streamID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("eventsource: query version: %w", err)
	}
	if !version.Valid {
		return -1, nil
	}
	return int(version.Int64), nil
}

func scanEvents(rows *sql.Rows) ([]*Event, error) {
	var out []*Event
	for rows.Next() {
		var e Event
		var data []byte
		var ts string
		if err := rows.Scan(&e.ID, &e.StreamID, &e.Type, &data, &e.Version, &ts); err != nil {
			return nil, fmt.Errorf("eventsource: scan: %w", err)
		}
		if len(data) > 0 {
			e.Data = data
		}
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("eventsource: bad timestamp %q: %w", ts, err)
		}
		e.Timestamp = t
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("eventsource: rows: %w", err)
	}
	return out, nil
}

var _ Store = (*SQLiteStore)(nil)
