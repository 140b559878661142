// Package store implements the in-process content database populated during
// ingestion and served over HTTP for the remainder of the build. It is
// destroyed and rebuilt on every build invocation.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// Record is a processed content record. Identity is the derived id; the store
// guarantees no duplicate ids after a full ingestion pass.
type Record struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Path       string         `json:"path"`
	Data       map[string]any `json:"data"`
}

// Store is a SQLite-backed content database. Safe for concurrent use; writes
// happen only during ingestion, reads for the rest of the build.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates an in-memory content store. Use a file path for a persistent
// store (tests mostly want ":memory:").
func New(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open content store: %w", err)
	}
	// An in-memory SQLite database exists per connection; the pool must not
	// fan out to fresh connections.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize content store schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		path TEXT NOT NULL,
		data TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_collection ON records(collection);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Reset destroys all records. Called at the start of every ingestion pass so
// no stale records survive across builds.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("reset content store: %w", err)
	}
	return nil
}

// Put inserts or replaces a record.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("content record requires an id (path %s)", rec.Path)
	}
	if rec.Collection == "" {
		rec.Collection = "default"
	}
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO records (id, collection, path, data) VALUES (?, ?, ?, ?)",
		rec.ID, rec.Collection, rec.Path, string(data),
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

// Get retrieves a record by collection and id.
func (s *Store) Get(ctx context.Context, collection, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, collection, path, data FROM records WHERE collection = ? AND id = ?",
		collection, id,
	)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound{Collection: collection, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s/%s: %w", collection, id, err)
	}
	return rec, nil
}

// List returns records in a collection ordered by id. limit <= 0 means no
// limit; after paginates past the given id.
func (s *Store) List(ctx context.Context, collection string, limit int, after string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, collection, path, data FROM records WHERE collection = ? AND id > ? ORDER BY id"
	args := []any{collection, after}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", collection, err)
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var rec Record
		var data string
		if err := rows.Scan(&rec.ID, &rec.Collection, &rec.Path, &data); err != nil {
			return nil, fmt.Errorf("scan record rows: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
			return nil, fmt.Errorf("unmarshal record %s: %w", rec.ID, err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Collections returns the distinct collection names, sorted.
func (s *Store) Collections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT collection FROM records ORDER BY collection")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the total number of records.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecord(row *sql.Row) (*Record, error) {
	var rec Record
	var data string
	if err := row.Scan(&rec.ID, &rec.Collection, &rec.Path, &data); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &rec.Data); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ErrNotFound is returned when a record doesn't exist.
type ErrNotFound struct {
	Collection string
	ID         string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("record not found: %s/%s", e.Collection, e.ID)
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
