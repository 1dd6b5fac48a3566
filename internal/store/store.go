// Package store implements Postgres persistence for the curio learning
// pipeline: interests, research requests/results, insights, and sessions,
// plus read-only lookups of user context and known projects.
//
// Every logical write is an independently committed statement; there are no
// multi-step transactions spanning writes, so partial pipeline progress
// survives a later failure.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"curio/internal/logging"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store wraps the relational database with typed operations on the five
// learning tables.
type Store struct {
	db *sql.DB

	// Insight count past which an interest is promoted to "deepening".
	deepeningThreshold int
}

// DefaultDeepeningThreshold is the inherited promotion threshold.
const DefaultDeepeningThreshold = 10

// Open connects to Postgres using the given DSN and ensures the schema
// exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, deepeningThreshold: DefaultDeepeningThreshold}
	if err := s.initializeSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Store("Store opened and schema verified")
	return s, nil
}

// NewWithDB wraps an existing database handle. Used by tests and callers
// that manage the connection themselves. The schema is not touched.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db, deepeningThreshold: DefaultDeepeningThreshold}
}

// SetDeepeningThreshold overrides the insight count that promotes an
// interest to "deepening".
func (s *Store) SetDeepeningThreshold(n int) {
	if n > 0 {
		s.deepeningThreshold = n
	}
}

// DB exposes the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	logging.Store("Closing store")
	return s.db.Close()
}

// jsonList marshals a string list for a JSONB column. Nil becomes the empty
// list, never SQL NULL.
func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

// scanStringList decodes a JSONB list column.
func scanStringList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
