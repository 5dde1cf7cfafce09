/*
Package storage provides SQLite database migrations and helper functions.

This file contains schema definitions, migration logic, and JSON column
helpers for the storage layer.
*/
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// migration represents a single database migration.
type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

// migrations lists every schema change in order.
var migrations = []migration{
	{version: 1, name: "initial_schema", up: migration001InitialSchema},
	{version: 2, name: "response_session_index", up: migration002ResponseIndex},
}

// runMigrations executes database schema migrations.
func (s *SQLiteStorage) runMigrations() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create migrations table
	if err := s.createMigrationsTable(); err != nil {
		return err
	}

	// Get current version
	version, err := s.getCurrentMigrationVersion()
	if err != nil {
		return err
	}

	// Run migrations in order
	for _, m := range migrations {
		if version >= m.version {
			continue
		}

		s.logger.Info("running migration", zap.Int("version", m.version), zap.String("name", m.name))
		if err := s.applyMigration(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.conn(); err != nil {
		return 0, err
	}
	return s.getCurrentMigrationVersion()
}

func (s *SQLiteStorage) applyMigration(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.up(tx); err != nil {
		return err
	}

	query := "INSERT INTO schema_migrations (version, name) VALUES (?, ?)"
	if _, err := tx.Exec(query, m.version, m.name); err != nil {
		return err
	}

	return tx.Commit()
}

// createMigrationsTable creates the schema_migrations table.
func (s *SQLiteStorage) createMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// getCurrentMigrationVersion returns the highest applied migration version.
func (s *SQLiteStorage) getCurrentMigrationVersion() (int, error) {
	query := "SELECT COALESCE(MAX(version), 0) FROM schema_migrations"
	row := s.db.QueryRow(query)

	var version int
	if err := row.Scan(&version); err != nil {
		return 0, err
	}

	return version, nil
}

// migration001InitialSchema creates the initial database schema.
func migration001InitialSchema(tx *sql.Tx) error {
	statements := []struct {
		name  string
		query string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				email TEXT,
				created_at TEXT NOT NULL
			)
		`},
		{"sessions", `
			CREATE TABLE IF NOT EXISTS sessions (
				id TEXT PRIMARY KEY,
				user_id TEXT REFERENCES users(id),
				state_vector TEXT,
				covariance TEXT,
				answered_qids TEXT NOT NULL DEFAULT '[]',
				status TEXT NOT NULL DEFAULT 'active',
				completion_reason TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				completed_at TEXT
			)
		`},
		{"questions", `
			CREATE TABLE IF NOT EXISTS questions (
				id TEXT PRIMARY KEY,
				text TEXT NOT NULL,
				type TEXT NOT NULL,
				options TEXT,
				targets TEXT,
				info_weight TEXT,
				difficulty REAL NOT NULL DEFAULT 1.0,
				locale TEXT NOT NULL DEFAULT 'en',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`},
		{"responses", `
			CREATE TABLE IF NOT EXISTS responses (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL REFERENCES sessions(id),
				question_id TEXT NOT NULL REFERENCES questions(id),
				payload TEXT NOT NULL,
				latency_ms INTEGER,
				timestamp TEXT NOT NULL
			)
		`},
		{"archetypes", `
			CREATE TABLE IF NOT EXISTS archetypes (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				vector TEXT NOT NULL,
				min_requirements TEXT,
				contraindications TEXT,
				resources TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`},
		{"match_reports", `
			CREATE TABLE IF NOT EXISTS match_reports (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL UNIQUE REFERENCES sessions(id),
				recommendations TEXT NOT NULL,
				confidence REAL,
				average_uncertainty REAL,
				created_at TEXT NOT NULL
			)
		`},
	}

	for _, st := range statements {
		if _, err := tx.Exec(st.query); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.name, err)
		}
	}

	return nil
}

// migration002ResponseIndex speeds up loading a session's responses.
func migration002ResponseIndex(tx *sql.Tx) error {
	if _, err := tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_responses_session
		ON responses(session_id, timestamp)
	`); err != nil {
		return fmt.Errorf("failed to create responses session index: %w", err)
	}
	return nil
}

// toJSON encodes v for a TEXT column. Nil slices and maps become NULL.
func toJSON(v any) (sql.NullString, error) {
	if isNil(v) {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// fromJSON decodes a nullable TEXT column into dst. NULL leaves dst untouched.
func fromJSON(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func isNil(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case []any:
		return val == nil
	case []int:
		return val == nil
	case []float64:
		return val == nil
	case []string:
		return val == nil
	case map[int]float64:
		return val == nil
	case map[string]any:
		return val == nil
	}
	return false
}

// formatTime stores timestamps as RFC3339 with nanoseconds in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(col sql.NullString) (*time.Time, error) {
	if !col.Valid {
		return nil, nil
	}
	t, err := parseTime(col.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
