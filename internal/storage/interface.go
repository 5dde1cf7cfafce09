/*
Package storage implements the persistent store behind the interview service.

This package provides SQLite-based storage for users, sessions, responses,
the question catalog, archetypes and match reports. Schema changes are
applied through numbered migrations when the database is opened.

The database defaults to ~/.orbit/orbit.db and uses modernc.org/sqlite
(a pure Go, CGo-free implementation).
*/
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/khanglvm/orbit/internal/interview"
)

var _ interview.Store = (*SQLiteStorage)(nil)

// SQLiteStorage implements interview.Store using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	dbPath   string
	logger   *zap.Logger
	mu       sync.Mutex
	initOnce sync.Once
	initErr  error
}

// DefaultPath returns ~/.orbit/orbit.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".orbit", "orbit.db"), nil
}

// NewStorage creates a storage instance for the database at dbPath.
//
// Nothing is opened until Init is called. A nil logger discards output.
func NewStorage(dbPath string, logger *zap.Logger) *SQLiteStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLiteStorage{
		dbPath: dbPath,
		logger: logger,
	}
}

// Open creates a storage instance and initializes it.
func Open(dbPath string, logger *zap.Logger) (*SQLiteStorage, error) {
	s := NewStorage(dbPath, logger)
	if err := s.Init(); err != nil {
		return nil, err
	}
	return s, nil
}

// Init opens the database and runs migrations. It is safe to call more
// than once; later calls return the first result.
func (s *SQLiteStorage) Init() error {
	s.initOnce.Do(func() {
		s.initErr = s.open()
	})
	return s.initErr
}

func (s *SQLiteStorage) open() error {
	// Ensure directory exists
	if dir := filepath.Dir(s.dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", s.dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// single writer; s.mu serializes access on top of this
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	s.db = db

	if err := s.runMigrations(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Path returns the database file location.
func (s *SQLiteStorage) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}

// conn returns the open handle or an error when Init has not succeeded.
// Callers must hold s.mu.
func (s *SQLiteStorage) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not initialized: %s", s.dbPath)
	}
	return s.db, nil
}
