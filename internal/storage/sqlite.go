package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mlynnf123/gfmd-outreach/internal/common"
	"github.com/mlynnf123/gfmd-outreach/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultCooldown is how long a contacted prospect is held back from outreach.
const DefaultCooldown = 30 * 24 * time.Hour

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// SQLiteStorage implements service.ContactStore using SQLite.
type SQLiteStorage struct {
	db       *sql.DB
	clock    common.Clock
	dbPath   string
	cooldown time.Duration
}

// NewSQLiteStorage creates a new SQLite storage instance. A nil clock uses the
// system clock.
func NewSQLiteStorage(dbPath string, clock common.Clock) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != MemoryDSN {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if clock == nil {
		clock = common.SystemClock{}
	}

	return &SQLiteStorage{
		db:       db,
		clock:    clock,
		dbPath:   dbPath,
		cooldown: DefaultCooldown,
	}, nil
}

// SetCooldown overrides the recontact cooldown.
func (s *SQLiteStorage) SetCooldown(d time.Duration) {
	if d > 0 {
		s.cooldown = d
	}
}

// Path returns the database path.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

var _ service.ContactStore = (*SQLiteStorage)(nil)
