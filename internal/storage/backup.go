package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup errors.
var (
	ErrBackupExists      = errors.New("backup already exists")
	ErrBackupCorrupted   = errors.New("backup integrity check failed")
	ErrBackupUnsupported = errors.New("in-memory databases cannot be backed up")
)

// BackupInfo describes a database snapshot.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Path          string    `json:"path"`
	FileSize      int64     `json:"file_size"`
	Contacts      int       `json:"contacts"`
	SchemaVersion int       `json:"schema_version"`
}

// BackupDir is where snapshots of the database are written.
func (s *SQLiteStorage) BackupDir() string {
	return filepath.Join(filepath.Dir(s.dbPath), "backups")
}

// Backup snapshots the database under BackupDir. An empty tag is generated
// from the clock.
func (s *SQLiteStorage) Backup(ctx context.Context, tag string) (*BackupInfo, error) {
	if s.dbPath == MemoryDSN {
		return nil, ErrBackupUnsupported
	}
	if tag == "" {
		tag = "backup-" + s.clock.Now().Format("2006-01-02-150405")
	}
	if strings.ContainsAny(tag, `/\'";`) || strings.Contains(tag, "..") {
		return nil, fmt.Errorf("invalid backup tag %q", tag)
	}

	dir, err := filepath.Abs(s.BackupDir())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup directory: %w", err)
	}
	if strings.ContainsAny(dir, `'";`) {
		return nil, fmt.Errorf("invalid backup directory %q", dir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	dest := filepath.Join(dir, tag+".db")
	if _, err := os.Stat(dest); err == nil {
		return nil, ErrBackupExists
	}

	version, err := s.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	var contacts int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&contacts); err != nil {
		return nil, fmt.Errorf("failed to count contacts: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
	}
	// #nosec G201 - dest is built from a validated tag and directory
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}

	if err := verifyIntegrity(dest); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil {
			slog.Error("failed to remove corrupt backup", "path", dest, "error", rmErr)
		}
		return nil, err
	}

	stat, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := &BackupInfo{
		ID:            tag,
		Path:          dest,
		CreatedAt:     s.clock.Now(),
		FileSize:      stat.Size(),
		Contacts:      contacts,
		SchemaVersion: version,
	}
	if err := writeJSONFile(filepath.Join(dir, tag+".meta.json"), info); err != nil {
		slog.Warn("failed to write backup metadata", "error", err)
	}
	return info, nil
}

// ListBackups returns the snapshots with readable metadata, newest first.
func (s *SQLiteStorage) ListBackups() ([]BackupInfo, error) {
	matches, err := filepath.Glob(filepath.Join(s.BackupDir(), "*.meta.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	out := make([]BackupInfo, 0, len(matches))
	for _, m := range matches {
		var info BackupInfo
		if _, err := readJSONFile(m, &info); err != nil {
			slog.Warn("skipping unreadable backup metadata", "path", m, "error", err)
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("%w: %v", ErrBackupCorrupted, err)
	}
	if result != "ok" {
		return fmt.Errorf("%w: %s", ErrBackupCorrupted, result)
	}
	return nil
}
