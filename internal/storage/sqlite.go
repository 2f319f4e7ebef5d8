// Package storage persists reviewed entities directly into a project's
// SQLite database, for use when the analysis backend is not running.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DatabaseFile is the name of the project database inside a project directory.
const DatabaseFile = "fleshnote.db"

// SQLiteStorage implements service.Store on a project database.
type SQLiteStorage struct {
	db        *sql.DB
	snapshots *SnapshotManager
	dbPath    string
}

var _ service.Store = (*SQLiteStorage)(nil)

// OpenProject opens the database of an existing project directory.
func OpenProject(projectPath string) (*SQLiteStorage, error) {
	if err := validateString(projectPath, "projectPath"); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(projectPath, DatabaseFile)
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	return NewSQLiteStorage(dbPath)
}

// NewSQLiteStorage opens (or creates) the database at dbPath. ":memory:"
// opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The desktop app may hold the same file open; one connection keeps
	// writes serialized on our side.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string { return s.dbPath }

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, rolling back on error.
func (s *SQLiteStorage) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
