package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version lorekeeper knows.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// Versions are tracked in lorekeeper_migrations rather than PRAGMA
// user_version, which belongs to the desktop app that owns the file.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Entity and project config tables",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS project_config (
					config_key   TEXT PRIMARY KEY,
					config_value TEXT,
					config_type  TEXT
				)`,
				`CREATE TABLE IF NOT EXISTS characters (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					name       TEXT NOT NULL,
					aliases    TEXT,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS locations (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					name       TEXT NOT NULL,
					aliases    TEXT,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS lore_entities (
					id         INTEGER PRIMARY KEY AUTOINCREMENT,
					name       TEXT NOT NULL,
					aliases    TEXT,
					category   TEXT NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
				)`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Default lore categories",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				INSERT OR IGNORE INTO project_config (config_key, config_value, config_type)
				VALUES ('lore_categories', '["item","artifact","material"]', 'json')`)
			if err != nil {
				return fmt.Errorf("failed to seed lore categories: %w", err)
			}
			return nil
		},
	},
}

// Migrate brings the schema up to ExpectedSchemaVersion. Tables that the
// desktop app already created are left untouched.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lorekeeper_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		err := s.withTx(ctx, func(tx *sql.Tx) error {
			if upErr := migration.Up(tx); upErr != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
			}
			if _, execErr := tx.Exec(`INSERT INTO lorekeeper_migrations (version) VALUES (?)`, migration.Version); execErr != nil {
				return fmt.Errorf("failed to record schema version: %w", execErr)
			}
			return nil
		})
		if err != nil {
			return err
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}
	return nil
}

// SchemaVersion returns the highest applied migration.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM lorekeeper_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
