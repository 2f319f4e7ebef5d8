package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SnapshotDir is where snapshots live, relative to the project directory.
const SnapshotDir = ".lorekeeper/snapshots"

// DefaultKeepSnapshots is how many automatic snapshots are retained.
const DefaultKeepSnapshots = 5

// Snapshot errors.
var (
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrSnapshotCorrupted = errors.New("snapshot integrity check failed")
	ErrInvalidSnapshotID = errors.New("invalid snapshot id")
)

// SnapshotInfo describes one copy of the project database.
type SnapshotInfo struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	Description string    `json:"description"`
	FileSize    int64     `json:"file_size"`
	Characters  int       `json:"characters"`
	Locations   int       `json:"locations"`
	Lore        int       `json:"lore"`
	Auto        bool      `json:"auto"`
}

// SnapshotManager copies the project database aside so a bad import can
// be undone. Metadata is kept in JSON sidecar files; the project database
// itself belongs to the desktop app and gets no extra tables.
type SnapshotManager struct {
	db   *sql.DB
	dir  string
	keep int
}

// NewSnapshotManager creates a manager for the database at dbPath.
func NewSnapshotManager(db *sql.DB, dbPath string) (*SnapshotManager, error) {
	if dbPath == ":memory:" {
		return nil, fmt.Errorf("%w: in-memory databases cannot be snapshotted", ErrInvalidSnapshotID)
	}
	dir := snapshotDir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &SnapshotManager{db: db, dir: dir, keep: DefaultKeepSnapshots}, nil
}

func snapshotDir(dbPath string) string {
	return filepath.Join(filepath.Dir(dbPath), SnapshotDir)
}

// EnableSnapshots makes BulkCreate take an automatic snapshot before it
// writes.
func (s *SQLiteStorage) EnableSnapshots() error {
	m, err := NewSnapshotManager(s.db, s.dbPath)
	if err != nil {
		return err
	}
	s.snapshots = m
	return nil
}

// Snapshots returns the snapshot manager, or nil when disabled.
func (s *SQLiteStorage) Snapshots() *SnapshotManager { return s.snapshots }

// Create copies the database under a new snapshot id.
func (m *SnapshotManager) Create(ctx context.Context, description string, auto bool) (SnapshotInfo, error) {
	prefix := "snapshot"
	if auto {
		prefix = "auto"
	}
	id := fmt.Sprintf("%s-%s-%s", prefix, time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	path := filepath.Join(m.dir, id+".db")

	info := SnapshotInfo{
		ID:          id,
		CreatedAt:   time.Now(),
		Description: description,
		Auto:        auto,
	}
	m.countRows(ctx, &info)

	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return SnapshotInfo{}, fmt.Errorf("failed to copy database: %w", err)
	}
	stat, err := os.Stat(path)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	info.FileSize = stat.Size()

	if err := writeJSON(filepath.Join(m.dir, id+".json"), info); err != nil {
		if rmErr := os.Remove(path); rmErr != nil {
			slog.Error("failed to remove snapshot after metadata failure", "error", rmErr)
		}
		return SnapshotInfo{}, fmt.Errorf("failed to save snapshot metadata: %w", err)
	}

	slog.Debug("created snapshot", "id", id, "size", info.FileSize)
	return info, nil
}

// Auto takes an automatic snapshot and prunes old automatic ones beyond
// the retention limit.
func (m *SnapshotManager) Auto(ctx context.Context, reason string) (SnapshotInfo, error) {
	info, err := m.Create(ctx, "before "+reason, true)
	if err != nil {
		return SnapshotInfo{}, err
	}

	snapshots, err := ListSnapshots(m.dir)
	if err != nil {
		slog.Warn("failed to list snapshots for cleanup", "error", err)
		return info, nil
	}
	kept := 0
	for _, s := range snapshots {
		if !s.Auto {
			continue
		}
		kept++
		if kept > m.keep {
			if err := DeleteSnapshot(m.dir, s.ID); err != nil {
				slog.Debug("failed to delete old snapshot", "error", err, "id", s.ID)
			}
		}
	}
	return info, nil
}

func (m *SnapshotManager) countRows(ctx context.Context, info *SnapshotInfo) {
	tables := []struct {
		dst   *int
		query string
	}{
		{&info.Characters, "SELECT COUNT(*) FROM characters"},
		{&info.Locations, "SELECT COUNT(*) FROM locations"},
		{&info.Lore, "SELECT COUNT(*) FROM lore_entities"},
	}
	for _, t := range tables {
		if err := m.db.QueryRowContext(ctx, t.query).Scan(t.dst); err != nil {
			// Table may not exist yet.
			*t.dst = 0
		}
	}
}

// ProjectSnapshotDir returns the snapshot directory of a project.
func ProjectSnapshotDir(projectPath string) string {
	return snapshotDir(filepath.Join(projectPath, DatabaseFile))
}

// ListSnapshots returns the snapshots in dir, newest first. Unreadable
// metadata files are skipped.
func ListSnapshots(dir string) ([]SnapshotInfo, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var out []SnapshotInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		var info SnapshotInfo
		if err := readJSON(filepath.Join(dir, entry.Name()), &info); err != nil {
			slog.Debug("skipping unreadable snapshot metadata", "file", entry.Name(), "error", err)
			continue
		}
		out = append(out, info)
	}

	slices.SortFunc(out, func(a, b SnapshotInfo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// DeleteSnapshot removes a snapshot and its metadata.
func DeleteSnapshot(dir, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}
	path := filepath.Join(dir, id+".db")
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	if err := os.Remove(filepath.Join(dir, id+".json")); err != nil {
		slog.Debug("failed to remove snapshot metadata", "error", err, "id", id)
	}
	return nil
}

// RestoreSnapshot replaces the database of projectPath with snapshot id.
// The database must not be open. The replaced file is kept next to it
// with a ".before-restore" suffix.
func RestoreSnapshot(projectPath, id string) error {
	if err := validateSnapshotID(id); err != nil {
		return err
	}
	dbPath := filepath.Join(projectPath, DatabaseFile)
	src := filepath.Join(ProjectSnapshotDir(projectPath), id+".db")

	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("failed to access snapshot: %w", err)
	}
	if err := verifyIntegrity(src); err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotCorrupted, err)
	}

	backup := dbPath + ".before-restore"
	if err := copyFile(dbPath, backup); err != nil {
		return fmt.Errorf("failed to back up current database: %w", err)
	}
	if err := copyFile(src, dbPath); err != nil {
		if restoreErr := copyFile(backup, dbPath); restoreErr != nil {
			slog.Error("failed to put back the original database", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}

	// WAL side files belong to the replaced database.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove stale WAL file", "error", err)
		}
	}
	return nil
}

func validateSnapshotID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotID, id)
	}
	return nil
}

func verifyIntegrity(path string) error {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// copyFile writes through a temp file and renames it into place.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // paths are built from the project directory
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	out, err := os.Create(tmp) //nolint:gosec // see above
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // paths are built from the project directory
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
