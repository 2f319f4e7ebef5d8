package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// BulkCreate inserts every entity in one transaction. Lore entities
// without a category are filed under model.DefaultLoreCategory.
func (s *SQLiteStorage) BulkCreate(ctx context.Context, entities []model.CommitEntity) ([]model.CreatedEntity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateEntities(entities); err != nil {
		return nil, err
	}
	if s.snapshots != nil {
		if _, err := s.snapshots.Auto(ctx, "bulk create"); err != nil {
			slog.Warn("failed to snapshot project before writing", "error", err)
		}
	}

	created := make([]model.CreatedEntity, 0, len(entities))
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entities {
			row, err := insertEntity(ctx, tx, e)
			if err != nil {
				return err
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("created entities", "count", len(created), "db", s.dbPath)
	return created, nil
}

func insertEntity(ctx context.Context, tx *sql.Tx, e model.CommitEntity) (model.CreatedEntity, error) {
	aliases := e.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	aliasesJSON, err := json.Marshal(aliases)
	if err != nil {
		return model.CreatedEntity{}, fmt.Errorf("failed to marshal aliases: %w", err)
	}

	created := model.CreatedEntity{Type: e.Type, Name: e.Name}

	var result sql.Result
	switch e.Type {
	case model.EntityCharacter:
		result, err = tx.ExecContext(ctx, `INSERT INTO characters (name, aliases) VALUES (?, ?)`, e.Name, string(aliasesJSON))
	case model.EntityLocation:
		result, err = tx.ExecContext(ctx, `INSERT INTO locations (name, aliases) VALUES (?, ?)`, e.Name, string(aliasesJSON))
	case model.EntityLore:
		category := model.DefaultLoreCategory
		if e.LoreCategory != nil && *e.LoreCategory != "" {
			category = *e.LoreCategory
		}
		created.Category = category
		result, err = tx.ExecContext(ctx, `INSERT INTO lore_entities (name, category, aliases) VALUES (?, ?, ?)`, e.Name, category, string(aliasesJSON))
	default:
		return model.CreatedEntity{}, fmt.Errorf("%w: type %q", ErrInvalidEntity, e.Type)
	}
	if err != nil {
		return model.CreatedEntity{}, fmt.Errorf("failed to insert %s %q: %w", e.Type, e.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return model.CreatedEntity{}, fmt.Errorf("failed to get inserted id: %w", err)
	}
	created.ID = id
	return created, nil
}

// EntityNames returns the names of existing entities of type t, used to
// flag candidates that are already in the project.
func (s *SQLiteStorage) EntityNames(ctx context.Context, t model.EntityType) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var table string
	switch t {
	case model.EntityCharacter:
		table = "characters"
	case model.EntityLocation:
		table = "locations"
	case model.EntityLore:
		table = "lore_entities"
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidEntity, t)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM "+table+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", table, err)
	}
	return names, nil
}
