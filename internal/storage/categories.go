package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
)

// configValue reads one project_config row. Missing keys return
// common.ErrNotFound.
func (s *SQLiteStorage) configValue(ctx context.Context, key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT config_value FROM project_config WHERE config_key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: config %s", common.ErrNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to query config %s: %w", key, err)
	}
	return value.String, nil
}

// LoadCategories returns the lore category list. A missing or unreadable
// entry yields the project defaults.
func (s *SQLiteStorage) LoadCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	raw, err := s.configValue(ctx, model.LoreCategoriesKey)
	if errors.Is(err, common.ErrNotFound) {
		return append([]string(nil), model.DefaultLoreCategories...), nil
	}
	if err != nil {
		return nil, err
	}

	var categories []string
	if err := json.Unmarshal([]byte(raw), &categories); err != nil || len(categories) == 0 {
		slog.Warn("lore categories unreadable, using defaults", "value", raw)
		return append([]string(nil), model.DefaultLoreCategories...), nil
	}

	slog.Debug("retrieved lore categories", "count", len(categories))
	return categories, nil
}

// SaveCategories replaces the lore category list.
func (s *SQLiteStorage) SaveCategories(ctx context.Context, categories []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategories(categories); err != nil {
		return err
	}
	if categories == nil {
		categories = []string{}
	}

	value, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("failed to marshal categories: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO project_config (config_key, config_value, config_type)
		VALUES (?, ?, 'json')
		ON CONFLICT(config_key) DO UPDATE SET
			config_value = excluded.config_value,
			config_type = excluded.config_type`,
		model.LoreCategoriesKey, string(value))
	if err != nil {
		return fmt.Errorf("failed to save lore categories: %w", err)
	}
	return nil
}

// ProjectConfig reads the configuration keys lorekeeper uses.
func (s *SQLiteStorage) ProjectConfig(ctx context.Context) (model.ProjectConfig, error) {
	categories, err := s.LoadCategories(ctx)
	if err != nil {
		return model.ProjectConfig{}, err
	}

	cfg := model.ProjectConfig{LoreCategories: categories}
	lang, err := s.configValue(ctx, "story_language")
	switch {
	case err == nil:
		cfg.StoryLanguage = lang
	case !errors.Is(err, common.ErrNotFound):
		return model.ProjectConfig{}, err
	}
	return cfg, nil
}
