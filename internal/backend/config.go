package backend

import (
	"context"
	"fmt"

	"github.com/Veraticus/lorekeeper/internal/model"
)

type projectRequest struct {
	ProjectPath string `json:"project_path"`
}

type configResponse struct {
	Config model.ProjectConfig `json:"config"`
}

type configUpdateRequest struct {
	ConfigValue any    `json:"config_value"`
	ProjectPath string `json:"project_path"`
	ConfigKey   string `json:"config_key"`
	ConfigType  string `json:"config_type"`
}

// ProjectConfig reads the project configuration. Missing lore categories
// fall back to the project defaults.
func (c *Client) ProjectConfig(ctx context.Context) (model.ProjectConfig, error) {
	data, err := c.post(ctx, pathConfig, projectRequest{ProjectPath: c.projectPath})
	if err != nil {
		return model.ProjectConfig{}, fmt.Errorf("failed to load project config: %w", err)
	}

	var resp configResponse
	if err := decode(pathConfig, data, &resp); err != nil {
		return model.ProjectConfig{}, err
	}
	if len(resp.Config.LoreCategories) == 0 {
		resp.Config.LoreCategories = append([]string(nil), model.DefaultLoreCategories...)
	}
	return resp.Config, nil
}

// LoadCategories returns the project's lore categories.
func (c *Client) LoadCategories(ctx context.Context) ([]string, error) {
	cfg, err := c.ProjectConfig(ctx)
	if err != nil {
		return nil, err
	}
	return cfg.LoreCategories, nil
}

// SaveCategories replaces the project's lore category list.
func (c *Client) SaveCategories(ctx context.Context, categories []string) error {
	_, err := c.post(ctx, pathConfigUpdate, configUpdateRequest{
		ProjectPath: c.projectPath,
		ConfigKey:   model.LoreCategoriesKey,
		ConfigValue: categories,
		ConfigType:  "json",
	})
	if err != nil {
		return fmt.Errorf("failed to update lore categories: %w", err)
	}
	return nil
}
