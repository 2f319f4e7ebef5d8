package backend

import (
	"context"
	"fmt"

	"github.com/Veraticus/lorekeeper/internal/model"
)

type bulkCreateRequest struct {
	ProjectPath string               `json:"project_path"`
	Entities    []model.CommitEntity `json:"entities"`
}

type bulkCreateResponse struct {
	Created []model.CreatedEntity `json:"created"`
}

// BulkCreate creates all entities in one request.
func (c *Client) BulkCreate(ctx context.Context, entities []model.CommitEntity) ([]model.CreatedEntity, error) {
	data, err := c.post(ctx, pathBulkCreate, bulkCreateRequest{
		ProjectPath: c.projectPath,
		Entities:    entities,
	})
	if err != nil {
		return nil, fmt.Errorf("bulk create failed: %w", err)
	}

	var resp bulkCreateResponse
	if err := decode(pathBulkCreate, data, &resp); err != nil {
		return nil, err
	}
	return resp.Created, nil
}
