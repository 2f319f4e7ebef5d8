package backend

import (
	"context"
	"fmt"

	"github.com/Veraticus/lorekeeper/internal/model"
)

type splitRequest struct {
	ProjectPath string `json:"project_path"`
	FilePath    string `json:"file_path"`
}

type splitResponse struct {
	Splits []model.Split `json:"splits"`
}

// SplitPreview asks the backend to read and section a manuscript file.
func (c *Client) SplitPreview(ctx context.Context, path string) ([]model.Split, error) {
	data, err := c.post(ctx, pathSplitPreview, splitRequest{
		ProjectPath: c.projectPath,
		FilePath:    path,
	})
	if err != nil {
		return nil, fmt.Errorf("split preview failed: %w", err)
	}

	var resp splitResponse
	if err := decode(pathSplitPreview, data, &resp); err != nil {
		return nil, err
	}
	return resp.Splits, nil
}
