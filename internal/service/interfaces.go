// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// Analyzer runs named-entity analysis over manuscript text.
type Analyzer interface {
	Analyze(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error)
}

// EntityStore persists classified entities in one batch.
type EntityStore interface {
	BulkCreate(ctx context.Context, entities []model.CommitEntity) ([]model.CreatedEntity, error)
}

// CategoryStore reads and writes the project's lore category list.
//
// Writes are treated as eventually consistent: callers update their local
// list first and never roll it back when SaveCategories fails.
type CategoryStore interface {
	LoadCategories(ctx context.Context) ([]string, error)
	SaveCategories(ctx context.Context, categories []string) error
}

// EntityCatalog lists entities the project already has.
type EntityCatalog interface {
	EntityNames(ctx context.Context, t model.EntityType) ([]string, error)
}

// SplitPreviewer reads a manuscript file and returns its proposed sections.
type SplitPreviewer interface {
	SplitPreview(ctx context.Context, path string) ([]model.Split, error)
}

// Store is a persistence collaborator that owns both entities and categories.
type Store interface {
	EntityStore
	CategoryStore
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// CompletionStats shows the results of a review session.
type CompletionStats struct {
	Counts   model.Counts
	Created  int
	Duration time.Duration
}
