package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrNilParameter   = errors.New("parameter cannot be nil")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidEntity  = errors.New("invalid entity")
	ErrInvalidCatList = errors.New("invalid category list")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateEntities validates a bulk-create batch.
func validateEntities(entities []model.CommitEntity) error {
	if entities == nil {
		return fmt.Errorf("%w: entities", ErrNilParameter)
	}
	if len(entities) == 0 {
		return fmt.Errorf("%w: entities", ErrEmptySlice)
	}
	for i := range entities {
		if strings.TrimSpace(entities[i].Name) == "" {
			return fmt.Errorf("entity at index %d: %w: missing name", i, ErrInvalidEntity)
		}
		switch entities[i].Type {
		case model.EntityCharacter, model.EntityLocation, model.EntityLore:
		default:
			return fmt.Errorf("entity at index %d: %w: type %q", i, ErrInvalidEntity, entities[i].Type)
		}
	}
	return nil
}

// validateCategories rejects blank entries.
func validateCategories(categories []string) error {
	for i, c := range categories {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("%w: blank entry at index %d", ErrInvalidCatList, i)
		}
	}
	return nil
}
