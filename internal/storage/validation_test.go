package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/lorekeeper/internal/model"
)

func TestValidateContext(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{name: "valid context", ctx: context.Background()},
		{name: "nil context", ctx: nil, wantErr: true},
		{name: "canceled context still valid", ctx: canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	assert.NoError(t, validateString("  test  ", "param"))

	err := validateString("   ", "projectPath")
	require.ErrorIs(t, err, ErrEmptyString)
	assert.Contains(t, err.Error(), "projectPath")
}

func TestValidateEntities(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		entities []model.CommitEntity
	}{
		{name: "nil batch", entities: nil, wantErr: ErrNilParameter},
		{name: "empty batch", entities: []model.CommitEntity{}, wantErr: ErrEmptySlice},
		{name: "blank name", entities: []model.CommitEntity{{Name: " ", Type: model.EntityCharacter}}, wantErr: ErrInvalidEntity},
		{name: "skip is not creatable", entities: []model.CommitEntity{{Name: "Elia", Type: model.EntitySkip}}, wantErr: ErrInvalidEntity},
		{name: "valid", entities: []model.CommitEntity{{Name: "Elia", Type: model.EntityCharacter}, {Name: "Rustspire", Type: model.EntityLocation}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntities(tt.entities)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateCategories(t *testing.T) {
	assert.NoError(t, validateCategories([]string{"item", "spell"}))
	assert.NoError(t, validateCategories(nil))
	assert.ErrorIs(t, validateCategories([]string{"item", "  "}), ErrInvalidCatList)
}
