package review

import (
	"errors"
	"fmt"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// CommitPreview returns what Confirm would submit right now.
func (s *Session) CommitPreview() []model.CommitEntity {
	return BuildCommit(s.Items())
}

// BuildCommit turns reviewed items into create-requests. Unclassified and
// skipped items are dropped; aliases are filtered by acceptance and the
// name override replaces the detected name.
func BuildCommit(items []Item) []model.CommitEntity {
	var out []model.CommitEntity
	for _, it := range items {
		if !it.Edit.Type.IsClassified() {
			continue
		}

		entity := model.CommitEntity{
			Name:    it.Name(),
			Type:    it.Edit.Type,
			Aliases: acceptedAliases(it.Candidate.Aliases, it.Edit.AliasesAccepted),
		}
		if it.Edit.Type == model.EntityLore {
			category := it.Edit.LoreCategory
			if category == "" {
				category = model.DefaultLoreCategory
			}
			entity.LoreCategory = &category
		}
		out = append(out, entity)
	}
	return out
}

func acceptedAliases(aliases []string, accepted []bool) []string {
	out := make([]string, 0, len(aliases))
	for i, a := range aliases {
		if i < len(accepted) && !accepted[i] {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ValidateCommit checks every entity and joins the failures.
func ValidateCommit(entities []model.CommitEntity) error {
	var errs []error
	for i := range entities {
		if err := entities[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("entity %d (%q): %w", i, entities[i].Name, err))
		}
	}
	return errors.Join(errs...)
}
