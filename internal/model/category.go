package model

import "errors"

// DefaultLoreCategory is used for lore entities when the project has no
// categories configured.
const DefaultLoreCategory = "item"

// LoreCategoriesKey is the project config key holding the category list.
const LoreCategoriesKey = "lore_categories"

// DefaultLoreCategories mirrors the defaults of an uninitialized project.
var DefaultLoreCategories = []string{"item", "artifact", "material"}

// ErrMissingLoreCategory is returned when a lore entity has no category.
var ErrMissingLoreCategory = errors.New("lore entity requires a category")

// ProjectConfig is the subset of project configuration lorekeeper reads.
type ProjectConfig struct {
	StoryLanguage  string   `json:"story_language"`
	LoreCategories []string `json:"lore_categories"`
}
