package model

import "github.com/go-playground/validator/v10"

// Edit is the author's mutable classification decision for one candidate.
// Empty LoreCategory and NameOverride mean "unset".
type Edit struct {
	Type            EntityType `yaml:"type,omitempty"`
	LoreCategory    string     `yaml:"lore_category,omitempty"`
	NameOverride    string     `yaml:"name_override,omitempty"`
	AliasesAccepted []bool     `yaml:"aliases_accepted,omitempty"`
}

// Clone returns a deep copy of the edit.
func (e Edit) Clone() Edit {
	out := e
	out.AliasesAccepted = append([]bool(nil), e.AliasesAccepted...)
	return out
}

// Counts is the live aggregate of edit types across a review session.
type Counts struct {
	Character    int
	Location     int
	Lore         int
	Skip         int
	Unclassified int
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c.Character + c.Location + c.Lore + c.Skip + c.Unclassified
}

// Classified returns the number of candidates that will be committed.
func (c Counts) Classified() int {
	return c.Character + c.Location + c.Lore
}

// Add increments the counter for t.
func (c *Counts) Add(t EntityType) {
	switch t {
	case EntityCharacter:
		c.Character++
	case EntityLocation:
		c.Location++
	case EntityLore:
		c.Lore++
	case EntitySkip:
		c.Skip++
	default:
		c.Unclassified++
	}
}

// CommitEntity is one create-request sent to the persistence collaborator.
type CommitEntity struct {
	LoreCategory *string    `json:"lore_category" yaml:"lore_category,omitempty"`
	Name         string     `json:"name" yaml:"name" validate:"required"`
	Type         EntityType `json:"type" yaml:"type" validate:"required,oneof=character location lore"`
	Aliases      []string   `json:"aliases" yaml:"aliases"`
}

// Validate validates the CommitEntity using the validator.
func (c *CommitEntity) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Type == EntityLore && (c.LoreCategory == nil || *c.LoreCategory == "") {
		return ErrMissingLoreCategory
	}
	return nil
}

// CreatedEntity is one row reported back by the persistence collaborator.
type CreatedEntity struct {
	Type     EntityType `json:"type"`
	Name     string     `json:"name"`
	Category string     `json:"category,omitempty"`
	ID       int64      `json:"id"`
}
