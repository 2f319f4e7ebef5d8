package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/lorekeeper/internal/model"
)

func TestSession_CountsMatchEdits(t *testing.T) {
	s := reviewing(t, eliaResult())

	steps := []struct {
		id  string
		typ model.EntityType
	}{
		{"c3", model.EntityLore},
		{"c1", model.EntitySkip},
		{"c2", model.EntityCharacter},
		{"c3", model.EntityUnclassified},
		{"c1", model.EntityLocation},
	}
	for _, step := range steps {
		require.True(t, s.SetType(step.id, step.typ))

		var want model.Counts
		for _, it := range s.Items() {
			want.Add(it.Edit.Type)
		}
		assert.Equal(t, want, s.Counts())
		assert.Equal(t, s.Len(), s.Counts().Total())
	}
}

func TestSession_SetTypeIdempotent(t *testing.T) {
	s := reviewing(t, eliaResult())

	require.True(t, s.SetType("c3", model.EntityLore))
	once, _ := s.Edit("c3")
	counts := s.Counts()

	require.True(t, s.SetType("c3", model.EntityLore))
	twice, _ := s.Edit("c3")
	assert.Equal(t, once, twice)
	assert.Equal(t, counts, s.Counts())
	assert.Equal(t, "item", twice.LoreCategory)
}

func TestSession_SetTypeIntoLoreResetsCategory(t *testing.T) {
	s := reviewing(t, eliaResult())

	require.True(t, s.SetType("c3", model.EntityLore))
	require.True(t, s.SetLoreCategory("c3", "Material"))

	// Lore again keeps the choice.
	require.True(t, s.SetType("c3", model.EntityLore))
	e, _ := s.Edit("c3")
	assert.Equal(t, "material", e.LoreCategory)

	// Leaving lore and coming back starts from the first category.
	require.True(t, s.SetType("c3", model.EntityCharacter))
	require.True(t, s.SetType("c3", model.EntityLore))
	e, _ = s.Edit("c3")
	assert.Equal(t, "item", e.LoreCategory)
}

func TestSession_SetTypeRejects(t *testing.T) {
	s := reviewing(t, eliaResult())
	assert.False(t, s.SetType("missing", model.EntityCharacter))
	assert.False(t, s.SetType("c1", model.EntityType("monster")))
}

func TestSession_SetLoreCategory(t *testing.T) {
	s := reviewing(t, eliaResult())

	assert.False(t, s.SetLoreCategory("c1", "   "))
	assert.True(t, s.SetLoreCategory("c1", "  Artifact "))

	e, _ := s.Edit("c1")
	assert.Equal(t, "artifact", e.LoreCategory)
	assert.Equal(t, model.EntityCharacter, e.Type, "category does not change the type")
}

func TestSession_CycleLoreCategory(t *testing.T) {
	s := reviewing(t, eliaResult(), "item", "artifact", "material")
	require.True(t, s.SetType("c3", model.EntityLore))

	cycle := func(step int) string {
		require.True(t, s.CycleLoreCategory("c3", step))
		e, _ := s.Edit("c3")
		return e.LoreCategory
	}
	assert.Equal(t, "artifact", cycle(1))
	assert.Equal(t, "material", cycle(1))
	assert.Equal(t, "item", cycle(1))
	assert.Equal(t, "material", cycle(-1))
}

func TestSession_ToggleAliasFiltersCommit(t *testing.T) {
	s := reviewing(t, eliaResult())

	require.True(t, s.ToggleAlias("c1", 1))
	assert.False(t, s.ToggleAlias("c1", 2))
	assert.False(t, s.ToggleAlias("c2", 0), "candidate without aliases")

	entities := s.CommitPreview()
	require.NotEmpty(t, entities)
	assert.Equal(t, "Elia", entities[0].Name)
	assert.Equal(t, []string{"Eli"}, entities[0].Aliases)

	require.True(t, s.ToggleAlias("c1", 0))
	entities = s.CommitPreview()
	assert.Empty(t, entities[0].Aliases)
	assert.NotNil(t, entities[0].Aliases, "aliases serialize as an empty list")
}

func TestSession_NameOverride(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "replaces name", input: "Elia Vance", want: "Elia Vance"},
		{name: "trims whitespace", input: "  Elia Vance  ", want: "Elia Vance"},
		{name: "empty clears", input: "   ", want: "Elia"},
		{name: "original clears", input: "Elia", want: "Elia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := reviewing(t, eliaResult())
			require.True(t, s.SetNameOverride("c1", "Someone Else"))
			require.True(t, s.SetNameOverride("c1", tt.input))

			assert.Equal(t, tt.want, s.DisplayName("c1"))
			assert.Equal(t, tt.want, s.CommitPreview()[0].Name)
		})
	}
}

func TestSession_NameEdit(t *testing.T) {
	s := reviewing(t, eliaResult())

	require.True(t, s.BeginNameEdit("c2"))
	id, editing := s.EditingName()
	assert.True(t, editing)
	assert.Equal(t, "c2", id)

	s.EndNameEdit("ignored", false)
	_, editing = s.EditingName()
	assert.False(t, editing)
	assert.Equal(t, "Rustspire", s.DisplayName("c2"))

	require.True(t, s.BeginNameEdit("c2"))
	s.EndNameEdit("Rust Spire", true)
	assert.Equal(t, "Rust Spire", s.DisplayName("c2"))
}

func TestSession_Categories(t *testing.T) {
	s := NewSession([]string{"Magic System", " Item ", "  "}, "en")
	assert.Equal(t, []string{"Magic System", "Item"}, s.Categories())

	name, added := s.AddCategory("  Ｍaterial ")
	assert.True(t, added)
	assert.Equal(t, "material", name)

	name, added = s.AddCategory("MAGIC SYSTEM")
	assert.False(t, added)
	assert.Equal(t, "Magic System", name)

	name, added = s.AddCategory("   ")
	assert.False(t, added)
	assert.Empty(t, name)

	assert.Equal(t, []string{"Magic System", "Item", "material"}, s.Categories())
	assert.True(t, s.HasCategory("item"))

	got, ok := s.LookupCategory("ＩＴＥＭ")
	require.True(t, ok)
	assert.Equal(t, "Item", got)
}

func TestSession_SetLoreCategoryUsesListedSpelling(t *testing.T) {
	s := reviewing(t, eliaResult(), "Magic System", "Item")
	require.True(t, s.SetType("c3", model.EntityLore))

	require.True(t, s.SetLoreCategory("c3", "magic system"))
	edit, _ := s.Edit("c3")
	assert.Equal(t, "Magic System", edit.LoreCategory)

	require.True(t, s.CycleLoreCategory("c3", 1))
	edit, _ = s.Edit("c3")
	assert.Equal(t, "Item", edit.LoreCategory)

	require.True(t, s.SetLoreCategory("c3", " Ruins "))
	edit, _ = s.Edit("c3")
	assert.Equal(t, "ruins", edit.LoreCategory)
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Weapon", want: "weapon"},
		{in: "  spell  ", want: "spell"},
		{in: "ＡＲＴＩＦＡＣＴ", want: "artifact"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCategory(tt.in), "input %q", tt.in)
	}
}

func TestSession_NoCategoriesFallsBackToItem(t *testing.T) {
	s := reviewing(t, eliaResult(), []string{}...)
	require.True(t, s.SetType("c3", model.EntityLore))

	entities := s.CommitPreview()
	require.Len(t, entities, 3)
	require.NotNil(t, entities[2].LoreCategory)
	assert.Equal(t, model.DefaultLoreCategory, *entities[2].LoreCategory)
}
