package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

func loreItem() review.Item {
	return review.Item{
		Candidate: model.Candidate{
			ID:         "c1",
			Name:       "Sunblade",
			Snippet:    "The Sunblade\nburned   white.",
			SpacyLabel: "MISC",
			Aliases:    []string{"the blade", "Dawnbringer"},
			Frequency:  4,
		},
		Edit: model.Edit{
			Type:            model.EntityLore,
			LoreCategory:    "artifact",
			NameOverride:    "Sunblade of Dawn",
			AliasesAccepted: []bool{true, false},
		},
	}
}

func TestRenderCard(t *testing.T) {
	out := RenderCard(themes.Default, loreItem(), CardOptions{Width: 80})

	assert.Contains(t, out, "LORE")
	assert.Contains(t, out, "Sunblade of Dawn")
	assert.Contains(t, out, "was Sunblade")
	assert.Contains(t, out, "category: artifact")
	assert.Contains(t, out, "The Sunblade burned white.")
	assert.Contains(t, out, "×4")
	assert.Contains(t, out, "MISC")
	assert.NotContains(t, out, "1:the blade")
}

func TestRenderCard_AliasNumbers(t *testing.T) {
	out := RenderCard(themes.Default, loreItem(), CardOptions{Width: 80, Aliases: true})
	assert.Contains(t, out, "1:the blade")
	assert.Contains(t, out, "2:Dawnbringer")
}

func TestRenderCard_Suggestion(t *testing.T) {
	it := review.Item{Candidate: model.Candidate{Name: "Kael", SuggestedType: model.EntityCharacter}}
	out := RenderCard(themes.CatppuccinMocha, it, CardOptions{})
	assert.Contains(t, out, "suggested: Character")
}

func TestRenderCard_Existing(t *testing.T) {
	it := review.Item{Candidate: model.Candidate{Name: "Elia"}, Existing: model.EntityCharacter}
	out := RenderCard(themes.Default, it, CardOptions{})
	assert.Contains(t, out, "already in project (character)")

	it.Existing = ""
	assert.NotContains(t, RenderCard(themes.Default, it, CardOptions{}), "already in project")
}

func TestRenderSidebar(t *testing.T) {
	sections := []review.SidebarSection{
		{Type: model.EntityCharacter, Items: []review.Item{{Candidate: model.Candidate{Name: "Elia"}, Edit: model.Edit{Type: model.EntityCharacter}}}},
		{Type: model.EntityLore, Items: []review.Item{loreItem()}},
	}
	out := RenderSidebar(themes.Default, sections, 40)

	assert.Contains(t, out, "Character (1)")
	assert.Contains(t, out, "Elia")
	assert.Contains(t, out, "Lore (1)")
	assert.Contains(t, out, "[artifact]")

	empty := RenderSidebar(themes.Default, nil, 40)
	assert.Contains(t, empty, "nothing yet")
}

func TestRenderFocus(t *testing.T) {
	layout := review.FocusLayout{
		Item:       loreItem(),
		Categories: []string{"item", "artifact"},
		Index:      1,
		Total:      5,
		Classified: 2,
	}
	out := RenderFocus(themes.Default, layout, 80, false)

	assert.Contains(t, out, "2 of 5")
	assert.Contains(t, out, "[3] Lore")
	assert.Contains(t, out, "artifact")
	assert.Contains(t, out, "category")
}

func TestCountsPanel(t *testing.T) {
	p := NewCountsPanel(themes.Default)
	p.Resize(40)
	p.SetCounts(model.Counts{Character: 2, Location: 1, Unclassified: 1})

	out := p.View()
	assert.Contains(t, out, "3/4 classified (75%)")
	assert.Contains(t, out, "CHAR 2")

	p.SetCompact(true)
	assert.NotContains(t, p.View(), "Progress")
	assert.Contains(t, p.View(), "LOC")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "a b", Truncate(" a\n b ", 5))
}
