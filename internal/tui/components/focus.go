package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

// RenderFocus draws the one-at-a-time view of a candidate.
func RenderFocus(theme themes.Theme, layout review.FocusLayout, width int, aliasMode bool) string {
	position := theme.Subtitle.Render(fmt.Sprintf("%d of %d · %d classified", layout.Index+1, layout.Total, layout.Classified))

	card := RenderCard(theme, layout.Item, CardOptions{
		Width:    width,
		Selected: true,
		Aliases:  aliasMode,
	})

	return lipgloss.JoinVertical(lipgloss.Left,
		position,
		card,
		renderChoices(theme, layout.Item.Edit.Type),
		renderCategories(theme, layout),
	)
}

func renderChoices(theme themes.Theme, current model.EntityType) string {
	parts := make([]string, 0, len(model.EntityTypes))
	for i, t := range model.EntityTypes {
		label := fmt.Sprintf("[%d] %s", i+1, t.Label())
		style := lipgloss.NewStyle().Foreground(theme.TypeColor(t))
		if t == current {
			style = style.Bold(true).Underline(true)
		}
		parts = append(parts, style.Render(label))
	}
	return strings.Join(parts, "   ")
}

func renderCategories(theme themes.Theme, layout review.FocusLayout) string {
	if layout.Item.Edit.Type != model.EntityLore {
		return ""
	}
	parts := make([]string, 0, len(layout.Categories))
	for _, c := range layout.Categories {
		if c == layout.Item.Edit.LoreCategory {
			parts = append(parts, theme.Selected.Render(" "+c+" "))
			continue
		}
		parts = append(parts, theme.Normal.Render(c))
	}
	return theme.Subtitle.Render("category [ ] ") + strings.Join(parts, " ")
}
