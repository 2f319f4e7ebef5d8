package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

// RenderSidebar lists classified entities grouped by type.
func RenderSidebar(theme themes.Theme, sections []review.SidebarSection, width int) string {
	lines := []string{theme.Title.Render("Classified")}
	if len(sections) == 0 {
		lines = append(lines, theme.StatusPending.Render("nothing yet"))
	}

	for _, sec := range sections {
		heading := lipgloss.NewStyle().
			Foreground(theme.TypeColor(sec.Type)).
			Bold(true).
			Render(fmt.Sprintf("%s (%d)", sec.Type.Label(), len(sec.Items)))
		lines = append(lines, heading)

		for _, it := range sec.Items {
			name := it.Name()
			if sec.Type == model.EntityLore {
				name += theme.Subtitle.Render(" [" + it.Edit.LoreCategory + "]")
			}
			lines = append(lines, "  "+name)
		}
		lines = append(lines, "")
	}

	style := theme.Sidebar
	if width > 2 {
		style = style.Width(width - 2)
	}
	return style.Render(strings.TrimRight(strings.Join(lines, "\n"), "\n"))
}
