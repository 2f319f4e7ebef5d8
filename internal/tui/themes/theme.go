// Package themes holds the color palettes of the review TUI.
package themes

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// Theme defines the visual style for the TUI.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Normal        lipgloss.Style
	Bold          lipgloss.Style
	Snippet       lipgloss.Style
	Selected      lipgloss.Style
	Card          lipgloss.Style
	CardSelected  lipgloss.Style
	Sidebar       lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusPending lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Border        lipgloss.Color
	Character     lipgloss.Color
	Location      lipgloss.Color
	Lore          lipgloss.Color
	Skip          lipgloss.Color
}

// palette is the set of colors a theme is built from.
type palette struct {
	primary, secondary, fg, subtle, muted, border, surface lipgloss.Color
	success, warning, danger, info                         lipgloss.Color
	character, location, lore                              lipgloss.Color
}

func build(p palette) Theme {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)

	return Theme{
		Primary:   p.primary,
		Muted:     p.muted,
		Border:    p.border,
		Character: p.character,
		Location:  p.location,
		Lore:      p.lore,
		Skip:      p.muted,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.fg).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.subtle),
		Normal: lipgloss.NewStyle().
			Foreground(p.fg),
		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.fg),
		Snippet: lipgloss.NewStyle().
			Italic(true).
			Foreground(p.subtle),
		Selected: lipgloss.NewStyle().
			Background(p.primary).
			Foreground(p.surface).
			Bold(true),
		Card:         card,
		CardSelected: card.BorderForeground(p.secondary),
		Sidebar: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(p.border).
			PaddingLeft(1),

		StatusSuccess: lipgloss.NewStyle().Foreground(p.success).Bold(true),
		StatusWarning: lipgloss.NewStyle().Foreground(p.warning).Bold(true),
		StatusError:   lipgloss.NewStyle().Foreground(p.danger).Bold(true),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.info).Bold(true),
		StatusPending: lipgloss.NewStyle().Foreground(p.muted).Italic(true),
	}
}

// Default is the default theme.
var Default = build(palette{
	primary:   lipgloss.Color("#7c3aed"),
	secondary: lipgloss.Color("#a78bfa"),
	fg:        lipgloss.Color("#fafafa"),
	subtle:    lipgloss.Color("#a3a3a3"),
	muted:     lipgloss.Color("#737373"),
	border:    lipgloss.Color("#404040"),
	surface:   lipgloss.Color("#1a1a1a"),
	success:   lipgloss.Color("#10b981"),
	warning:   lipgloss.Color("#f59e0b"),
	danger:    lipgloss.Color("#ef4444"),
	info:      lipgloss.Color("#3b82f6"),
	character: lipgloss.Color("#f472b6"),
	location:  lipgloss.Color("#34d399"),
	lore:      lipgloss.Color("#fbbf24"),
})

// CatppuccinMocha is the Catppuccin Mocha theme.
var CatppuccinMocha = build(palette{
	primary:   lipgloss.Color("#cba6f7"),
	secondary: lipgloss.Color("#f5c2e7"),
	fg:        lipgloss.Color("#cdd6f4"),
	subtle:    lipgloss.Color("#a6adc8"),
	muted:     lipgloss.Color("#6c7086"),
	border:    lipgloss.Color("#45475a"),
	surface:   lipgloss.Color("#1e1e2e"),
	success:   lipgloss.Color("#a6e3a1"),
	warning:   lipgloss.Color("#f9e2af"),
	danger:    lipgloss.Color("#f38ba8"),
	info:      lipgloss.Color("#89dceb"),
	character: lipgloss.Color("#f5c2e7"),
	location:  lipgloss.Color("#94e2d5"),
	lore:      lipgloss.Color("#fab387"),
})

// Names lists the selectable theme names.
var Names = []string{"default", "catppuccin-mocha"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	switch name {
	case "catppuccin-mocha":
		return CatppuccinMocha
	default:
		return Default
	}
}

// TypeColor returns the accent color of an entity type.
func (t Theme) TypeColor(typ model.EntityType) lipgloss.Color {
	switch typ {
	case model.EntityCharacter:
		return t.Character
	case model.EntityLocation:
		return t.Location
	case model.EntityLore:
		return t.Lore
	default:
		return t.Skip
	}
}

// TypeBadge renders a short colored label for an entity type.
func (t Theme) TypeBadge(typ model.EntityType) string {
	label := "?"
	switch typ {
	case model.EntityCharacter:
		label = "CHAR"
	case model.EntityLocation:
		label = "LOC"
	case model.EntityLore:
		label = "LORE"
	case model.EntitySkip:
		label = "SKIP"
	}
	return lipgloss.NewStyle().
		Foreground(t.TypeColor(typ)).
		Bold(typ.IsClassified()).
		Width(4).
		Render(label)
}
