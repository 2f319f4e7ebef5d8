// Package components renders the pieces of the review screen.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

// CountsPanel displays the live classification tally.
type CountsPanel struct {
	theme       themes.Theme
	progressBar progress.Model
	counts      model.Counts
	width       int
	compact     bool
}

// NewCountsPanel creates a new counts panel.
func NewCountsPanel(theme themes.Theme) CountsPanel {
	prog := progress.New(progress.WithDefaultGradient())
	prog.ShowPercentage = false

	return CountsPanel{
		theme:       theme,
		progressBar: prog,
		width:       40,
	}
}

// SetCounts replaces the tally.
func (p *CountsPanel) SetCounts(c model.Counts) {
	p.counts = c
}

// SetCompact toggles the one-line rendering.
func (p *CountsPanel) SetCompact(compact bool) {
	p.compact = compact
}

// Resize updates the panel width.
func (p *CountsPanel) Resize(width int) {
	p.width = width
	p.progressBar.Width = max(10, min(width-4, 40))
}

// View renders the panel.
func (p CountsPanel) View() string {
	if p.compact {
		return p.renderCompact()
	}

	total := p.counts.Total()
	percent := 0.0
	if total > 0 {
		percent = float64(p.counts.Classified()) / float64(total)
	}

	rows := []string{
		p.theme.Subtitle.Render("Progress"),
		p.progressBar.ViewAs(percent),
		fmt.Sprintf("%d/%d classified (%.0f%%)", p.counts.Classified(), total, percent*100),
		"",
	}
	rows = append(rows, p.lines()...)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (p CountsPanel) renderCompact() string {
	return strings.Join(p.lines(), "  ")
}

func (p CountsPanel) lines() []string {
	entries := []struct {
		typ model.EntityType
		n   int
	}{
		{model.EntityCharacter, p.counts.Character},
		{model.EntityLocation, p.counts.Location},
		{model.EntityLore, p.counts.Lore},
		{model.EntitySkip, p.counts.Skip},
		{model.EntityUnclassified, p.counts.Unclassified},
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, fmt.Sprintf("%s %d", p.theme.TypeBadge(e.typ), e.n))
	}
	return out
}
