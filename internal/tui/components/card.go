package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

const maxSnippet = 160

// CardOptions controls how a single candidate card is drawn.
type CardOptions struct {
	Width    int
	Selected bool
	Aliases  bool
}

// RenderCard draws one candidate with its current decision.
func RenderCard(theme themes.Theme, it review.Item, opts CardOptions) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.TypeBadge(it.Edit.Type),
		" ",
		theme.Bold.Render(it.Name()),
		renderMeta(theme, it),
	)

	lines := []string{header}
	if detail := decisionDetail(it); detail != "" {
		lines = append(lines, theme.Subtitle.Render(detail))
	}
	if it.Candidate.Snippet != "" {
		lines = append(lines, theme.Snippet.Render(Truncate(it.Candidate.Snippet, maxSnippet)))
	}
	if len(it.Candidate.Aliases) > 0 {
		lines = append(lines, RenderAliases(theme, it, opts.Aliases))
	}

	style := theme.Card
	if opts.Selected {
		style = theme.CardSelected
	}
	if opts.Width > 4 {
		style = style.Width(opts.Width - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func renderMeta(theme themes.Theme, it review.Item) string {
	parts := []string{}
	if it.Candidate.Frequency > 0 {
		parts = append(parts, fmt.Sprintf("×%d", it.Candidate.Frequency))
	}
	if it.Candidate.ChapterCount > 0 {
		parts = append(parts, fmt.Sprintf("%d ch", it.Candidate.ChapterCount))
	}
	if it.Candidate.SpacyLabel != "" {
		parts = append(parts, it.Candidate.SpacyLabel)
	}
	if len(parts) == 0 {
		return ""
	}
	return theme.Subtitle.Render("  " + strings.Join(parts, " · "))
}

func decisionDetail(it review.Item) string {
	var parts []string
	if it.Edit.NameOverride != "" {
		parts = append(parts, "was "+it.Candidate.Name)
	}
	if it.Edit.Type == model.EntityLore {
		parts = append(parts, "category: "+it.Edit.LoreCategory)
	}
	if it.Edit.Type == model.EntityUnclassified && it.Candidate.SuggestedType != model.EntityUnclassified {
		parts = append(parts, "suggested: "+it.Candidate.SuggestedType.Label())
	}
	if it.Existing != model.EntityUnclassified {
		parts = append(parts, "already in project ("+strings.ToLower(it.Existing.Label())+")")
	}
	return strings.Join(parts, "  ")
}

// RenderAliases lists the aliases of it, marking rejected ones. When
// numbered is true each alias shows the digit that toggles it.
func RenderAliases(theme themes.Theme, it review.Item, numbered bool) string {
	parts := make([]string, 0, len(it.Candidate.Aliases))
	for i, alias := range it.Candidate.Aliases {
		accepted := i < len(it.Edit.AliasesAccepted) && it.Edit.AliasesAccepted[i]
		label := alias
		if numbered && i < 9 {
			label = fmt.Sprintf("%d:%s", i+1, alias)
		}
		if accepted {
			parts = append(parts, theme.Normal.Render(label))
		} else {
			parts = append(parts, theme.StatusPending.Strikethrough(true).Render(label))
		}
	}
	return theme.Subtitle.Render("aka ") + strings.Join(parts, ", ")
}

// RenderGroupHeader draws the title line of a bucket.
func RenderGroupHeader(theme themes.Theme, g review.CardGroup) string {
	title := "Confident"
	if g.Bucket == model.BucketLowConfidence {
		title = "Low confidence"
	}
	marker := "▾"
	if g.Collapsed {
		marker = "▸"
	}
	return theme.Title.MarginBottom(0).Render(fmt.Sprintf("%s %s (%d)", marker, title, len(g.Items)))
}

// Truncate shortens s to at most n runes, adding an ellipsis.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "…"
}
