package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/tui/components"
)

// render lays out the screen for the current phase.
func (m Model) render() string {
	var body string
	switch m.session.Phase() {
	case review.PhaseInput:
		body = m.renderInput()
	case review.PhaseAnalyzing:
		body = m.renderBusy(m.analyzingLabel())
	case review.PhaseReview:
		body = m.renderReview()
	case review.PhaseCreating:
		body = m.renderBusy(fmt.Sprintf("Creating %d entities…", len(m.session.PendingCommit().Entities)))
	case review.PhaseError:
		body = m.renderError()
	case review.PhaseDone:
		body = m.theme.StatusSuccess.Render("Done.")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.MarginBottom(0).Render("Lorekeeper")
	phase := m.theme.Subtitle.Render(" · " + m.session.Phase().String())
	return title + phase
}

func (m Model) renderFooter() string {
	var lines []string
	switch m.mode {
	case modeCategory:
		lines = append(lines, m.catInput.View())
	case modeRename:
		lines = append(lines, m.nameInput.View())
	}

	if m.status != "" {
		style := m.theme.StatusInfo
		if m.statusErr {
			style = m.theme.StatusError
		}
		lines = append(lines, style.Render(m.status))
	}

	switch m.session.Phase() {
	case review.PhaseInput:
		lines = append(lines, m.help.View(inputKeys{m.keymap}))
	case review.PhaseReview:
		lines = append(lines, m.help.View(m.keymap))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderInput() string {
	if m.mode == modePicker {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.theme.Subtitle.Render("Pick a manuscript (.txt, .md, .docx) · ctrl+o to cancel"),
			m.theme.Subtitle.Render(m.picker.CurrentDirectory),
			m.picker.View(),
		)
	}
	return m.textarea.View()
}

func (m Model) analyzingLabel() string {
	req := m.session.Request()
	if req.IsChapters() {
		return fmt.Sprintf("Analyzing %d chapters…", len(req.Texts))
	}
	return fmt.Sprintf("Analyzing %d words…", len(strings.Fields(req.Text)))
}

func (m Model) renderBusy(label string) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.spinner.View()+" "+label,
		m.theme.StatusPending.Render("esc to abandon"),
	)
	return lipgloss.Place(m.width, max(3, m.height-4), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderError() string {
	hint := "r to edit the text again"
	if m.session.IsAuto() || m.session.FailedFrom() == review.PhaseCreating {
		hint = "r to retry"
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.StatusError.Render(m.session.Err()),
		"",
		m.theme.Subtitle.Render(hint+" · esc to abandon"),
	)
	return lipgloss.Place(m.width, max(3, m.height-4), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderReview() string {
	if m.session.Len() == 0 {
		return m.theme.StatusWarning.Render("No entities found. Press ctrl+s to finish or esc to quit.")
	}

	counts := m.counts
	counts.SetCounts(m.session.Counts())

	if m.session.ViewMode() == review.ViewFocus {
		layout, _ := m.session.FocusView()
		counts.SetCompact(false)
		main := components.RenderFocus(m.theme, layout, m.mainWidth(), m.mode == modeAlias)
		return lipgloss.JoinHorizontal(lipgloss.Top, main, "  ", counts.View())
	}

	layout := m.session.CardView()
	counts.SetCompact(true)
	main := lipgloss.JoinVertical(lipgloss.Left,
		counts.View(),
		m.renderCards(layout, m.bodyHeight()-1),
	)
	if !layout.SidebarOpen || m.width < 80 {
		return main
	}
	sidebar := components.RenderSidebar(m.theme, layout.Sidebar, m.sidebarWidth())
	return lipgloss.JoinHorizontal(lipgloss.Top, main, sidebar)
}

func (m Model) mainWidth() int {
	if m.session.ViewMode() == review.ViewCard && m.session.SidebarOpen() && m.width >= 80 {
		return m.width - m.sidebarWidth() - 1
	}
	if m.session.ViewMode() == review.ViewFocus {
		return max(30, m.width-m.sidebarWidth()-2)
	}
	return m.width
}

func (m Model) bodyHeight() int {
	return max(5, m.height-5)
}

// renderCards draws both buckets and scrolls so the cursor card is visible.
func (m Model) renderCards(layout review.CardLayout, height int) string {
	cursor := m.session.FocusIndex()
	width := m.mainWidth()

	var lines []string
	cursorTop, cursorBottom := 0, 0
	for _, g := range layout.Groups {
		if len(g.Items) == 0 {
			continue
		}
		lines = append(lines, components.RenderGroupHeader(m.theme, g))
		if g.Collapsed {
			continue
		}
		for _, it := range g.Items {
			selected := it.Index == cursor
			card := components.RenderCard(m.theme, it, components.CardOptions{
				Width:    width,
				Selected: selected,
				Aliases:  selected && m.mode == modeAlias,
			})
			if selected {
				cursorTop = len(lines)
			}
			lines = append(lines, strings.Split(card, "\n")...)
			if selected {
				cursorBottom = len(lines)
			}
		}
	}

	if len(lines) <= height {
		return strings.Join(lines, "\n")
	}
	top := 0
	if cursorBottom > height {
		top = cursorBottom - height
	}
	if cursorTop < top {
		top = cursorTop
	}
	end := min(len(lines), top+height)
	return strings.Join(lines[top:end], "\n")
}
