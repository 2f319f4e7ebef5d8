package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/lorekeeper/internal/ingest"
	"github.com/Veraticus/lorekeeper/internal/review"
)

const fileLoadTimeout = time.Minute

// analyzeCmd runs the analyzer off the UI loop. The outcome keeps its
// ticket generation so a late reply can be recognized as stale.
func (m Model) analyzeCmd(t review.Ticket) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		return analysisMsg{outcome: engine.FetchAnalysis(ctx, t)}
	}
}

// commitCmd sends the reviewed entities to the store off the UI loop.
func (m Model) commitCmd(t review.CommitTicket) tea.Cmd {
	engine, ctx := m.engine, m.ctx
	return func() tea.Msg {
		return commitMsg{outcome: engine.SubmitCommit(ctx, t)}
	}
}

// loadFileCmd reads a manuscript into the input box.
func (m Model) loadFileCmd(path string) tea.Cmd {
	previewer, parent := m.config.Previewer, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, fileLoadTimeout)
		defer cancel()

		text, sections, err := ingest.ReadManuscript(ctx, path, previewer)
		return fileLoadedMsg{path: path, text: text, sections: sections, err: err}
	}
}
