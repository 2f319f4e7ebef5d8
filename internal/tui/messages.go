package tui

import "github.com/Veraticus/lorekeeper/internal/review"

// analysisMsg carries an analyzer outcome back to the UI loop.
type analysisMsg struct {
	outcome review.AnalysisOutcome
}

// commitMsg carries a bulk-create outcome back to the UI loop.
type commitMsg struct {
	outcome review.CommitOutcome
}

// fileLoadedMsg reports a manuscript file read into the input box.
type fileLoadedMsg struct {
	err      error
	path     string
	text     string
	sections int
}
