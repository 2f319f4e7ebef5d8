// Package tui is the terminal front end of the review workflow.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/service"
	"github.com/Veraticus/lorekeeper/internal/tui/components"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

// inputMode is the text widget that currently owns the keyboard.
type inputMode int

const (
	modeNone inputMode = iota
	modeCategory
	modeRename
	modeAlias
	modePicker
)

// Result is what the author decided when the UI exits.
type Result struct {
	Committed []model.CommitEntity
	Created   []model.CreatedEntity
	Stats     service.CompletionStats
	Abandoned bool
}

// Model holds the main TUI state. All session mutation happens in Update,
// which bubbletea runs on a single goroutine.
type Model struct {
	ctx       context.Context
	theme     themes.Theme
	engine    *review.Engine
	session   *review.Session
	picker    filepicker.Model
	textarea  textarea.Model
	catInput  textinput.Model
	nameInput textinput.Model
	spinner   spinner.Model
	help      help.Model
	counts    components.CountsPanel
	status    string
	config    Config
	keymap    KeyMap
	width     int
	height    int
	mode      inputMode
	statusErr bool
	abandoned bool
	quitting  bool
	// confirmAbandon is set after the first quit key in review; the next
	// key decides.
	confirmAbandon bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, engine *review.Engine, cfg Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Paste manuscript text here, or press ctrl+o to open a file…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	cat := textinput.New()
	cat.Placeholder = "category name"
	cat.Prompt = "New category: "
	cat.CharLimit = 40

	name := textinput.New()
	name.Prompt = "Rename: "
	name.CharLimit = 120

	m := Model{
		ctx:       ctx,
		theme:     cfg.Theme,
		engine:    engine,
		session:   engine.Session(),
		picker:    newPicker(cfg.StartDir),
		textarea:  ta,
		catInput:  cat,
		nameInput: name,
		spinner:   sp,
		help:      help.New(),
		counts:    components.NewCountsPanel(cfg.Theme),
		config:    cfg,
		keymap:    DefaultKeyMap(),
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

func newPicker(dir string) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt", ".md", ".docx"}
	if dir != "" {
		fp.CurrentDirectory = dir
	}
	return fp
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.session.Phase() == review.PhaseAnalyzing {
		return tea.Batch(m.analyzeCmd(m.session.Pending()), m.spinner.Tick)
	}
	return textarea.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			return m.abandon()
		}
		return m.handleKey(msg)

	case analysisMsg:
		m.engine.ApplyAnalysis(msg.outcome)
		return m.afterOutcome()

	case commitMsg:
		m.engine.ApplyCommit(msg.outcome)
		return m.afterOutcome()

	case fileLoadedMsg:
		return m.handleFileLoaded(msg), nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Everything else belongs to whichever widget is active.
	var cmd tea.Cmd
	switch {
	case m.mode == modePicker:
		m.picker, cmd = m.picker.Update(msg)
	case m.session.Phase() == review.PhaseInput:
		m.textarea, cmd = m.textarea.Update(msg)
	case m.mode == modeCategory:
		m.catInput, cmd = m.catInput.Update(msg)
	case m.mode == modeRename:
		m.nameInput, cmd = m.nameInput.Update(msg)
	}
	return m, cmd
}

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// Result reports the outcome of the session.
func (m Model) Result() Result {
	return Result{
		Committed: m.session.Committed(),
		Created:   m.session.Created(),
		Stats:     m.engine.Stats(),
		Abandoned: m.abandoned,
	}
}

func (m Model) busy() bool {
	p := m.session.Phase()
	return p == review.PhaseAnalyzing || p == review.PhaseCreating
}

// afterOutcome reacts to a phase change caused by a collaborator reply.
func (m Model) afterOutcome() (tea.Model, tea.Cmd) {
	m.counts.SetCounts(m.session.Counts())
	if m.session.Phase() == review.PhaseDone {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) abandon() (tea.Model, tea.Cmd) {
	m.session.Abandon()
	m.abandoned = true
	m.quitting = true
	return m, tea.Quit
}

func (m Model) handleFileLoaded(msg fileLoadedMsg) Model {
	if msg.err != nil {
		m.setError("Could not open " + msg.path + ": " + msg.err.Error())
		return m
	}
	m.textarea.SetValue(msg.text)
	m.setStatus(fileStatus(msg))
	return m
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	m.textarea.SetWidth(max(20, width-4))
	m.textarea.SetHeight(max(3, height-8))
	m.picker.Height = max(5, height-8)
	m.help.Width = width
	m.counts.Resize(m.sidebarWidth())
	m.catInput.Width = max(10, width-20)
	m.nameInput.Width = max(10, width-20)
}

func (m Model) sidebarWidth() int {
	return max(24, m.width/4)
}

// currentID is the candidate under the cursor. Card and focus views share
// the session's focus index as their cursor; in card view it must also be
// on a visible card.
func (m Model) currentID() (string, bool) {
	if m.session.ViewMode() == review.ViewCard && m.session.FocusIndex() >= m.visibleLen() {
		return "", false
	}
	return m.session.FocusID()
}

// visibleLen is the number of candidates the card cursor can reach.
func (m Model) visibleLen() int {
	layout := m.session.CardView()
	n := 0
	for _, g := range layout.Groups {
		if g.Collapsed {
			continue
		}
		n += len(g.Items)
	}
	return n
}
