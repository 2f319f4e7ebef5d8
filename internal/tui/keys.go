package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
)

// handleKey routes a key press by phase and active widget.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.session.Phase() {
	case review.PhaseInput:
		return m.handleInputKey(msg)
	case review.PhaseAnalyzing:
		if msg.Type == tea.KeyEsc {
			return m.abandon()
		}
	case review.PhaseCreating:
		m.setStatus("Creating entities, please wait…")
	case review.PhaseError:
		return m.handleErrorKey(msg)
	case review.PhaseReview:
		return m.handleReviewKey(msg)
	case review.PhaseDone:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modePicker {
		return m.handlePickerKey(msg)
	}

	switch {
	case msg.Type == tea.KeyEsc:
		return m.abandon()

	case key.Matches(msg, m.keymap.OpenFile):
		m.mode = modePicker
		m.textarea.Blur()
		m.picker = newPicker(m.config.StartDir)
		m.picker.Height = max(5, m.height-8)
		return m, m.picker.Init()

	case key.Matches(msg, m.keymap.Submit):
		t, ok := m.session.Submit(m.textarea.Value())
		if !ok {
			m.setError("Paste or open some text first.")
			return m, nil
		}
		m.setStatus("")
		m.textarea.Blur()
		return m, tea.Batch(m.analyzeCmd(t), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	return m, cmd
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keymap.OpenFile) || msg.String() == "q" {
		m.mode = modeNone
		return m, m.textarea.Focus()
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.mode = modeNone
		m.setStatus("Reading " + path + "…")
		return m, tea.Batch(cmd, m.textarea.Focus(), m.loadFileCmd(path))
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.setError(path + " is not a .txt, .md or .docx file")
	}
	return m, cmd
}

func (m Model) handleErrorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Retry):
		switch m.session.Retry() {
		case review.PhaseAnalyzing:
			return m, tea.Batch(m.analyzeCmd(m.session.Pending()), m.spinner.Tick)
		case review.PhaseCreating:
			return m, tea.Batch(m.commitCmd(m.session.PendingCommit()), m.spinner.Tick)
		default:
			return m, m.textarea.Focus()
		}
	case key.Matches(msg, m.keymap.Quit):
		return m.abandon()
	}
	return m, nil
}

func (m Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCategory:
		return m.handleCategoryKey(msg)
	case modeRename:
		return m.handleRenameKey(msg)
	case modeAlias:
		return m.handleAliasKey(msg), nil
	}

	if m.confirmAbandon {
		m.confirmAbandon = false
		if key.Matches(msg, m.keymap.Quit) || msg.String() == "y" {
			return m.abandon()
		}
		m.setStatus("")
		return m, nil
	}

	if m.session.ViewMode() == review.ViewFocus && m.session.HandleFocusKey(m.focusKey(msg), false) {
		if _, editing := m.session.EditingName(); editing {
			return m.openRename()
		}
		m.counts.SetCounts(m.session.Counts())
		return m, nil
	}

	id, hasItem := m.currentID()

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.confirmAbandon = true
		m.setError("Abandon this review? Nothing will be created. Press q or y to abandon, any other key to go on.")

	case key.Matches(msg, m.keymap.Confirm):
		return m.confirm()

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.ToggleView):
		m.session.ToggleViewMode()

	case key.Matches(msg, m.keymap.ToggleLow):
		m.session.ToggleLowConfidence()
		m.clampCursor()

	case key.Matches(msg, m.keymap.ToggleSidebar):
		m.session.ToggleSidebar()

	case key.Matches(msg, m.keymap.Up):
		m.session.FocusPrev()

	case key.Matches(msg, m.keymap.Down):
		m.session.FocusNext()
		m.clampCursor()

	case key.Matches(msg, m.keymap.Character):
		m.classify(id, hasItem, model.EntityCharacter)

	case key.Matches(msg, m.keymap.Location):
		m.classify(id, hasItem, model.EntityLocation)

	case key.Matches(msg, m.keymap.Lore):
		m.classify(id, hasItem, model.EntityLore)

	case key.Matches(msg, m.keymap.Skip):
		m.classify(id, hasItem, model.EntitySkip)

	case key.Matches(msg, m.keymap.PrevCat):
		if hasItem {
			m.session.CycleLoreCategory(id, -1)
		}

	case key.Matches(msg, m.keymap.NextCat):
		if hasItem {
			m.session.CycleLoreCategory(id, 1)
		}

	case key.Matches(msg, m.keymap.NewCat):
		m.mode = modeCategory
		m.catInput.SetValue("")
		return m, m.catInput.Focus()

	case key.Matches(msg, m.keymap.Rename):
		if hasItem && m.session.BeginNameEdit(id) {
			return m.openRename()
		}

	case key.Matches(msg, m.keymap.Aliases):
		if hasItem {
			if c, ok := m.session.Candidate(id); ok && len(c.Aliases) > 0 {
				m.mode = modeAlias
				m.setStatus("Press a number to toggle an alias, esc when done.")
			}
		}
	}
	return m, nil
}

func (m *Model) classify(id string, ok bool, t model.EntityType) {
	if !ok {
		return
	}
	m.session.SetType(id, t)
	m.counts.SetCounts(m.session.Counts())
}

// focusKey translates the navigation bindings into the key names the
// session's focus dispatcher understands.
func (m Model) focusKey(msg tea.KeyMsg) string {
	switch {
	case key.Matches(msg, m.keymap.Right):
		return "right"
	case key.Matches(msg, m.keymap.Left):
		return "left"
	}
	return msg.String()
}

// clampCursor keeps the card cursor off collapsed candidates. With no
// card visible the cursor stays put and currentID reports nothing.
func (m *Model) clampCursor() {
	if m.session.ViewMode() != review.ViewCard {
		return
	}
	n := m.visibleLen()
	if n > 0 && m.session.FocusIndex() >= n {
		m.session.SetFocus(n - 1)
	}
}

func (m Model) confirm() (tea.Model, tea.Cmd) {
	t, ok := m.session.Confirm()
	if !ok {
		if m.session.Phase() == review.PhaseDone {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}
	m.mode = modeNone
	m.setStatus("")
	return m, tea.Batch(m.commitCmd(t), m.spinner.Tick)
}

func (m Model) openRename() (tea.Model, tea.Cmd) {
	id, _ := m.session.EditingName()
	m.mode = modeRename
	m.nameInput.SetValue(m.session.DisplayName(id))
	m.nameInput.CursorEnd()
	return m, m.nameInput.Focus()
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.session.EndNameEdit(m.nameInput.Value(), true)
		m.mode = modeNone
		m.nameInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.session.CancelNameEdit()
		m.mode = modeNone
		m.nameInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

// handleCategoryKey adds a category on enter. When the item under the
// cursor is lore it also takes the new category.
func (m Model) handleCategoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name, added := m.engine.AddCategory(m.catInput.Value())
		m.mode = modeNone
		m.catInput.Blur()
		if name == "" {
			return m, nil
		}
		if id, ok := m.currentID(); ok {
			if e, found := m.session.Edit(id); found && e.Type == model.EntityLore {
				m.session.SetLoreCategory(id, name)
			}
		}
		if added {
			m.setStatus(fmt.Sprintf("Added category %q", name))
		} else {
			m.setStatus(fmt.Sprintf("Category %q already exists", name))
		}
		return m, nil
	case tea.KeyEsc:
		m.mode = modeNone
		m.catInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.catInput, cmd = m.catInput.Update(msg)
	return m, cmd
}

func (m Model) handleAliasKey(msg tea.KeyMsg) Model {
	s := msg.String()
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 9 {
		if id, ok := m.currentID(); ok {
			m.session.ToggleAlias(id, n-1)
		}
		return m
	}
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyEnter || s == "a" {
		m.mode = modeNone
		m.setStatus("")
	}
	return m
}

func fileStatus(msg fileLoadedMsg) string {
	if msg.sections > 1 {
		return fmt.Sprintf("Loaded %s (%d sections)", msg.path, msg.sections)
	}
	return "Loaded " + msg.path
}
