package review

import "github.com/Veraticus/lorekeeper/internal/model"

// SetViewMode switches projection. Entering focus mode jumps to the first
// unclassified candidate, or the first candidate when all are classified.
func (s *Session) SetViewMode(v ViewMode) {
	if v == ViewFocus && s.view != ViewFocus {
		s.focus = s.firstUnclassified()
	}
	s.view = v
}

// ToggleViewMode flips between card and focus mode.
func (s *Session) ToggleViewMode() {
	if s.view == ViewFocus {
		s.SetViewMode(ViewCard)
		return
	}
	s.SetViewMode(ViewFocus)
}

// ViewMode returns the active projection.
func (s *Session) ViewMode() ViewMode { return s.view }

// FocusIndex returns the index of the focused candidate.
func (s *Session) FocusIndex() int { return s.focus }

// FocusID returns the id of the focused candidate.
func (s *Session) FocusID() (string, bool) {
	if s.focus < 0 || s.focus >= len(s.candidates) {
		return "", false
	}
	return s.candidates[s.focus].ID, true
}

// SetFocus moves focus to index i, clamped to the candidate range.
func (s *Session) SetFocus(i int) {
	s.focus = s.clamp(i)
}

// FocusNext advances by one without any auto-skip.
func (s *Session) FocusNext() { s.SetFocus(s.focus + 1) }

// FocusPrev retreats by one.
func (s *Session) FocusPrev() { s.SetFocus(s.focus - 1) }

// ClassifyFocused sets the type of the focused candidate and advances to
// the next unclassified one after it, wrapping around. When nothing is left
// unclassified focus advances by one instead.
func (s *Session) ClassifyFocused(t model.EntityType) bool {
	id, ok := s.FocusID()
	if !ok || !s.SetType(id, t) {
		return false
	}
	if next, found := s.nextUnclassified(s.focus); found {
		s.focus = next
	} else {
		s.FocusNext()
	}
	return true
}

// HandleFocusKey dispatches a focus-mode key. Keys are bubbletea-style
// names ("1", "x", "backspace", "right", "enter", "left", "e"). Keys are
// ignored while typing is true or a rename is open. It reports whether
// the key was consumed.
func (s *Session) HandleFocusKey(key string, typing bool) bool {
	if s.phase != PhaseReview || s.view != ViewFocus || typing || s.editingName != "" {
		return false
	}
	switch key {
	case "1":
		return s.ClassifyFocused(model.EntityCharacter)
	case "2":
		return s.ClassifyFocused(model.EntityLocation)
	case "3":
		return s.ClassifyFocused(model.EntityLore)
	case "4", "x", "X", "backspace":
		return s.ClassifyFocused(model.EntitySkip)
	case "right", "enter":
		s.FocusNext()
		return true
	case "left":
		s.FocusPrev()
		return true
	case "e", "E":
		id, ok := s.FocusID()
		return ok && s.BeginNameEdit(id)
	}
	return false
}

func (s *Session) firstUnclassified() int {
	for i, c := range s.candidates {
		if s.edits[c.ID].Type == model.EntityUnclassified {
			return i
		}
	}
	return 0
}

// nextUnclassified searches after from, wrapping to the start.
func (s *Session) nextUnclassified(from int) (int, bool) {
	n := len(s.candidates)
	for step := 1; step < n; step++ {
		i := (from + step) % n
		if s.edits[s.candidates[i].ID].Type == model.EntityUnclassified {
			return i, true
		}
	}
	return 0, false
}

func (s *Session) clamp(i int) int {
	if i >= len(s.candidates) {
		i = len(s.candidates) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
