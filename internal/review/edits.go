package review

import (
	"strings"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// SetType classifies the candidate id. Moving into lore resets the
// category to the first entry of the active list; setting lore again
// keeps the chosen one.
func (s *Session) SetType(id string, t model.EntityType) bool {
	e, ok := s.edits[id]
	if !ok || !t.Valid() {
		return false
	}
	if t == model.EntityLore && (e.Type != model.EntityLore || e.LoreCategory == "") {
		e.LoreCategory = s.firstCategory()
	}
	e.Type = t
	s.recount()
	return true
}

// SetLoreCategory picks the lore subcategory for id. A name matching a
// listed category takes that entry's spelling; blank names are ignored.
// The category only matters while the type is lore.
func (s *Session) SetLoreCategory(id, category string) bool {
	e, ok := s.edits[id]
	if !ok {
		return false
	}
	if existing, found := s.LookupCategory(category); found {
		category = existing
	} else if category = NormalizeCategory(category); category == "" {
		return false
	}
	e.LoreCategory = category
	return true
}

// CycleLoreCategory moves the lore category of id to the next (or
// previous, when step is negative) entry of the active list.
func (s *Session) CycleLoreCategory(id string, step int) bool {
	e, ok := s.edits[id]
	if !ok || len(s.categories) == 0 {
		return false
	}
	cur := -1
	for i, c := range s.categories {
		if SameCategory(c, e.LoreCategory) {
			cur = i
			break
		}
	}
	n := len(s.categories)
	next := ((cur+step)%n + n) % n
	if cur < 0 && step < 0 {
		next = n - 1
	}
	e.LoreCategory = s.categories[next]
	return true
}

// ToggleAlias flips acceptance of one alias of id.
func (s *Session) ToggleAlias(id string, index int) bool {
	e, ok := s.edits[id]
	if !ok || index < 0 || index >= len(e.AliasesAccepted) {
		return false
	}
	e.AliasesAccepted[index] = !e.AliasesAccepted[index]
	return true
}

// SetNameOverride stores a replacement name for id. The text is trimmed;
// an empty value or one equal to the original name clears the override.
func (s *Session) SetNameOverride(id, text string) bool {
	e, ok := s.edits[id]
	if !ok {
		return false
	}
	c := s.candidates[s.indexOf(id)]
	text = strings.TrimSpace(text)
	if text == "" || text == c.Name {
		e.NameOverride = ""
	} else {
		e.NameOverride = text
	}
	return true
}

// DisplayName returns the name that would be committed for id.
func (s *Session) DisplayName(id string) string {
	e, ok := s.edits[id]
	if !ok {
		return ""
	}
	if e.NameOverride != "" {
		return e.NameOverride
	}
	return s.candidates[s.indexOf(id)].Name
}

// BeginNameEdit marks id as being renamed. Keyboard dispatch is suspended
// until the edit ends.
func (s *Session) BeginNameEdit(id string) bool {
	if _, ok := s.edits[id]; !ok || s.phase != PhaseReview {
		return false
	}
	s.editingName = id
	return true
}

// EndNameEdit finishes a rename. When commit is true the text is applied
// through SetNameOverride.
func (s *Session) EndNameEdit(text string, commit bool) {
	id := s.editingName
	s.editingName = ""
	if commit && id != "" {
		s.SetNameOverride(id, text)
	}
}

// EditingName returns the id under rename, if any.
func (s *Session) EditingName() (string, bool) {
	return s.editingName, s.editingName != ""
}

// Counts returns the live aggregate.
func (s *Session) Counts() model.Counts { return s.counts }

func (s *Session) recount() {
	var c model.Counts
	for _, cand := range s.candidates {
		c.Add(s.edits[cand.ID].Type)
	}
	s.counts = c
}

// CancelNameEdit closes a rename without applying it.
func (s *Session) CancelNameEdit() { s.EndNameEdit("", false) }
