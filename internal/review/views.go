package review

import "github.com/Veraticus/lorekeeper/internal/model"

// Item pairs a candidate with a snapshot of its edit. Existing is the type
// of a project entity with the same name, if there is one.
type Item struct {
	Candidate model.Candidate
	Edit      model.Edit
	Existing  model.EntityType
	Index     int
}

// Name returns the name that would be committed.
func (it Item) Name() string {
	if it.Edit.NameOverride != "" {
		return it.Edit.NameOverride
	}
	return it.Candidate.Name
}

// CardGroup is one bucket of the card projection.
type CardGroup struct {
	Bucket    model.Bucket
	Items     []Item
	Collapsed bool
}

// SidebarSection lists classified items of one type.
type SidebarSection struct {
	Type  model.EntityType
	Items []Item
}

// CardLayout is the read-only card/list projection.
type CardLayout struct {
	Groups      []CardGroup
	Sidebar     []SidebarSection
	Counts      model.Counts
	SidebarOpen bool
}

// FocusLayout is the read-only one-at-a-time projection.
type FocusLayout struct {
	Item        Item
	Categories  []string
	Counts      model.Counts
	Index       int
	Total       int
	Classified  int
	Progress    float64
	EditingName bool
}

// ToggleLowConfidence collapses or expands the low-confidence group.
func (s *Session) ToggleLowConfidence() { s.lowCollapsed = !s.lowCollapsed }

// LowConfidenceCollapsed reports the collapse state.
func (s *Session) LowConfidenceCollapsed() bool { return s.lowCollapsed }

// ToggleSidebar shows or hides the classified sidebar.
func (s *Session) ToggleSidebar() { s.sidebarOpen = !s.sidebarOpen }

// SidebarOpen reports the sidebar state.
func (s *Session) SidebarOpen() bool { return s.sidebarOpen }

func (s *Session) item(i int) Item {
	c := s.candidates[i]
	it := Item{Candidate: c, Edit: s.edits[c.ID].Clone(), Index: i}
	it.Existing = s.existing[fold(it.Name())]
	return it
}

// Items returns every candidate with its edit, in review order.
func (s *Session) Items() []Item {
	items := make([]Item, len(s.candidates))
	for i := range s.candidates {
		items[i] = s.item(i)
	}
	return items
}

// Classified returns items whose type is set and not skip.
func (s *Session) Classified() []Item {
	var out []Item
	for i, c := range s.candidates {
		if s.edits[c.ID].Type.IsClassified() {
			out = append(out, s.item(i))
		}
	}
	return out
}

// Progress returns the classified share of all candidates.
func (s *Session) Progress() float64 {
	if len(s.candidates) == 0 {
		return 0
	}
	return float64(s.counts.Classified()) / float64(len(s.candidates))
}

// CardView builds the card projection. Collapsed groups still carry their
// items so callers can show a count.
func (s *Session) CardView() CardLayout {
	items := s.Items()
	layout := CardLayout{
		Groups: []CardGroup{
			{Bucket: model.BucketConfident, Items: items[:s.confident]},
			{Bucket: model.BucketLowConfidence, Items: items[s.confident:], Collapsed: s.lowCollapsed},
		},
		Counts:      s.counts,
		SidebarOpen: s.sidebarOpen,
	}

	classified := s.Classified()
	for _, t := range []model.EntityType{model.EntityCharacter, model.EntityLocation, model.EntityLore} {
		section := SidebarSection{Type: t}
		for _, it := range classified {
			if it.Edit.Type == t {
				section.Items = append(section.Items, it)
			}
		}
		if len(section.Items) > 0 {
			layout.Sidebar = append(layout.Sidebar, section)
		}
	}
	return layout
}

// FocusView builds the focus projection.
func (s *Session) FocusView() (FocusLayout, bool) {
	if len(s.candidates) == 0 {
		return FocusLayout{}, false
	}
	i := s.clamp(s.focus)
	return FocusLayout{
		Item:        s.item(i),
		Categories:  s.Categories(),
		Counts:      s.counts,
		Index:       i,
		Total:       len(s.candidates),
		Classified:  s.counts.Classified(),
		Progress:    s.Progress(),
		EditingName: s.editingName == s.candidates[i].ID,
	}, true
}
