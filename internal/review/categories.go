package review

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/lorekeeper/internal/model"
)

var lower = cases.Lower(language.Und)

// NormalizeCategory returns the canonical form of a lore category name:
// NFKC-normalized, trimmed, lower-cased. New categories are stored in this
// form; existing ones keep the spelling the project gave them.
func NormalizeCategory(raw string) string {
	return fold(raw)
}

// fold is the comparison key for names and categories.
func fold(s string) string {
	return lower.String(strings.TrimSpace(norm.NFKC.String(s)))
}

// SameCategory reports whether a and b name the same non-blank category.
func SameCategory(a, b string) bool {
	na := NormalizeCategory(a)
	return na != "" && na == NormalizeCategory(b)
}

// seedCategories installs the project's list as given, minus blanks.
func (s *Session) seedCategories(list []string) {
	for _, c := range list {
		if c = strings.TrimSpace(c); c != "" {
			s.categories = append(s.categories, c)
		}
	}
}

// Categories returns the active lore category list.
func (s *Session) Categories() []string {
	return append([]string(nil), s.categories...)
}

// LookupCategory returns the entry of the active list that name refers
// to, ignoring case and width.
func (s *Session) LookupCategory(name string) (string, bool) {
	for _, c := range s.categories {
		if SameCategory(c, name) {
			return c, true
		}
	}
	return "", false
}

// HasCategory reports whether name refers to an entry of the list.
func (s *Session) HasCategory(name string) bool {
	_, ok := s.LookupCategory(name)
	return ok
}

// AddCategory appends raw in normalized form. When the list already holds
// the category it returns that entry unchanged and false; blank names
// return "" and false.
func (s *Session) AddCategory(raw string) (string, bool) {
	name := NormalizeCategory(raw)
	if name == "" {
		return "", false
	}
	if existing, ok := s.LookupCategory(name); ok {
		return existing, false
	}
	s.categories = append(s.categories, name)
	return name, true
}

func (s *Session) firstCategory() string {
	if len(s.categories) == 0 {
		return model.DefaultLoreCategory
	}
	return s.categories[0]
}
