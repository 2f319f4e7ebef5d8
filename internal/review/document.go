package review

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/lorekeeper/internal/model"
)

// DocumentVersion is the review document format written by Document.
const DocumentVersion = 1

// ErrDocumentVersion is returned for documents written by another format.
var ErrDocumentVersion = errors.New("unsupported review document version")

// Document is a review session frozen to YAML so an author can edit the
// decisions offline and apply them later.
type Document struct {
	Language   string          `yaml:"language,omitempty"`
	Categories []string        `yaml:"categories"`
	Entities   []DocumentEntry `yaml:"entities"`
	Version    int             `yaml:"version"`
}

// DocumentEntry pairs a candidate with the author's decision.
type DocumentEntry struct {
	model.Candidate `yaml:",inline"`
	model.Edit      `yaml:",inline"`
}

// Document snapshots the reviewed candidates and their edits.
func (s *Session) Document() Document {
	doc := Document{
		Version:    DocumentVersion,
		Language:   s.request.Language,
		Categories: s.Categories(),
		Entities:   make([]DocumentEntry, 0, len(s.candidates)),
	}
	for _, it := range s.Items() {
		edit := it.Edit
		if edit.Type != model.EntityLore {
			edit.LoreCategory = ""
		}
		doc.Entities = append(doc.Entities, DocumentEntry{Candidate: it.Candidate, Edit: edit})
	}
	return doc
}

// AllCategories returns every category the document mentions: the list
// itself followed by any lore category used only by an entry.
func (d Document) AllCategories() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(raw string) {
		name := NormalizeCategory(raw)
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, c := range d.Categories {
		add(c)
	}
	for _, e := range d.Entities {
		if strings.EqualFold(string(e.Type), string(model.EntityLore)) {
			add(e.LoreCategory)
		}
	}
	return out
}

// WriteDocument encodes d as YAML.
func WriteDocument(w io.Writer, d Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode review document: %w", err)
	}
	return enc.Close()
}

// ReadDocument decodes a YAML review document.
func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return Document{}, fmt.Errorf("failed to decode review document: %w", err)
	}
	if d.Version != DocumentVersion {
		return Document{}, fmt.Errorf("%w: %d", ErrDocumentVersion, d.Version)
	}
	return d, nil
}

// LoadDocument rebuilds a session in the review phase from d. categories
// seeds the active list; categories that exist only in the document are
// left for the caller to add so they can be persisted.
func LoadDocument(d Document, categories []string, opts ...Option) (*Session, error) {
	var result model.AnalysisResult
	var ordered []DocumentEntry
	var low []DocumentEntry
	for i, e := range d.Entities {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("entity %d: name is required", i+1)
		}
		t, ok := model.ParseEntityType(string(e.Type))
		if !ok {
			return nil, fmt.Errorf("entity %d (%q): unknown type %q", i+1, e.Name, e.Type)
		}
		e.Type = t
		if e.Bucket == model.BucketLowConfidence {
			low = append(low, e)
			result.LowConfidence = append(result.LowConfidence, e.Candidate)
			continue
		}
		ordered = append(ordered, e)
		result.Confident = append(result.Confident, e.Candidate)
	}
	ordered = append(ordered, low...)

	s := newSession(categories, opts...)
	s.request = model.AnalysisRequest{Language: d.Language}
	s.generation++
	s.load(result)
	s.phase = PhaseReview

	for i, e := range ordered {
		id := s.candidates[i].ID
		s.SetType(id, e.Type)
		if e.Type == model.EntityLore {
			s.SetLoreCategory(id, e.LoreCategory)
		}
		s.SetNameOverride(id, e.NameOverride)
		accepted := s.edits[id].AliasesAccepted
		for j := range accepted {
			if j < len(e.AliasesAccepted) {
				accepted[j] = e.AliasesAccepted[j]
			}
		}
	}
	s.recount()
	return s, nil
}
