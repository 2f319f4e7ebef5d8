// Package model defines the core domain models used throughout the application.
package model

import "strings"

// EntityType is the classification an author assigns to a candidate.
// The zero value means the candidate is still unclassified.
type EntityType string

// Entity type constants.
const (
	EntityUnclassified EntityType = ""
	EntityCharacter    EntityType = "character"
	EntityLocation     EntityType = "location"
	EntityLore         EntityType = "lore"
	EntitySkip         EntityType = "skip"
)

// EntityTypes lists the types in display order.
var EntityTypes = []EntityType{EntityCharacter, EntityLocation, EntityLore, EntitySkip}

// Valid reports whether t is a known type, including unclassified.
func (t EntityType) Valid() bool {
	switch t {
	case EntityUnclassified, EntityCharacter, EntityLocation, EntityLore, EntitySkip:
		return true
	}
	return false
}

// IsClassified reports whether t is a type that will be committed.
func (t EntityType) IsClassified() bool {
	return t != EntityUnclassified && t != EntitySkip
}

// Label returns a human readable name.
func (t EntityType) Label() string {
	if t == EntityUnclassified {
		return "Unclassified"
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// ParseEntityType parses a user or wire supplied type. Empty, "null" and
// "none" map to unclassified.
func ParseEntityType(s string) (EntityType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none":
		return EntityUnclassified, true
	case "character":
		return EntityCharacter, true
	case "location":
		return EntityLocation, true
	case "lore":
		return EntityLore, true
	case "skip":
		return EntitySkip, true
	}
	return EntityUnclassified, false
}

// Bucket is the analyzer-assigned confidence partition of a candidate.
type Bucket string

// Bucket constants.
const (
	BucketConfident     Bucket = "confident"
	BucketLowConfidence Bucket = "low_confidence"
)

// Candidate is a named entity detected by the analyzer that awaits
// classification. Candidates are immutable once received.
type Candidate struct {
	ID             string     `json:"-" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Snippet        string     `json:"snippet" yaml:"snippet,omitempty"`
	SpacyLabel     string     `json:"spacy_label,omitempty" yaml:"label,omitempty"`
	SuggestedType  EntityType `json:"suggested_type" yaml:"suggested_type,omitempty"`
	Bucket         Bucket     `json:"-" yaml:"bucket"`
	Aliases        []string   `json:"aliases" yaml:"aliases,omitempty"`
	ChapterIndices []int      `json:"chapter_indices,omitempty" yaml:"chapters,omitempty"`
	Frequency      int        `json:"frequency" yaml:"frequency"`
	ChapterCount   int        `json:"chapter_count" yaml:"chapter_count"`
}

// AnalysisResult is the analyzer's response.
type AnalysisResult struct {
	Confident     []Candidate `json:"confident"`
	LowConfidence []Candidate `json:"low_confidence"`
}

// Total returns the number of candidates across both buckets.
func (r AnalysisResult) Total() int {
	return len(r.Confident) + len(r.LowConfidence)
}

// ChapterText is one manuscript section submitted for analysis.
type ChapterText struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Index   int    `json:"index"`
}

// AnalysisRequest describes what to analyze. Exactly one of Text or Texts
// is used; Texts takes precedence.
type AnalysisRequest struct {
	Text     string
	Language string
	Texts    []ChapterText
}

// IsChapters reports whether the request carries chapter sections.
func (r AnalysisRequest) IsChapters() bool {
	return len(r.Texts) > 0
}

// Split is one section returned by the manuscript split preview.
type Split struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}
