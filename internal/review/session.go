// Package review implements the entity classification review workflow:
// phases, per-candidate edits, live counts, focus navigation, and the
// commit payload handed to persistence.
//
// A Session is a plain state machine. It performs no I/O and is not safe
// for concurrent use; drive it from a single goroutine (the UI loop) and
// hand collaborator calls to an Engine.
package review

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
)

// Phase is the lifecycle stage of a review session.
type Phase int

const (
	// PhaseInput waits for the author to supply text.
	PhaseInput Phase = iota
	// PhaseAnalyzing has an analyzer request in flight.
	PhaseAnalyzing
	// PhaseReview lets the author classify candidates.
	PhaseReview
	// PhaseCreating has a bulk-create request in flight.
	PhaseCreating
	// PhaseDone is terminal; control returns to the caller.
	PhaseDone
	// PhaseError holds a failure from analyzing or creating.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseReview:
		return "review"
	case PhaseCreating:
		return "creating"
	case PhaseDone:
		return "done"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// ViewMode selects which projection the review phase presents.
type ViewMode int

const (
	// ViewCard shows all candidates grouped by bucket.
	ViewCard ViewMode = iota
	// ViewFocus shows one candidate at a time.
	ViewFocus
)

// Ticket identifies one analyzer request. Outcomes carrying a generation
// other than the session's current one are stale and ignored.
type Ticket struct {
	Request    model.AnalysisRequest
	Generation uint64
}

// CommitTicket identifies one bulk-create request.
type CommitTicket struct {
	Entities   []model.CommitEntity
	Generation uint64
}

// Session holds the state of one review.
type Session struct {
	edits        map[string]*model.Edit
	existing     map[string]model.EntityType
	newID        func() string
	errMsg       string
	request      model.AnalysisRequest
	candidates   []model.Candidate
	categories   []string
	committed    []model.CommitEntity
	created      []model.CreatedEntity
	editingName  string
	counts       model.Counts
	generation   uint64
	confident    int
	focus        int
	phase        Phase
	failedFrom   Phase
	view         ViewMode
	auto         bool
	lowCollapsed bool
	sidebarOpen  bool
}

// Option configures a Session.
type Option func(*Session)

// WithIDGenerator overrides how candidate IDs are assigned.
func WithIDGenerator(gen func() string) Option {
	return func(s *Session) {
		s.newID = gen
	}
}

// WithExisting records entities already in the project, by type, so items
// whose name matches one can be flagged.
func WithExisting(names map[model.EntityType][]string) Option {
	return func(s *Session) {
		s.existing = make(map[string]model.EntityType)
		for _, t := range model.EntityTypes {
			for _, n := range names[t] {
				if k := fold(n); k != "" {
					if _, dup := s.existing[k]; !dup {
						s.existing[k] = t
					}
				}
			}
		}
	}
}

// NewSession creates a manual session that starts in PhaseInput and waits
// for Submit.
func NewSession(categories []string, language string, opts ...Option) *Session {
	s := newSession(categories, opts...)
	s.request = model.AnalysisRequest{Language: language}
	s.phase = PhaseInput
	return s
}

// NewChapterSession creates an auto session over pre-supplied chapter
// texts. It skips PhaseInput; the first request is available from Pending.
func NewChapterSession(texts []model.ChapterText, categories []string, language string, opts ...Option) *Session {
	s := newSession(categories, opts...)
	s.auto = true
	s.request = model.AnalysisRequest{
		Texts:    append([]model.ChapterText(nil), texts...),
		Language: language,
	}
	s.generation++
	s.phase = PhaseAnalyzing
	return s
}

func newSession(categories []string, opts ...Option) *Session {
	s := &Session{
		edits:       make(map[string]*model.Edit),
		newID:       uuid.NewString,
		sidebarOpen: true,
	}
	s.seedCategories(categories)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// IsAuto reports whether the session was created from chapter texts.
func (s *Session) IsAuto() bool { return s.auto }

// Err returns the message of the last failure while in PhaseError.
func (s *Session) Err() string {
	if s.phase != PhaseError {
		return ""
	}
	return s.errMsg
}

// FailedFrom returns the phase that failed while in PhaseError.
func (s *Session) FailedFrom() Phase { return s.failedFrom }

// Request returns the request used for the most recent analysis.
func (s *Session) Request() model.AnalysisRequest { return s.request }

// Submit moves a manual session from input to analyzing. Blank text is
// ignored and reported as false.
func (s *Session) Submit(text string) (Ticket, bool) {
	if s.phase != PhaseInput || strings.TrimSpace(text) == "" {
		return Ticket{}, false
	}
	s.request.Text = text
	s.request.Texts = nil
	return s.beginAnalysis(), true
}

func (s *Session) beginAnalysis() Ticket {
	s.generation++
	s.phase = PhaseAnalyzing
	s.errMsg = ""
	return s.Pending()
}

// Pending returns the in-flight analysis ticket while analyzing.
func (s *Session) Pending() Ticket {
	if s.phase != PhaseAnalyzing {
		return Ticket{}
	}
	return Ticket{Request: s.request, Generation: s.generation}
}

// ResolveAnalysis installs an analyzer result. It returns false when the
// ticket is stale or the session is no longer analyzing.
func (s *Session) ResolveAnalysis(generation uint64, result model.AnalysisResult) bool {
	if s.phase != PhaseAnalyzing || generation != s.generation {
		return false
	}
	s.load(result)
	s.phase = PhaseReview
	return true
}

// FailAnalysis records an analyzer failure under the same staleness rules
// as ResolveAnalysis.
func (s *Session) FailAnalysis(generation uint64, err error) bool {
	if s.phase != PhaseAnalyzing || generation != s.generation {
		return false
	}
	s.fail(PhaseAnalyzing, err)
	return true
}

func (s *Session) fail(from Phase, err error) {
	s.failedFrom = from
	s.errMsg = common.UserMessage(err)
	if s.errMsg == "" {
		s.errMsg = common.DefaultErrorMessage
	}
	s.phase = PhaseError
}

// load replaces candidates and edits with a fresh batch.
func (s *Session) load(result model.AnalysisResult) {
	s.candidates = make([]model.Candidate, 0, result.Total())
	s.edits = make(map[string]*model.Edit, result.Total())
	s.confident = len(result.Confident)

	add := func(c model.Candidate, bucket model.Bucket) {
		c.ID = s.newID()
		c.Bucket = bucket
		c.Aliases = append([]string(nil), c.Aliases...)
		s.candidates = append(s.candidates, c)
		s.edits[c.ID] = s.defaultEdit(c)
	}
	for _, c := range result.Confident {
		add(c, model.BucketConfident)
	}
	for _, c := range result.LowConfidence {
		add(c, model.BucketLowConfidence)
	}

	s.view = ViewCard
	s.focus = 0
	s.editingName = ""
	s.lowCollapsed = false
	s.recount()
}

func (s *Session) defaultEdit(c model.Candidate) *model.Edit {
	e := &model.Edit{
		AliasesAccepted: make([]bool, len(c.Aliases)),
	}
	if c.SuggestedType.Valid() && c.SuggestedType != model.EntitySkip {
		e.Type = c.SuggestedType
	}
	if e.Type == model.EntityLore {
		e.LoreCategory = s.firstCategory()
	}
	for i := range e.AliasesAccepted {
		e.AliasesAccepted[i] = true
	}
	return e
}

// Confirm builds the commit list and moves to creating. An empty list
// finishes the session without a backend call and returns false, as does
// a confirm outside the review phase (including a second confirm while a
// commit is in flight).
func (s *Session) Confirm() (CommitTicket, bool) {
	if s.phase != PhaseReview {
		return CommitTicket{}, false
	}
	s.editingName = ""
	entities := s.CommitPreview()
	if len(entities) == 0 {
		s.committed = nil
		s.phase = PhaseDone
		return CommitTicket{}, false
	}
	s.committed = entities
	s.generation++
	s.phase = PhaseCreating
	return s.PendingCommit(), true
}

// PendingCommit returns the in-flight commit ticket while creating.
func (s *Session) PendingCommit() CommitTicket {
	if s.phase != PhaseCreating {
		return CommitTicket{}
	}
	return CommitTicket{
		Entities:   append([]model.CommitEntity(nil), s.committed...),
		Generation: s.generation,
	}
}

// ResolveCommit finishes the session after a successful bulk create.
func (s *Session) ResolveCommit(generation uint64, created []model.CreatedEntity) bool {
	if s.phase != PhaseCreating || generation != s.generation {
		return false
	}
	s.created = created
	s.phase = PhaseDone
	return true
}

// FailCommit records a bulk-create failure. Edits are kept so a retry
// does not lose work.
func (s *Session) FailCommit(generation uint64, err error) bool {
	if s.phase != PhaseCreating || generation != s.generation {
		return false
	}
	s.fail(PhaseCreating, err)
	return true
}

// Retry leaves PhaseError. A failed commit goes back to creating with the
// same payload. A failed analysis goes back to analyzing in auto mode and
// to input in manual mode. Callers read Pending or PendingCommit for the
// request to re-issue.
func (s *Session) Retry() Phase {
	if s.phase != PhaseError {
		return s.phase
	}
	switch {
	case s.failedFrom == PhaseCreating:
		s.generation++
		s.errMsg = ""
		s.phase = PhaseCreating
	case s.auto:
		s.beginAnalysis()
	default:
		s.errMsg = ""
		s.phase = PhaseInput
	}
	return s.phase
}

// Abandon ends the session with nothing committed. Any in-flight outcome
// becomes stale.
func (s *Session) Abandon() {
	s.generation++
	s.committed = nil
	s.created = nil
	s.editingName = ""
	s.phase = PhaseDone
}

// Committed returns the entities sent by the last successful confirm. It
// is empty when the session was abandoned or nothing was classified.
func (s *Session) Committed() []model.CommitEntity {
	if s.phase != PhaseDone {
		return nil
	}
	return append([]model.CommitEntity(nil), s.committed...)
}

// Created returns what the persistence collaborator reported.
func (s *Session) Created() []model.CreatedEntity {
	return append([]model.CreatedEntity(nil), s.created...)
}

// Candidates returns the candidates in review order: confident first.
func (s *Session) Candidates() []model.Candidate {
	return append([]model.Candidate(nil), s.candidates...)
}

// Candidate returns the candidate with id.
func (s *Session) Candidate(id string) (model.Candidate, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return model.Candidate{}, false
	}
	return s.candidates[i], true
}

// Edit returns a copy of the edit for id.
func (s *Session) Edit(id string) (model.Edit, bool) {
	e, ok := s.edits[id]
	if !ok {
		return model.Edit{}, false
	}
	return e.Clone(), true
}

// Len returns the number of candidates.
func (s *Session) Len() int { return len(s.candidates) }

func (s *Session) indexOf(id string) int {
	for i := range s.candidates {
		if s.candidates[i].ID == id {
			return i
		}
	}
	return -1
}
