package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/service"
)

// AnalysisOutcome is the result of one analyzer call.
type AnalysisOutcome struct {
	Err        error
	Result     model.AnalysisResult
	Generation uint64
}

// CommitOutcome is the result of one bulk-create call.
type CommitOutcome struct {
	Err        error
	Created    []model.CreatedEntity
	Generation uint64
}

// Engine connects a Session to its collaborators. Fetch/Submit methods
// only perform I/O and may run on any goroutine; Apply methods mutate the
// session and belong on the goroutine that owns it.
type Engine struct {
	startTime  time.Time
	session    *Session
	analyzer   service.Analyzer
	entities   service.EntityStore
	categories service.CategoryStore
	latest     []string
	wg         sync.WaitGroup
	persistMu  sync.Mutex
}

// NewEngine creates an engine. categories may be nil, in which case new
// categories stay local to the session.
func NewEngine(session *Session, analyzer service.Analyzer, entities service.EntityStore, categories service.CategoryStore) *Engine {
	return &Engine{
		startTime:  time.Now(),
		session:    session,
		analyzer:   analyzer,
		entities:   entities,
		categories: categories,
	}
}

// Session returns the driven session.
func (e *Engine) Session() *Session { return e.session }

// FetchAnalysis runs the analyzer for t.
func (e *Engine) FetchAnalysis(ctx context.Context, t Ticket) AnalysisOutcome {
	var result model.AnalysisResult
	err := guard(func() error {
		var err error
		result, err = e.analyzer.Analyze(ctx, t.Request)
		return err
	})
	return AnalysisOutcome{Result: result, Err: err, Generation: t.Generation}
}

// ApplyAnalysis feeds an outcome into the session. Stale outcomes are
// dropped and reported as false.
func (e *Engine) ApplyAnalysis(o AnalysisOutcome) bool {
	if o.Err != nil {
		applied := e.session.FailAnalysis(o.Generation, o.Err)
		if applied {
			slog.Warn("analysis failed", "error", o.Err, "generation", o.Generation)
		}
		return applied
	}

	applied := e.session.ResolveAnalysis(o.Generation, o.Result)
	if applied {
		slog.Info("analysis complete",
			"confident", len(o.Result.Confident),
			"low_confidence", len(o.Result.LowConfidence))
	} else {
		slog.Debug("discarding stale analysis", "generation", o.Generation)
	}
	return applied
}

// SubmitCommit validates and sends t to the entity store.
func (e *Engine) SubmitCommit(ctx context.Context, t CommitTicket) CommitOutcome {
	if err := ValidateCommit(t.Entities); err != nil {
		return CommitOutcome{Err: common.NewUserError("Some entities are incomplete", err), Generation: t.Generation}
	}

	var created []model.CreatedEntity
	err := guard(func() error {
		var err error
		created, err = e.entities.BulkCreate(ctx, t.Entities)
		return err
	})
	return CommitOutcome{Created: created, Err: err, Generation: t.Generation}
}

// ApplyCommit feeds a commit outcome into the session.
func (e *Engine) ApplyCommit(o CommitOutcome) bool {
	if o.Err != nil {
		applied := e.session.FailCommit(o.Generation, o.Err)
		if applied {
			slog.Warn("bulk create failed", "error", o.Err)
		}
		return applied
	}

	applied := e.session.ResolveCommit(o.Generation, o.Created)
	if applied {
		slog.Info("entities created", "count", len(o.Created))
	}
	return applied
}

// Submit starts a manual analysis for text and waits for it.
func (e *Engine) Submit(ctx context.Context, text string) error {
	if _, ok := e.session.Submit(text); !ok {
		if e.session.Phase() != PhaseInput {
			return common.ErrUnknownPhase
		}
		return common.ErrEmptyText
	}
	return e.Analyze(ctx)
}

// Analyze runs the pending analysis synchronously. Failures land in
// PhaseError and are also returned.
func (e *Engine) Analyze(ctx context.Context) error {
	if e.session.Phase() != PhaseAnalyzing {
		return common.ErrUnknownPhase
	}
	o := e.FetchAnalysis(ctx, e.session.Pending())
	e.ApplyAnalysis(o)
	return o.Err
}

// Confirm commits the reviewed entities synchronously. An empty commit
// completes the session without calling the store.
func (e *Engine) Confirm(ctx context.Context) error {
	switch e.session.Phase() {
	case PhaseCreating:
		return common.ErrCommitInFlight
	case PhaseReview:
	default:
		return common.ErrUnknownPhase
	}

	t, ok := e.session.Confirm()
	if !ok {
		return nil
	}
	return e.commit(ctx, t)
}

func (e *Engine) commit(ctx context.Context, t CommitTicket) error {
	o := e.SubmitCommit(ctx, t)
	e.ApplyCommit(o)
	return o.Err
}

// Retry re-issues the failed request, if the retry path has one.
func (e *Engine) Retry(ctx context.Context) error {
	switch e.session.Retry() {
	case PhaseAnalyzing:
		return e.Analyze(ctx)
	case PhaseCreating:
		return e.commit(ctx, e.session.PendingCommit())
	default:
		return nil
	}
}

// AddCategory appends a category locally and persists the full list in
// the background. A failed write is logged; the local list is kept.
func (e *Engine) AddCategory(raw string) (string, bool) {
	name, added := e.session.AddCategory(raw)
	if added {
		e.persistCategories(e.session.Categories())
	}
	return name, added
}

func (e *Engine) persistCategories(list []string) {
	if e.categories == nil {
		return
	}

	e.persistMu.Lock()
	e.latest = list
	e.persistMu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		e.persistMu.Lock()
		defer e.persistMu.Unlock()
		// Every writer sends the newest list, so the store converges on it
		// no matter which goroutine runs last.
		snapshot := e.latest
		err := guard(func() error {
			return e.categories.SaveCategories(context.Background(), snapshot)
		})
		if err != nil {
			slog.Warn("failed to persist lore categories", "error", err, "categories", snapshot)
			return
		}
		slog.Debug("persisted lore categories", "count", len(snapshot))
	}()
}

// Close waits for background category writes.
func (e *Engine) Close() {
	e.wg.Wait()
}

// Stats summarizes the session so far.
func (e *Engine) Stats() service.CompletionStats {
	return service.CompletionStats{
		Counts:   e.session.Counts(),
		Created:  len(e.session.Created()),
		Duration: time.Since(e.startTime),
	}
}

// guard converts a panic in a collaborator into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collaborator panic: %v", r)
		}
	}()
	return fn()
}
