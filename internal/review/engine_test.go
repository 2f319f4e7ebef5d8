package review

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
)

func TestEngine_EndToEnd(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{result: eliaResult()}
	store := &fakeStore{}
	s := NewSession(model.DefaultLoreCategories, "en", sequentialIDs())
	engine := NewEngine(s, analyzer, store, store)
	defer engine.Close()

	require.NoError(t, engine.Submit(ctx, "Elia walked to Rustspire. Kael carried the Sunblade."))
	require.Equal(t, PhaseReview, s.Phase())
	require.Len(t, analyzer.reqs, 1)
	assert.Equal(t, "en", analyzer.reqs[0].Language)

	s.SetViewMode(ViewFocus)
	require.True(t, s.HandleFocusKey("3", false))
	require.True(t, s.ToggleAlias("c1", 1))
	require.True(t, s.SetNameOverride("c2", "Rust Spire"))

	require.NoError(t, engine.Confirm(ctx))
	assert.Equal(t, PhaseDone, s.Phase())
	require.Len(t, store.batches, 1)

	batch := store.batches[0]
	require.Len(t, batch, 3)
	assert.Equal(t, "Elia", batch[0].Name)
	assert.Equal(t, []string{"Eli"}, batch[0].Aliases)
	assert.Nil(t, batch[0].LoreCategory)
	assert.Equal(t, "Rust Spire", batch[1].Name)
	assert.Equal(t, model.EntityLore, batch[2].Type)
	require.NotNil(t, batch[2].LoreCategory)
	assert.Equal(t, "item", *batch[2].LoreCategory)

	assert.Len(t, s.Created(), 3)
	stats := engine.Stats()
	assert.Equal(t, 3, stats.Created)
	assert.Equal(t, 1, stats.Counts.Lore)
}

func TestEngine_SubmitEmpty(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	engine := NewEngine(NewSession(nil, "en"), analyzer, &fakeStore{}, nil)

	err := engine.Submit(context.Background(), "   ")
	require.ErrorIs(t, err, common.ErrEmptyText)
	assert.Empty(t, analyzer.reqs)
}

func TestEngine_EmptyCommitSkipsStore(t *testing.T) {
	store := &fakeStore{}
	s := NewSession(nil, "en", sequentialIDs())
	engine := NewEngine(s, &fakeAnalyzer{result: model.AnalysisResult{
		Confident: []model.Candidate{{Name: "Kael"}},
	}}, store, nil)

	require.NoError(t, engine.Submit(context.Background(), "Kael"))
	require.True(t, s.SetType("c1", model.EntitySkip))
	require.NoError(t, engine.Confirm(context.Background()))

	assert.Equal(t, PhaseDone, s.Phase())
	assert.Zero(t, store.calls())
}

func TestEngine_ConfirmOutsideReview(t *testing.T) {
	engine := NewEngine(NewSession(nil, "en"), &fakeAnalyzer{}, &fakeStore{}, nil)
	assert.ErrorIs(t, engine.Confirm(context.Background()), common.ErrUnknownPhase)
}

func TestEngine_ConfirmWhileCreating(t *testing.T) {
	store := &fakeStore{}
	s := reviewing(t, eliaResult())
	engine := NewEngine(s, &fakeAnalyzer{}, store, nil)

	_, ok := s.Confirm()
	require.True(t, ok)

	assert.ErrorIs(t, engine.Confirm(context.Background()), common.ErrCommitInFlight)
	assert.Zero(t, store.calls())
}

func TestEngine_CommitFailureThenRetry(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{errs: []error{errors.New("database is locked")}}
	s := reviewing(t, eliaResult())
	engine := NewEngine(s, &fakeAnalyzer{}, store, nil)

	err := engine.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, PhaseError, s.Phase())
	assert.Equal(t, "database is locked", s.Err())

	require.NoError(t, engine.Retry(ctx))
	assert.Equal(t, PhaseDone, s.Phase())
	require.Len(t, store.batches, 2)
	assert.Equal(t, store.batches[0], store.batches[1])
}

func TestEngine_AutoAnalysisRetry(t *testing.T) {
	ctx := context.Background()
	analyzer := &fakeAnalyzer{err: errors.New("backend down")}
	s := NewChapterSession([]model.ChapterText{{Title: "One", Content: "Elia"}}, nil, "en", sequentialIDs())
	engine := NewEngine(s, analyzer, &fakeStore{}, nil)

	require.Error(t, engine.Analyze(ctx))
	assert.Equal(t, PhaseError, s.Phase())

	analyzer.err = nil
	analyzer.result = eliaResult()
	require.NoError(t, engine.Retry(ctx))
	assert.Equal(t, PhaseReview, s.Phase())
	assert.Len(t, analyzer.reqs, 2)
	assert.True(t, analyzer.reqs[1].IsChapters())
}

func TestEngine_StaleOutcomeDropped(t *testing.T) {
	s := NewSession(nil, "en", sequentialIDs())
	engine := NewEngine(s, &fakeAnalyzer{result: eliaResult()}, &fakeStore{}, nil)

	ticket, ok := s.Submit("Elia")
	require.True(t, ok)
	outcome := engine.FetchAnalysis(context.Background(), ticket)

	s.Abandon()
	assert.False(t, engine.ApplyAnalysis(outcome))
	assert.Equal(t, PhaseDone, s.Phase())
	assert.Zero(t, s.Len())
}

func TestEngine_CollaboratorPanic(t *testing.T) {
	store := &fakeStore{panicking: true}
	s := reviewing(t, eliaResult())
	engine := NewEngine(s, &fakeAnalyzer{}, store, nil)

	err := engine.Confirm(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store exploded")
	assert.Equal(t, PhaseError, s.Phase())
}

func TestEngine_InvalidCommitRejected(t *testing.T) {
	store := &fakeStore{}
	engine := NewEngine(reviewing(t, eliaResult()), &fakeAnalyzer{}, store, nil)

	outcome := engine.SubmitCommit(context.Background(), CommitTicket{
		Entities: []model.CommitEntity{{Name: "Sunblade", Type: model.EntityLore}},
	})
	require.ErrorIs(t, outcome.Err, model.ErrMissingLoreCategory)
	assert.Zero(t, store.calls())
}

func TestEngine_AddCategoryPersists(t *testing.T) {
	store := &fakeStore{}
	s := reviewing(t, eliaResult())
	engine := NewEngine(s, &fakeAnalyzer{}, store, store)

	name, added := engine.AddCategory(" Weapon ")
	require.True(t, added)
	assert.Equal(t, "weapon", name)

	_, added = engine.AddCategory("weapon")
	assert.False(t, added)

	engine.Close()
	require.Len(t, store.saved, 1)
	assert.Equal(t, []string{"item", "artifact", "material", "weapon"}, store.saved[0])
}

func TestEngine_AddCategoryKeepsProjectSpelling(t *testing.T) {
	store := &fakeStore{}
	s := NewSession([]string{"Magic System", "Item"}, "en")
	engine := NewEngine(s, &fakeAnalyzer{}, store, store)

	name, added := engine.AddCategory("ruins")
	require.True(t, added)
	assert.Equal(t, "ruins", name)

	name, added = engine.AddCategory("magic system")
	assert.False(t, added)
	assert.Equal(t, "Magic System", name)

	engine.Close()
	require.Len(t, store.saved, 1)
	assert.Equal(t, []string{"Magic System", "Item", "ruins"}, store.saved[0])
}

func TestEngine_AddCategoryFailureKeepsLocal(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("read-only")}
	s := reviewing(t, eliaResult())
	engine := NewEngine(s, &fakeAnalyzer{}, store, store)

	_, added := engine.AddCategory("spell")
	engine.Close()

	assert.True(t, added)
	assert.True(t, s.HasCategory("spell"))
}

func TestEngine_AddCategoryConverges(t *testing.T) {
	store := &fakeStore{}
	s := reviewing(t, eliaResult())
	engine := NewEngine(s, &fakeAnalyzer{}, store, store)

	for _, c := range []string{"weapon", "spell", "relic"} {
		engine.AddCategory(c)
	}
	engine.Close()

	require.NotEmpty(t, store.saved)
	assert.Equal(t, s.Categories(), store.saved[len(store.saved)-1])
}
