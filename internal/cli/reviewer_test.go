package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
)

type stubAnalyzer struct {
	result model.AnalysisResult
}

func (s stubAnalyzer) Analyze(_ context.Context, _ model.AnalysisRequest) (model.AnalysisResult, error) {
	return s.result, nil
}

type recordingStore struct {
	batches [][]model.CommitEntity
}

func (r *recordingStore) BulkCreate(_ context.Context, entities []model.CommitEntity) ([]model.CreatedEntity, error) {
	r.batches = append(r.batches, entities)
	out := make([]model.CreatedEntity, len(entities))
	for i, e := range entities {
		out[i] = model.CreatedEntity{Type: e.Type, Name: e.Name, ID: int64(i + 1)}
	}
	return out, nil
}

func analyzedEngine(t *testing.T, store *recordingStore) *review.Engine {
	t.Helper()
	result := model.AnalysisResult{
		Confident: []model.Candidate{
			{Name: "Elia", SuggestedType: model.EntityCharacter, Aliases: []string{"Eli", "Lia"}, Snippet: "Elia drew her blade.", Frequency: 12, ChapterCount: 3},
			{Name: "Rustspire", SuggestedType: model.EntityLocation},
		},
		LowConfidence: []model.Candidate{
			{Name: "Sunblade"},
		},
	}
	session := review.NewSession([]string{"item", "artifact"}, "en")
	engine := review.NewEngine(session, stubAnalyzer{result: result}, store, nil)
	require.NoError(t, engine.Submit(context.Background(), "Elia walked to Rustspire."))
	return engine
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestReviewer_Run(t *testing.T) {
	store := &recordingStore{}
	engine := analyzedEngine(t, store)
	var out bytes.Buffer

	input := script(
		"",           // keep Elia as a character
		"2",          // drop alias "Lia"
		"e",          // rename Rustspire
		"Rust Spire", //
		"z",          // invalid
		"2",          // location
		"3",          // Sunblade is lore
		"Weapon",     // new category
		"y",          // create
	)
	require.NoError(t, NewReviewer(engine, input, &out).Run(context.Background()))

	require.Len(t, store.batches, 1)
	batch := store.batches[0]
	require.Len(t, batch, 3)

	assert.Equal(t, "Elia", batch[0].Name)
	assert.Equal(t, []string{"Eli"}, batch[0].Aliases)
	assert.Equal(t, "Rust Spire", batch[1].Name)
	assert.Equal(t, model.EntityLocation, batch[1].Type)
	assert.Equal(t, model.EntityLore, batch[2].Type)
	require.NotNil(t, batch[2].LoreCategory)
	assert.Equal(t, "weapon", *batch[2].LoreCategory)

	assert.Equal(t, review.PhaseDone, engine.Session().Phase())
	assert.Contains(t, out.String(), "Invalid choice")
	assert.Contains(t, out.String(), `Added category "weapon"`)
	assert.Contains(t, out.String(), "Created 3 entities")
}

func TestReviewer_Quit(t *testing.T) {
	store := &recordingStore{}
	engine := analyzedEngine(t, store)
	var out bytes.Buffer

	require.NoError(t, NewReviewer(engine, script("1", "", "q"), &out).Run(context.Background()))
	assert.Empty(t, store.batches)
	assert.Equal(t, review.PhaseDone, engine.Session().Phase())
	assert.Empty(t, engine.Session().Committed())
	assert.Contains(t, out.String(), "Review abandoned")
}

func TestReviewer_Decline(t *testing.T) {
	store := &recordingStore{}
	engine := analyzedEngine(t, store)
	var out bytes.Buffer

	require.NoError(t, NewReviewer(engine, script("", "", "", "x", "n"), &out).Run(context.Background()))
	assert.Empty(t, store.batches)
	assert.Contains(t, out.String(), "Nothing was created")
}

func TestReviewer_SkipEverything(t *testing.T) {
	store := &recordingStore{}
	engine := analyzedEngine(t, store)
	var out bytes.Buffer

	require.NoError(t, NewReviewer(engine, script("x", "4", "x"), &out).Run(context.Background()))
	assert.Empty(t, store.batches)
	assert.Equal(t, review.PhaseDone, engine.Session().Phase())
	assert.Contains(t, out.String(), "Nothing to create")
}

func TestReviewer_InputEnds(t *testing.T) {
	engine := analyzedEngine(t, &recordingStore{})
	var out bytes.Buffer

	err := NewReviewer(engine, script("1"), &out).Run(context.Background())
	require.ErrorIs(t, err, ErrInputClosed)
	assert.Equal(t, review.PhaseReview, engine.Session().Phase())
}

func TestReviewer_WrongPhase(t *testing.T) {
	session := review.NewSession(nil, "en")
	engine := review.NewEngine(session, stubAnalyzer{}, &recordingStore{}, nil)

	err := NewReviewer(engine, script(), &bytes.Buffer{}).Run(context.Background())
	require.ErrorIs(t, err, common.ErrUnknownPhase)
}
