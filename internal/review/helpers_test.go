package review

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"

	"github.com/Veraticus/lorekeeper/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// sequentialIDs yields "c1", "c2", ... so tests can address candidates.
func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("c%d", n)
	})
}

// eliaResult is a small analysis with one candidate of each interesting shape.
func eliaResult() model.AnalysisResult {
	return model.AnalysisResult{
		Confident: []model.Candidate{
			{Name: "Elia", SuggestedType: model.EntityCharacter, Aliases: []string{"Eli", "Lia"}, Frequency: 12, ChapterCount: 3},
			{Name: "Rustspire", SuggestedType: model.EntityLocation, Frequency: 5, ChapterCount: 2},
		},
		LowConfidence: []model.Candidate{
			{Name: "Kael", Frequency: 2, ChapterCount: 1},
		},
	}
}

// reviewing returns a manual session already in PhaseReview over result.
func reviewing(t *testing.T, result model.AnalysisResult, categories ...string) *Session {
	t.Helper()
	if categories == nil {
		categories = model.DefaultLoreCategories
	}
	s := NewSession(categories, "en", sequentialIDs())
	ticket, ok := s.Submit("Elia walked to Rustspire with Kael.")
	if !ok {
		t.Fatalf("submit refused")
	}
	if !s.ResolveAnalysis(ticket.Generation, result) {
		t.Fatalf("resolve refused")
	}
	return s
}

type fakeAnalyzer struct {
	err    error
	result model.AnalysisResult
	reqs   []model.AnalysisRequest
	mu     sync.Mutex
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req model.AnalysisRequest) (model.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	return f.result, f.err
}

type fakeStore struct {
	errs      []error
	batches   [][]model.CommitEntity
	saved     [][]string
	saveErr   error
	panicking bool
	mu        sync.Mutex
}

func (f *fakeStore) BulkCreate(_ context.Context, entities []model.CommitEntity) ([]model.CreatedEntity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicking {
		panic("store exploded")
	}
	f.batches = append(f.batches, entities)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	created := make([]model.CreatedEntity, len(entities))
	for i, e := range entities {
		created[i] = model.CreatedEntity{ID: int64(i + 1), Name: e.Name, Type: e.Type}
		if e.LoreCategory != nil {
			created[i].Category = *e.LoreCategory
		}
	}
	return created, nil
}

func (f *fakeStore) LoadCategories(context.Context) ([]string, error) {
	return model.DefaultLoreCategories, nil
}

func (f *fakeStore) SaveCategories(_ context.Context, categories []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, append([]string(nil), categories...))
	return f.saveErr
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}
