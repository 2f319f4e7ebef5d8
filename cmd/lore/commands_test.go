package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/lorekeeper/internal/config"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/storage"
)

// useSettings replaces the global viper state for one test.
func useSettings(t *testing.T, values map[string]any) {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	for k, v := range values {
		viper.Set(k, v)
	}
	t.Cleanup(viper.Reset)
}

// sqliteProject creates a migrated project database in a temp directory.
func sqliteProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, storage.DatabaseFile))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.Close())
	return dir
}

func openStore(t *testing.T, dir string) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.OpenProject(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// fakeBackend answers the analysis and project config endpoints.
type fakeBackend struct {
	analyzeBodies []map[string]any
	mu            sync.Mutex
}

func (f *fakeBackend) serve(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			_, _ = w.Write([]byte(`{"status": "ok"}`))
		case "/api/project/config":
			_, _ = w.Write([]byte(`{"config": {"story_language": "en", "lore_categories": ["spell", "relic"]}}`))
		case "/api/project/import/ner-analyze":
			var body map[string]any
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.mu.Lock()
			f.analyzeBodies = append(f.analyzeBodies, body)
			f.mu.Unlock()
			_, _ = w.Write([]byte(`{
				"confident": [
					{"name": "Elia", "suggested_type": "character", "frequency": 4,
					 "chapter_count": 2, "snippet": "Elia walked", "aliases": []}
				],
				"low_confidence": [
					{"name": "Sunblade", "suggested_type": null, "frequency": 1,
					 "chapter_count": 1, "snippet": "the Sunblade", "aliases": []}
				]
			}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"extract", "analyze", "apply", "categories", "snapshots", "ping", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "log-level", "log-format", "backend-url", "project", "persistence", "language", "theme"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag %q", flag)
	}
}

func TestExtractCmd_Flags(t *testing.T) {
	cmd := extractCmd()
	for _, flag := range []string{"text-file", "chapters", "plain", "no-alt-screen"} {
		assert.NotNil(t, cmd.Flag(flag), "missing flag %q", flag)
	}

	_, err := run(t, extractCmd(), "", "--plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--plain needs --text-file or --chapters")
}

func TestExtractCmd_Plain(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.serve(t)
	dir := sqliteProject(t)
	useSettings(t, map[string]any{
		"backend.url":      srv.URL,
		"project.path":     dir,
		"persistence.mode": config.PersistenceSQLite,
	})

	draft := filepath.Join(t.TempDir(), "draft.md")
	require.NoError(t, os.WriteFile(draft, []byte("Elia drew the Sunblade.\n"), 0600))

	// Keep Elia, skip Sunblade, then create.
	out, err := run(t, extractCmd(), "\nx\ny\n", "--plain", "--text-file", draft)
	require.NoError(t, err)
	assert.Contains(t, out, "Created 1 entities")

	require.Len(t, backend.analyzeBodies, 1)
	assert.Equal(t, "Elia drew the Sunblade.", backend.analyzeBodies[0]["text"])

	names, err := openStore(t, dir).EntityNames(context.Background(), model.EntityCharacter)
	require.NoError(t, err)
	assert.Equal(t, []string{"Elia"}, names)
}

func TestAnalyzeCmd_WritesDocument(t *testing.T) {
	backend := &fakeBackend{}
	srv := backend.serve(t)
	useSettings(t, map[string]any{
		"backend.url":  srv.URL,
		"project.path": t.TempDir(),
	})

	chapters := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(chapters, "ch1.txt"), []byte("One\nElia walked."), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(chapters, "ch2.txt"), []byte("Two\nThe Sunblade."), 0600))
	output := filepath.Join(t.TempDir(), "review.yaml")

	out, err := run(t, analyzeCmd(), "", "--chapters", chapters, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 entities")

	require.Len(t, backend.analyzeBodies, 1)
	texts, ok := backend.analyzeBodies[0]["texts"].([]any)
	require.True(t, ok)
	assert.Len(t, texts, 2)

	doc, err := readDocument(output)
	require.NoError(t, err)
	assert.Equal(t, []string{"spell", "relic"}, doc.Categories)
	require.Len(t, doc.Entities, 2)
	assert.Equal(t, "Elia", doc.Entities[0].Name)
	assert.Equal(t, model.EntityCharacter, doc.Entities[0].Type)
	assert.Equal(t, model.BucketLowConfidence, doc.Entities[1].Bucket)
	assert.Equal(t, model.EntityUnclassified, doc.Entities[1].Type)
}

func TestAnalyzeCmd_RequiresSource(t *testing.T) {
	_, err := run(t, analyzeCmd(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--text-file or --chapters")
}

const reviewYAML = `version: 1
language: en
categories: [item, artifact, material]
entities:
  - name: Elia
    bucket: confident
    type: character
    aliases: [Eli, Lia]
    aliases_accepted: [true, false]
  - name: Sunblade
    bucket: low_confidence
    type: lore
    lore_category: Weapon
  - name: Kael
    bucket: low_confidence
`

func writeReview(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "review.yaml")
	require.NoError(t, os.WriteFile(path, []byte(reviewYAML), 0600))
	return path
}

func TestApplyCmd(t *testing.T) {
	dir := sqliteProject(t)
	useSettings(t, map[string]any{
		"project.path":     dir,
		"persistence.mode": config.PersistenceSQLite,
	})

	out, err := run(t, applyCmd(), "", writeReview(t), "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, `New category "weapon"`)
	assert.Contains(t, out, "Created 2 entities")

	store := openStore(t, dir)
	ctx := context.Background()

	characters, err := store.EntityNames(ctx, model.EntityCharacter)
	require.NoError(t, err)
	assert.Equal(t, []string{"Elia"}, characters)

	lore, err := store.EntityNames(ctx, model.EntityLore)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sunblade"}, lore)

	categories, err := store.LoadCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, "weapon")

	// The import was preceded by a snapshot that can undo it.
	out, err = run(t, snapshotsCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "before bulk create")

	// The same document again flags what the project already has.
	out, err = run(t, applyCmd(), "", writeReview(t), "--dry-run")
	require.NoError(t, err)
	assert.Regexp(t, `Already in the project: Elia, Sunblade`, out)
}

func TestApplyCmd_DryRun(t *testing.T) {
	dir := sqliteProject(t)
	useSettings(t, map[string]any{
		"project.path":     dir,
		"persistence.mode": config.PersistenceSQLite,
	})

	out, err := run(t, applyCmd(), "", writeReview(t), "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 2 entities would be created.")
	assert.Contains(t, out, "Sunblade")

	store := openStore(t, dir)
	characters, err := store.EntityNames(context.Background(), model.EntityCharacter)
	require.NoError(t, err)
	assert.Empty(t, characters)

	categories, err := store.LoadCategories(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, categories, "weapon")
}

func TestApplyCmd_Declined(t *testing.T) {
	dir := sqliteProject(t)
	useSettings(t, map[string]any{
		"project.path":     dir,
		"persistence.mode": config.PersistenceSQLite,
	})

	out, err := run(t, applyCmd(), "n\n", writeReview(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Create 2 entities? [y/N]")
	assert.Contains(t, out, "Nothing was created.")

	characters, err := openStore(t, dir).EntityNames(context.Background(), model.EntityCharacter)
	require.NoError(t, err)
	assert.Empty(t, characters)
}

type memoryCategories struct {
	categories []string
	saves      int
}

func (m *memoryCategories) LoadCategories(context.Context) ([]string, error) {
	return append([]string(nil), m.categories...), nil
}

func (m *memoryCategories) SaveCategories(_ context.Context, categories []string) error {
	m.categories = categories
	m.saves++
	return nil
}

func TestAddCategory(t *testing.T) {
	store := &memoryCategories{categories: []string{"item"}}
	ctx := context.Background()

	added, err := addCategory(ctx, store, "  Weapon ")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"item", "weapon"}, store.categories)

	added, err = addCategory(ctx, store, "ITEM")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, store.saves)

	_, err = addCategory(ctx, store, "   ")
	require.Error(t, err)
}

func TestAddCategory_KeepsExistingSpelling(t *testing.T) {
	store := &memoryCategories{categories: []string{"Magic System"}}
	ctx := context.Background()

	added, err := addCategory(ctx, store, "magic system")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = addCategory(ctx, store, "Ruins")
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"Magic System", "ruins"}, store.categories)
}

func TestCategoriesCmd(t *testing.T) {
	dir := sqliteProject(t)
	useSettings(t, map[string]any{
		"project.path":     dir,
		"persistence.mode": config.PersistenceSQLite,
	})

	out, err := run(t, categoriesCmd(), "", "add", "Spell")
	require.NoError(t, err)
	assert.Contains(t, out, `Added category "spell"`)

	out, err = run(t, categoriesCmd(), "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "artifact")
	assert.Contains(t, out, "spell")
}

func TestPingCmd(t *testing.T) {
	srv := (&fakeBackend{}).serve(t)
	useSettings(t, map[string]any{
		"backend.url":  srv.URL,
		"project.path": t.TempDir(),
	})

	out, err := run(t, pingCmd(), "", "--attempts", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "is up")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, versionCmd(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "lore dev")
}

func TestSnapshotsCmd_Restore(t *testing.T) {
	dir := sqliteProject(t)
	useSettings(t, map[string]any{
		"project.path":     dir,
		"persistence.mode": config.PersistenceSQLite,
	})

	_, err := run(t, applyCmd(), "", writeReview(t), "--yes")
	require.NoError(t, err)

	snapshots, err := storage.ListSnapshots(storage.ProjectSnapshotDir(dir))
	require.NoError(t, err)
	require.Len(t, snapshots, 1)

	out, err := run(t, snapshotsCmd(), "n\n", "restore", snapshots[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing was changed.")

	out, err = run(t, snapshotsCmd(), "", "restore", snapshots[0].ID, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored")

	characters, err := openStore(t, dir).EntityNames(context.Background(), model.EntityCharacter)
	require.NoError(t, err)
	assert.Empty(t, characters)
}
