package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/lorekeeper/internal/backend"
	"github.com/Veraticus/lorekeeper/internal/config"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/service"
	"github.com/Veraticus/lorekeeper/internal/storage"
)

// project bundles the collaborators one command needs, chosen by the
// configured persistence mode. The analyzer is always the backend.
type project struct {
	settings   config.Settings
	client     *backend.Client
	entities   service.EntityStore
	categories service.CategoryStore
	catalog    service.EntityCatalog
	config     model.ProjectConfig
	closeFn    func() error
}

func loadSettings() (config.Settings, error) {
	return config.Load(viper.GetViper())
}

func newClient(settings config.Settings) (*backend.Client, error) {
	return backend.New(backend.Config{
		BaseURL:     settings.BackendURL,
		ProjectPath: settings.ProjectPath,
		Timeout:     settings.Timeout,
	})
}

// openProject wires the stores and reads the project's language and
// lore categories.
func openProject(ctx context.Context, settings config.Settings) (*project, error) {
	client, err := newClient(settings)
	if err != nil {
		return nil, err
	}

	p := &project{
		settings: settings,
		client:   client,
		closeFn:  func() error { return nil },
	}

	switch settings.Persistence {
	case config.PersistenceSQLite:
		store, err := initStorage(ctx, settings.ProjectPath)
		if err != nil {
			return nil, err
		}
		if settings.Snapshots {
			if err := store.EnableSnapshots(); err != nil {
				slog.Warn("Snapshots disabled", "error", err)
			}
		}
		p.entities = store
		p.categories = store
		p.catalog = store
		p.closeFn = store.Close
		p.config, err = store.ProjectConfig(ctx)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
	default:
		p.entities = client
		p.categories = client
		p.config, err = client.ProjectConfig(ctx)
		if err != nil {
			slog.Warn("Could not read project config; using defaults", "error", err)
			p.config = model.ProjectConfig{LoreCategories: model.DefaultLoreCategories}
		}
	}
	return p, nil
}

// initStorage opens the project database and brings its schema up to date.
func initStorage(ctx context.Context, projectPath string) (*storage.SQLiteStorage, error) {
	store, err := storage.OpenProject(projectPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// language prefers the project's story language over the configured one.
func (p *project) language() string {
	if p.config.StoryLanguage != "" {
		return p.config.StoryLanguage
	}
	return p.settings.Language
}

// sessionOptions flags candidates the project already has. Only the
// project database can list its entities; a failed lookup is logged and
// the review goes on without flags.
func (p *project) sessionOptions(ctx context.Context) []review.Option {
	if p.catalog == nil {
		return nil
	}
	names := make(map[model.EntityType][]string)
	for _, t := range []model.EntityType{model.EntityCharacter, model.EntityLocation, model.EntityLore} {
		list, err := p.catalog.EntityNames(ctx, t)
		if err != nil {
			slog.Warn("Could not list existing entities", "type", t, "error", err)
			return nil
		}
		names[t] = list
	}
	return []review.Option{review.WithExisting(names)}
}

func (p *project) newEngine(session *review.Session) *review.Engine {
	return review.NewEngine(session, p.client, p.entities, p.categories)
}

func (p *project) Close() error {
	return p.closeFn()
}
