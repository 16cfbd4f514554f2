package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/semindex-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/semindex-cli/internal/connectors/filesystem"
	"github.com/custodia-labs/semindex-cli/internal/connectors/github"
	"github.com/custodia-labs/semindex-cli/internal/core/ports/driven"
	"github.com/custodia-labs/semindex-cli/internal/core/services"
)

// app is the assembled application: configuration, stores, provider,
// handlers and services. Built once per command invocation.
type app struct {
	cfg        file.Config
	store      *sqlite.Store
	provider   driven.EmbeddingProvider
	resolver   *services.Resolver
	pipeline   *services.Pipeline
	search     *services.SearchEngine
	sources    driven.SourceRepository
	embeddings driven.EmbeddingRepository
	registry   driven.RegistryRepository
	tags       driven.TagRepository
}

// openApp loads configuration, opens the store and registers all handlers.
// The caller must Close the returned app.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := file.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	provider, err := newProvider(cfg.Embedding)
	if err != nil {
		store.Close()
		return nil, err
	}

	a := &app{
		cfg:        cfg,
		store:      store,
		provider:   provider,
		sources:    store.SourceRepository(),
		embeddings: store.EmbeddingRepository(),
		registry:   store.RegistryRepository(),
		tags:       store.TagRepository(),
	}

	a.resolver = services.NewResolver(a.registry)
	handlers := []driven.SourceHandler{
		filesystem.New(a.tags),
		github.New(a.tags, cfg.GitHub.Token),
	}
	for _, h := range handlers {
		if err := a.resolver.Register(ctx, h); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.pipeline = services.NewPipeline(
		a.sources, a.embeddings, a.provider, a.resolver,
		services.WithChunkSize(cfg.Chunking.Size),
		services.WithChunkOverlap(cfg.Chunking.Overlap),
	)
	a.search = services.NewSearchEngine(a.embeddings, a.sources, a.provider)
	return a, nil
}

// Close releases the provider and the store.
func (a *app) Close() {
	if a.provider != nil {
		_ = a.provider.Close()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
}

// newProvider builds the configured embedding provider.
func newProvider(cfg file.EmbeddingConfig) (driven.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return ollama.New(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
		}), nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			BatchSize:  cfg.BatchSize,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q (want ollama or openai)", cfg.Provider)
	}
}
