package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/raphaelgruber/circlemap/internal/config"
	"github.com/raphaelgruber/circlemap/internal/db"
	"github.com/raphaelgruber/circlemap/internal/llm"
	"github.com/raphaelgruber/circlemap/internal/match"
	"github.com/raphaelgruber/circlemap/internal/metrics"
	"github.com/raphaelgruber/circlemap/internal/models"
	"github.com/raphaelgruber/circlemap/internal/vocab"
)

var (
	// ErrNotFound is returned for unknown overlays and user contexts.
	ErrNotFound = errors.New("not found")
	// ErrEnrichmentDisabled is returned when no model is configured.
	ErrEnrichmentDisabled = errors.New("enrichment is not configured")
)

// Store is the persistent contact memory. *db.Client implements it.
type Store interface {
	OverlayStore
	JobStore
	GetOverlay(ctx context.Context, profileID string) (*models.StoredOverlay, error)
	ListOverlays(ctx context.Context) ([]models.StoredOverlay, error)
	DeleteOverlay(ctx context.Context, profileID string) error
	UpsertUserContext(ctx context.Context, name string, uc models.UserContext) (*models.StoredUserContext, error)
	GetUserContext(ctx context.Context, name string) (*models.StoredUserContext, error)
	Close(ctx context.Context) error
}

// OpenOptions selects the optional collaborators Open connects.
type OpenOptions struct {
	// Database connects SurrealDB for overlays, user contexts and jobs.
	Database bool
	// Enrichment creates the LLM model used by enrich jobs.
	Enrichment bool
	// Wipe clears every table after connecting. Testing only.
	Wipe bool
}

// Services bundles everything the CLI, HTTP API and MCP server share.
type Services struct {
	Config   config.Config
	Vocab    *vocab.Vocabulary
	Metrics  *metrics.Collector
	Analyzer *Analyzer
	Registry *Registry
	Match    *MatchService
	Jobs     *JobManager
	Enrich   *EnrichService // nil when enrichment is disabled

	store  Store // nil without a database
	logger *slog.Logger

	ctxMu    sync.RWMutex
	contexts map[string]models.UserContext
}

// New assembles services around optional collaborators. enricher and store
// may be nil.
func New(cfg config.Config, v *vocab.Vocabulary, enricher ProfileEnricher, store Store, mc *metrics.Collector, logger *slog.Logger) *Services {
	if v == nil {
		v = vocab.Default()
	}
	if mc == nil {
		mc = metrics.NewCollector()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Services{
		Config:   cfg,
		Vocab:    v,
		Metrics:  mc,
		Analyzer: NewAnalyzer(v, mc, logger),
		Registry: NewRegistry(),
		Match:    NewMatchService(match.NewEngine(v), v, mc, 0),
		store:    store,
		logger:   logger,
		contexts: map[string]models.UserContext{},
	}

	var jobStore JobStore
	var overlayStore OverlayStore
	if store != nil {
		jobStore = store
		overlayStore = store
	}
	s.Jobs = NewJobManager(cfg.EnrichConcurrency, jobStore, logger)
	if enricher != nil {
		s.Enrich = NewEnrichService(enricher, s.Registry, overlayStore, s.Jobs, logger)
	}
	return s
}

// Open builds services from configuration, connecting the database and the
// enrichment model when asked to. Overlays already in the database are
// loaded into the registry.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger, opts OpenOptions) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v, err := vocab.LoadFile(cfg.VocabularyFile)
	if err != nil {
		return nil, err
	}
	mc := metrics.NewCollector()

	var store Store
	if opts.Database {
		client, err := db.NewClient(ctx, db.ConfigFrom(cfg), logger, mc)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := client.InitSchema(ctx); err != nil {
			_ = client.Close(ctx)
			return nil, fmt.Errorf("init schema: %w", err)
		}
		if opts.Wipe {
			if err := client.WipeData(ctx); err != nil {
				_ = client.Close(ctx)
				return nil, fmt.Errorf("wipe database: %w", err)
			}
			logger.Warn("database wiped")
		}
		store = client
	}

	var enricher ProfileEnricher
	if opts.Enrichment {
		model, err := llm.NewModel(ctx, cfg)
		if err != nil {
			if store != nil {
				_ = store.Close(ctx)
			}
			return nil, fmt.Errorf("create model: %w", err)
		}
		enrichOpts := []llm.EnricherOption{llm.WithMetrics(mc), llm.WithLogger(logger)}
		if cfg.CacheTTL > 0 {
			cache, err := llm.NewCache(cfg.CacheDir, cfg.CacheTTL)
			if err != nil {
				logger.Warn("enrichment cache disabled", "error", err)
			} else {
				enrichOpts = append(enrichOpts, llm.WithCache(cache, cache.TTL()))
			}
		}
		enricher = llm.NewEnricher(model, enrichOpts...)
	}

	s := New(cfg, v, enricher, store, mc, logger)

	if store != nil {
		if _, err := s.Jobs.AbandonInterrupted(ctx); err != nil {
			logger.Warn("failed to abandon interrupted jobs", "error", err)
		}
		if err := s.loadOverlays(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
	}

	logger.Info("services ready", "database", store != nil, "enrichment", enricher != nil,
		"provider", cfg.LLMProvider, "model", cfg.LLMModel)
	return s, nil
}

func (s *Services) loadOverlays(ctx context.Context) error {
	stored, err := s.store.ListOverlays(ctx)
	if err != nil {
		return fmt.Errorf("load overlays: %w", err)
	}
	for _, so := range stored {
		s.Registry.SetOverlay(so.ProfileID, so.Overlay)
	}
	s.logger.Debug("overlays loaded", "count", len(stored))
	return nil
}

// Close releases the database connection.
func (s *Services) Close(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Close(ctx)
}

// HasStore reports whether a database is connected.
func (s *Services) HasStore() bool {
	return s.store != nil
}

// Analyze runs the pipeline over text and makes its profiles the current
// roster.
func (s *Services) Analyze(ctx context.Context, text string) (*Analysis, error) {
	a, err := s.Analyzer.Analyze(ctx, text)
	if err != nil {
		return nil, err
	}
	s.Registry.Load(a)
	return a, nil
}

// StartEnrich starts an enrichment job over ids, or over every loaded
// profile when ids is empty.
func (s *Services) StartEnrich(ctx context.Context, name string, ids []string) (Job, error) {
	if s.Enrich == nil {
		return Job{}, ErrEnrichmentDisabled
	}
	return s.Enrich.Start(ctx, name, ids)
}

// SetOverlay stores an overlay for id in the registry and, when connected,
// in the database.
func (s *Services) SetOverlay(ctx context.Context, id, source string, o models.Overlay) error {
	if s.store != nil {
		if _, err := s.store.UpsertOverlay(ctx, id, source, o); err != nil {
			return err
		}
	}
	s.Registry.SetOverlay(id, o)
	return nil
}

// Overlay returns the overlay for id.
func (s *Services) Overlay(ctx context.Context, id string) (models.Overlay, error) {
	if o, ok := s.Registry.Overlay(id); ok {
		return o, nil
	}
	if s.store != nil {
		so, err := s.store.GetOverlay(ctx, id)
		if err == nil {
			s.Registry.SetOverlay(id, so.Overlay)
			return so.Overlay, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return models.Overlay{}, err
		}
	}
	return models.Overlay{}, fmt.Errorf("overlay %s: %w", id, ErrNotFound)
}

// OverlayIDs lists the ids that have an overlay, sorted.
func (s *Services) OverlayIDs() []string {
	all := s.Registry.Overlays()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeleteOverlay removes the overlay for id everywhere.
func (s *Services) DeleteOverlay(ctx context.Context, id string) error {
	found := s.Registry.DeleteOverlay(id)
	if s.store != nil {
		err := s.store.DeleteOverlay(ctx, id)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, db.ErrNotFound):
			return err
		}
	}
	if !found {
		return fmt.Errorf("overlay %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetUserContext stores the organizer context under name.
func (s *Services) SetUserContext(ctx context.Context, name string, uc models.UserContext) error {
	if s.store != nil {
		if _, err := s.store.UpsertUserContext(ctx, name, uc); err != nil {
			return err
		}
	}
	s.ctxMu.Lock()
	s.contexts[name] = uc
	s.ctxMu.Unlock()
	return nil
}

// UserContext returns the organizer context stored under name.
func (s *Services) UserContext(ctx context.Context, name string) (models.UserContext, error) {
	s.ctxMu.RLock()
	uc, ok := s.contexts[name]
	s.ctxMu.RUnlock()
	if ok {
		return uc, nil
	}
	if s.store != nil {
		stored, err := s.store.GetUserContext(ctx, name)
		if err == nil {
			return stored.Context, nil
		}
		if !errors.Is(err, db.ErrNotFound) {
			return models.UserContext{}, err
		}
	}
	return models.UserContext{}, fmt.Errorf("user context %s: %w", name, ErrNotFound)
}
