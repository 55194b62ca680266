// internal/app/app.go

// Package app assembles the search core from configuration. Both the
// service binary and the operator CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"people-search/internal/common/config"
	"people-search/internal/common/database"
	"people-search/internal/common/logger"
	"people-search/internal/common/observability"
	"people-search/internal/common/validation"
	"people-search/internal/search/cache"
	"people-search/internal/search/diagnostics"
	"people-search/internal/search/history"
	"people-search/internal/search/orchestrator"
	"people-search/internal/search/profiles"
	"people-search/internal/search/providers"
	"people-search/pkg/registry"
)

const diagnosticsTimeout = 30 * time.Second

// App holds the wired components. Postgres, Redis, Elasticsearch, History
// and Profiles are nil when not configured.
type App struct {
	Config        *config.Config
	Selector      *providers.Selector
	Orchestrator  *orchestrator.Orchestrator
	Schema        *validation.SchemaValidator
	Cache         cache.Cache
	History       *history.PostgresLogger
	Profiles      *profiles.Directory
	Postgres      *database.PostgresClient
	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
	log           logger.Logger
}

// Build connects the backing stores the configuration asks for and wires
// the orchestrator. otel may be nil.
func Build(ctx context.Context, cfg *config.Config, otel *observability.Observability, log logger.Logger) (*App, error) {
	a := &App{Config: cfg, log: log}

	reg, err := registry.Load(cfg.Registry.Path)
	if err != nil {
		return nil, err
	}
	if a.Schema, err = validation.NewSchemaValidator(reg); err != nil {
		return nil, err
	}

	if cfg.Search.HistoryEnabled || cfg.Profiles.Backend == config.ProfilesBackendPostgres {
		pg, err := database.NewPostgres(ctx, cfg.Database.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.Postgres = pg
	}

	var searchLog history.SearchLogger = history.NewLogOnly(log)
	if cfg.Search.HistoryEnabled {
		a.History = history.NewPostgresLogger(a.Postgres, log)
		if err := a.History.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		searchLog = a.History
		log.Info("search history persisted to postgres", map[string]interface{}{
			"host":     cfg.Database.Postgres.Host,
			"database": cfg.Database.Postgres.Database,
		})
	}

	if err := a.buildDirectory(ctx); err != nil {
		a.Close()
		return nil, err
	}

	if cfg.Search.CacheBackend == config.CacheBackendRedis {
		a.Redis = database.NewRedis(cfg.Database.Redis)
		if err := a.Redis.Ping(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
	}
	if a.Cache, err = cache.New(cfg.Search, a.Redis, log); err != nil {
		a.Close()
		return nil, err
	}

	a.Selector = providers.NewSelector(cfg.Providers, log)
	a.Orchestrator = orchestrator.New(
		orchestrator.Config{ProviderTimeout: config.GetDuration(cfg.Search.ProviderTimeout)},
		a.Selector, searchLog, a.Cache, otel, log,
	)

	log.Info("search core ready", map[string]interface{}{
		"cacheBackend":   a.Cache.Backend(),
		"historyEnabled": cfg.Search.HistoryEnabled,
		"profiles":       cfg.Profiles.Backend,
	})
	return a, nil
}

// buildDirectory opens the profile directory on the configured backend.
func (a *App) buildDirectory(ctx context.Context) error {
	cfg := a.Config.Profiles

	var store profiles.Store
	switch cfg.Backend {
	case config.ProfilesBackendPostgres:
		pgStore := profiles.NewPostgresStore(a.Postgres)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pgStore
	case config.ProfilesBackendElasticsearch:
		es, err := database.NewElasticsearch(a.Config.Database.Elasticsearch)
		if err != nil {
			return err
		}
		a.Elasticsearch = es
		esStore := profiles.NewElasticsearchStore(es, cfg.Index)
		if err := esStore.EnsureIndex(ctx); err != nil {
			return fmt.Errorf("connect elasticsearch: %w", err)
		}
		store = esStore
	default:
		return nil
	}

	a.Profiles = profiles.NewDirectory(store, cfg.Limit, a.log)
	a.log.Info("profile directory ready", map[string]interface{}{
		"backend": store.Backend(),
		"limit":   cfg.Limit,
	})
	return nil
}

// Diagnostics checks every configured provider plus the backing stores in
// use. A failed database ping is critical.
func (a *App) Diagnostics() *diagnostics.Runner {
	checks := diagnostics.ProviderChecks(a.Config.Providers, a.Selector)
	if a.Postgres != nil {
		checks = append(checks, diagnostics.PingCheck("Database Connectivity", true, a.Postgres.Ping))
	}
	if a.Redis != nil {
		checks = append(checks, diagnostics.PingCheck("Cache Connectivity", false, a.Redis.Ping))
	}
	if a.Elasticsearch != nil {
		checks = append(checks, diagnostics.PingCheck("Directory Connectivity", false, a.Elasticsearch.Ping))
	}
	return diagnostics.NewRunner(checks, diagnosticsTimeout, a.log)
}

// Ready pings the backing stores in use.
func (a *App) Ready(ctx context.Context) error {
	var errs []error
	if a.Postgres != nil {
		if err := a.Postgres.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.Elasticsearch != nil {
		if err := a.Elasticsearch.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("elasticsearch: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *App) Close() {
	if a.Postgres != nil {
		if err := a.Postgres.Close(); err != nil {
			a.log.Warn("failed to close postgres", map[string]interface{}{"error": err})
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.log.Warn("failed to close redis", map[string]interface{}{"error": err})
		}
	}
}
