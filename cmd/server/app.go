package main

import (
	"context"
	"fmt"
	"io"

	"gorm.io/gorm"

	"github.com/JustJay7/case-lookup/internal/cache"
	"github.com/JustJay7/case-lookup/internal/config"
	"github.com/JustJay7/case-lookup/internal/database"
	"github.com/JustJay7/case-lookup/internal/lookup"
	"github.com/JustJay7/case-lookup/internal/scraper"
	"github.com/JustJay7/case-lookup/internal/storage"
	"github.com/JustJay7/case-lookup/pkg/logger"
)

// app holds the services built from the configuration.
type app struct {
	db      *gorm.DB
	repo    *database.Repository
	store   storage.Store
	client  lookup.Client
	cache   cache.Cache
	captcha *scraper.CaptchaSolver
	closers []io.Closer
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database: %w", err)
	}
	a := &app{db: db, repo: database.NewRepository(db), closers: []io.Closer{sqlDB}}

	a.store, err = buildStorage(ctx, cfg, db)
	if err != nil {
		a.close(log)
		return nil, err
	}
	a.closers = append(a.closers, a.store)

	if err := a.buildClient(cfg, log); err != nil {
		a.close(log)
		return nil, err
	}
	return a, nil
}

func buildStorage(ctx context.Context, cfg *config.Config, db *gorm.DB) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return storage.NewMemoryStore(), nil
	case config.StorageSQLite:
		return storage.NewSQLStore(db), nil
	case config.StorageRedis:
		s, err := storage.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// buildClient selects the lookup backend. Remote and scraper lookups are
// slow, so their successful results are cached.
func (a *app) buildClient(cfg *config.Config, log *logger.Logger) error {
	switch cfg.LookupMode {
	case config.LookupDemo:
		a.client = lookup.NewSimulatedClient(cfg.SimulatedLatency, cfg.SimulatedFailureRate, nil)
		return nil
	case config.LookupRemote:
		a.cache = cache.NewCache(cfg.CacheSize, cfg.CacheTTL)
		remote := lookup.NewRemoteClient(cfg.LookupURL, cfg.UserAgent, cfg.ScraperTimeout, log)
		a.client = cache.NewCachedClient(remote, a.cache, log)
		return nil
	case config.LookupScraper:
		a.captcha = scraper.NewCaptchaSolver(cfg, log)
		s, err := scraper.NewScraper(cfg, a.captcha, log)
		if err != nil {
			return fmt.Errorf("failed to initialize scraper: %w", err)
		}
		a.closers = append(a.closers, s)
		a.cache = cache.NewCache(cfg.CacheSize, cfg.CacheTTL)
		a.client = cache.NewCachedClient(s, a.cache, log)
		return nil
	default:
		return fmt.Errorf("unknown lookup mode %q", cfg.LookupMode)
	}
}

// close releases resources in reverse order of acquisition, so the
// database outlives the stores built on it.
func (a *app) close(log *logger.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Error("Failed to release resource", "error", err)
		}
	}
}
