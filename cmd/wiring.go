package cmd

import (
	"fmt"

	"ConcertHub/cache"
	"ConcertHub/config"
	"ConcertHub/core/aggregation"
	"ConcertHub/core/archive"
	"ConcertHub/db"
	"ConcertHub/logger"
	"ConcertHub/repository"
)

// openMetadataStore connects the configured upstream response cache. The
// returned store is nil for the "none" backend; cleanup is never nil.
func openMetadataStore(cfg *config.Config) (cache.MetadataStore, func(), error) {
	noop := func() {}

	switch cfg.MetadataBackend {
	case config.MetadataBackendMemory:
		logger.Info("metadata cache held in process memory")
		return cache.NewMemoryMetadataStore(nil), noop, nil

	case config.MetadataBackendRedis:
		client, err := cache.ConnectRedis(cfg)
		if err != nil {
			return nil, noop, err
		}
		logger.Info("metadata cache backed by redis",
			logger.String("addr", client.Options().Addr))
		return cache.NewRedisMetadataStore(client), func() { client.Close() }, nil

	case config.MetadataBackendMySQL:
		if err := db.ConnectGormDB(cfg); err != nil {
			return nil, noop, err
		}
		if err := db.AutoMigrate(db.GormDB); err != nil {
			db.CloseGormDB()
			return nil, noop, err
		}
		logger.Info("metadata cache backed by MySQL")
		return repository.NewCacheEntryRepository(db.GormDB, nil), func() { db.CloseGormDB() }, nil
	}

	return nil, noop, nil
}

// buildEngine assembles the fetcher chain and the engine.
func buildEngine(cfg *config.Config) (*aggregation.Engine, cache.MetadataStore, func(), error) {
	store, cleanup, err := openMetadataStore(cfg)
	if err != nil {
		return nil, nil, cleanup, fmt.Errorf("metadata cache: %w", err)
	}

	client := archive.NewClient(archive.OptionsFromConfig(cfg))
	var fetcher archive.Fetcher = client
	if store != nil {
		fetcher = archive.NewCachingFetcher(client, store, cfg.SearchCacheTTL)
	}

	engine := aggregation.New(fetcher,
		cache.NewResultCache(cfg.ConcertCacheTTL, nil),
		nil,
		aggregation.OptionsFromConfig(cfg))

	logger.Info("aggregation engine ready",
		logger.String("browse_service", client.BaseURL()),
		logger.String("metadata_backend", cfg.MetadataBackend),
		logger.Duration("listing_ttl", cfg.ConcertCacheTTL))
	return engine, store, cleanup, nil
}
