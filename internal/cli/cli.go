package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/oceanviz/reefgraph/pkg/cache"
	"github.com/oceanviz/reefgraph/pkg/config"
	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/store"
)

// loadConfig resolves the effective configuration for a command.
func loadConfig(path string) (config.Config, error) {
	return config.Load(path)
}

// openCache creates the cache backend named by the configuration.
// One-shot commands fall back to the null cache when the configured
// backend cannot be reached, rather than failing the run.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	switch cfg.Backend {
	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return c
	case "memory":
		return cache.NewMemoryCache()
	default:
		return cache.NewNullCache()
	}
}

// openStore creates the snapshot store named by the configuration.
// Unlike openCache this fails hard: a command asked to persist snapshots
// must not silently drop them.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "mongo":
		return store.NewMongoStore(ctx, cfg.MongoURI)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
}
