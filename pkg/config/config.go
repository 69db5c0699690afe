// Package config loads reefgraph settings from a TOML file.
//
// Every field has a sensible default, so an absent file or a partial
// one is fine: Load starts from Default and overlays whatever the file
// sets. Layout tuning constants map directly onto layout.Config.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/oceanviz/reefgraph/pkg/errors"
	"github.com/oceanviz/reefgraph/pkg/graph"
	"github.com/oceanviz/reefgraph/pkg/layout"
)

// Config is the full application configuration.
type Config struct {
	Graph  GraphConfig   `toml:"graph"`
	Layout layout.Config `toml:"layout"`
	Cache  CacheConfig   `toml:"cache"`
	Store  StoreConfig   `toml:"store"`
	Server ServerConfig  `toml:"server"`
}

// GraphConfig holds the weight normalization constants for graph building.
type GraphConfig struct {
	ParameterDivisor float64 `toml:"parameter_divisor"`
	BiologyDivisor   float64 `toml:"biology_divisor"`
	MinWeight        float64 `toml:"min_weight"`
	MaxWeight        float64 `toml:"max_weight"`
}

// Scale converts the graph section into the builder's scale constants.
func (g GraphConfig) Scale() graph.Scale {
	return graph.Scale{
		ParameterDivisor: g.ParameterDivisor,
		BiologyDivisor:   g.BiologyDivisor,
		MinWeight:        g.MinWeight,
		MaxWeight:        g.MaxWeight,
	}
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	// Backend is "null", "memory", or "redis".
	Backend string `toml:"backend"`
	// RedisAddr is the host:port of the Redis server, used when Backend
	// is "redis".
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
}

// StoreConfig selects the snapshot store backend.
type StoreConfig struct {
	// Backend is "memory" or "mongo".
	Backend string `toml:"backend"`
	// MongoURI is the connection string, used when Backend is "mongo".
	MongoURI string `toml:"mongo_uri"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	scale := graph.DefaultScale()
	return Config{
		Graph: GraphConfig{
			ParameterDivisor: scale.ParameterDivisor,
			BiologyDivisor:   scale.BiologyDivisor,
			MinWeight:        scale.MinWeight,
			MaxWeight:        scale.MaxWeight,
		},
		Layout: layout.DefaultConfig(),
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
		},
		Store: StoreConfig{
			Backend:  "memory",
			MongoURI: "mongodb://localhost:27017",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config file %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config file %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the cross-field constraints a TOML overlay can break.
func (c Config) Validate() error {
	if c.Graph.ParameterDivisor <= 0 || c.Graph.BiologyDivisor <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "graph divisors must be positive")
	}
	if c.Graph.MinWeight <= 0 || c.Graph.MaxWeight <= c.Graph.MinWeight {
		return errors.New(errors.ErrCodeInvalidConfig, "graph weight band must satisfy 0 < min < max")
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "layout canvas must have positive dimensions")
	}
	if c.Layout.AlphaDecay <= 0 || c.Layout.AlphaDecay >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_decay must be in (0, 1)")
	}
	if c.Layout.AlphaMin <= 0 || c.Layout.AlphaMin >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "alpha_min must be in (0, 1)")
	}
	if c.Layout.MinScale <= 0 || c.Layout.MaxScale <= c.Layout.MinScale {
		return errors.New(errors.ErrCodeInvalidConfig, "view scale bounds must satisfy 0 < min < max")
	}
	switch c.Cache.Backend {
	case "null", "memory", "redis":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}
