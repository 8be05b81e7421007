// Package config loads the gridpress server and CLI configuration from a
// TOML file, applying defaults for everything left unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gridpress/gridpress/pkg/grid"
)

// Store backend names.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Cache backend names.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Config is the complete gridpress configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Theme  ThemeConfig  `toml:"theme"`
	Grid   GridConfig   `toml:"grid"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend       string `toml:"backend"` // memory, file, mongo
	Dir           string `toml:"dir"`     // file backend
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects and configures the rendered-page cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"` // none, memory, file, redis
	Dir           string        `toml:"dir"`     // file backend
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	TTL           time.Duration `toml:"-"`
	TTLRaw        string        `toml:"ttl"` // duration string, e.g. "10m"
}

// ThemeConfig selects the render theme.
type ThemeConfig struct {
	Name string `toml:"name"` // light, dark
}

// GridConfig carries optional overrides of the stock grid configuration.
// Zero/empty fields keep the defaults.
type GridConfig struct {
	Cols              int            `toml:"cols"`
	RowHeight         int            `toml:"row_height"`
	Margin            []int          `toml:"margin"`
	Breakpoints       map[string]int `toml:"breakpoints"`
	ColsPerBreakpoint map[string]int `toml:"cols_per_breakpoint"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store:  StoreConfig{Backend: StoreFile, Dir: defaultDataDir("pages")},
		Cache:  CacheConfig{Backend: CacheMemory, TTL: 10 * time.Minute},
		Theme:  ThemeConfig{Name: "light"},
	}
}

// Load reads a TOML config file and merges it over the defaults. An empty
// path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Cache.TTLRaw != "" {
		ttl, err := time.ParseDuration(cfg.Cache.TTLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("parse cache ttl %q: %w", cfg.Cache.TTLRaw, err)
		}
		cfg.Cache.TTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks backend selections and required backend settings.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("store backend mongo requires mongo_uri")
		}
		if c.Store.MongoDatabase == "" {
			return fmt.Errorf("store backend mongo requires mongo_database")
		}
	default:
		return fmt.Errorf("invalid store backend: %q (must be one of: memory, file, mongo)", c.Store.Backend)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend redis requires redis_addr")
		}
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: none, memory, file, redis)", c.Cache.Backend)
	}

	return nil
}

// GridConfig materializes the effective grid configuration: the stock
// defaults with any configured overrides applied.
func (c Config) GridConfig() grid.Config {
	out := grid.DefaultConfig()
	if c.Grid.Cols > 0 {
		out.Cols = c.Grid.Cols
	}
	if c.Grid.RowHeight > 0 {
		out.RowHeight = c.Grid.RowHeight
	}
	if len(c.Grid.Margin) == 2 {
		out.Margin = [2]int{c.Grid.Margin[0], c.Grid.Margin[1]}
	}
	if len(c.Grid.Breakpoints) > 0 {
		out.Breakpoints = c.Grid.Breakpoints
	}
	if len(c.Grid.ColsPerBreakpoint) > 0 {
		out.ColsPerBreakpoint = c.Grid.ColsPerBreakpoint
	}
	return out
}

// defaultDataDir returns a directory under the user config dir, falling
// back to a relative path when the home directory is unavailable.
func defaultDataDir(sub string) string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".gridpress", sub)
	}
	return filepath.Join(base, "gridpress", sub)
}
