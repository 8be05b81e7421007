// Package cli implements the gridpress command-line interface.
//
// This package provides commands for serving pages over HTTP, rendering
// static page HTML, fetching and saving page documents, editing sections,
// and managing the render cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - serve: Run the HTTP server (live pages, canvas, editing API)
//   - render: Render a page document to static HTML
//   - get / put: Fetch or save page documents as JSON
//   - section: Add, delete, move, and edit sections on a page
//   - watch: Follow live document updates in the terminal
//   - cache: Manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gridpress/gridpress/internal/config"
	"github.com/gridpress/gridpress/pkg/buildinfo"
	"github.com/gridpress/gridpress/pkg/cache"
	"github.com/gridpress/gridpress/pkg/store"
	filestore "github.com/gridpress/gridpress/pkg/store/file"
	memstore "github.com/gridpress/gridpress/pkg/store/memory"
	mongostore "github.com/gridpress/gridpress/pkg/store/mongo"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gridpress"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "GridPress serves and edits grid-based pages",
		Long:         `GridPress is a headless grid-page engine: pages are documents of typed sections placed on a column grid, rendered identically on the editing canvas and the static live surface.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a TOML config file")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	}

	// Register all subcommands
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.putCommand())
	root.AddCommand(c.sectionCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves the effective configuration: the --config file when
// given, the default configuration otherwise.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// Backend Factories
// =============================================================================

// newStore opens the document store selected by the configuration.
func (c *CLI) newStore(cmd *cobra.Command, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		return memstore.New(), nil
	case config.StoreMongo:
		return mongostore.New(cmd.Context(), mongostore.Config{
			URI:      cfg.Store.MongoURI,
			Database: cfg.Store.MongoDatabase,
			Logger:   c.Logger,
		})
	default:
		return filestore.New(cfg.Store.Dir)
	}
}

// newCache opens the render cache selected by the configuration. noCache
// forces the null cache regardless of configuration.
func (c *CLI) newCache(cmd *cobra.Command, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	case config.CacheRedis:
		return cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	default:
		return cache.NewMemoryCache(), nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/gridpress/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
