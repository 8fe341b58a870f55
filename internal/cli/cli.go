package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/subarch/pkg/cache"
	"github.com/matzehuels/subarch/pkg/errors"
	"github.com/matzehuels/subarch/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "subarch"

	// envAddr overrides the default listen address of "serve".
	envAddr = "SUBARCH_ADDR"

	defaultAddr = "127.0.0.1:8080"
)

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

	// cache flags, bound on the root command
	cacheBackend string
	cacheURL     string
	cachePrefix  string
	noCache      bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	cfg := c.cacheConfig()
	ch, err := cache.Open(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s cache", cfg.Backend)
	}
	c.Logger.Debug("cache", "backend", cfg.Backend, "prefix", cfg.Prefix)
	return pipeline.NewRunner(ch, cfg.Keyer(), c.Logger), nil
}

// cacheConfig merges the cache flags over the environment.
func (c *CLI) cacheConfig() cache.Config {
	if c.noCache {
		return cache.Config{Backend: cache.BackendNone}
	}
	cfg := cache.ConfigFromEnv()
	if c.cacheBackend != "" {
		cfg.Backend = c.cacheBackend
	}
	if c.cacheURL != "" {
		cfg.URL = c.cacheURL
	}
	if c.cachePrefix != "" {
		cfg.Prefix = c.cachePrefix
	}
	if cfg.Backend == "" {
		cfg.Backend = cache.BackendFile
	}
	return cfg
}

// load resolves a device reference (or library file) through a new runner.
func (c *CLI) load(ctx context.Context, ref, library string, refresh bool) (*pipeline.Result, *pipeline.Runner, error) {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return nil, nil, err
	}
	res, err := runner.Load(ctx, pipeline.Options{Device: ref, Library: library, Refresh: refresh})
	if err != nil {
		runner.Close()
		return nil, nil, err
	}
	return res, runner, nil
}
