package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"mediatasks/internal/config"
	"mediatasks/internal/logging"
	"mediatasks/internal/plugin"
	"mediatasks/internal/plugins"
	"mediatasks/internal/render"
	"mediatasks/internal/seriescache"
	"mediatasks/internal/tvdb"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	client *tvdb.Client
	store  *seriescache.Store
	deps   *plugin.Deps
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// ensureLogger builds the command logger. Console output goes to stderr so
// tables and JSON on stdout stay machine readable.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = *c.logLevelFlag
		}
		logPath := filepath.Join(cfg.Paths.LogDir, "mediatasks.log")
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:   level,
			Format:  cfg.Logging.Format,
			Outputs: []string{"stderr", logPath},
		})
	})
	return c.logger, c.loggerErr
}

// ensureDeps wires the TheTVDB client, the series cache, and the renderer.
// A missing API key leaves the TheTVDB collaborators unset; plugins that need
// them report a configuration error when used.
func (c *commandContext) ensureDeps() (*plugin.Deps, error) {
	if c.deps != nil {
		return c.deps, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	deps := &plugin.Deps{Renderer: render.New(), Logger: logger}
	if strings.TrimSpace(cfg.TVDB.APIKey) != "" {
		client, err := tvdb.New(cfg.TVDB.APIKey, cfg.TVDB.BaseURL, cfg.TVDB.Language,
			tvdb.WithRateLimit(cfg.TVDB.RequestsPerSecond),
			tvdb.WithTimeout(cfg.TVDBTimeout()),
		)
		if err != nil {
			return nil, err
		}
		store, err := seriescache.Open(cfg.SeriesCachePath())
		if err != nil {
			logging.WarnWithContext(logger, "series cache unavailable", "series_cache_unavailable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "every series lookup goes to thetvdb"),
				logging.String(logging.FieldErrorHint, "check the state directory permissions"),
			)
			store = nil
		}
		c.client = client
		c.store = store
		deps.Favorites = client
		resolver := seriescache.NewResolver(store, client, cfg.SeriesCacheTTL(), logger)
		pruneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := resolver.Prune(pruneCtx); err != nil {
			logging.WarnWithContext(logger, "series cache prune failed", "series_cache_prune_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale rows stay until the next start"),
			)
		}
		cancel()
		deps.Series = resolver
	}
	c.deps = deps
	return deps, nil
}

func (c *commandContext) ensureRegistry() (*plugin.Registry, error) {
	return plugins.NewRegistry()
}

func (c *commandContext) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil && c.logger != nil {
			c.logger.Warn("failed to close series cache", logging.Error(err))
		}
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
