package testsupport

import (
	"path/filepath"
	"testing"

	"mediatasks/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.TVDB.APIKey = "test"
	cfgVal.TVDB.BaseURL = "http://127.0.0.1:0"
	cfgVal.TVDB.RequestsPerSecond = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTVDBServer points the TVDB section at a fake server.
func WithTVDBServer(server *TVDBServer) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TVDB.BaseURL = server.URL
		b.cfg.TVDB.APIKey = server.APIKey
	}
}

// WithTask appends a task definition.
func WithTask(task config.Task) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Tasks = append(b.cfg.Tasks, task)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
