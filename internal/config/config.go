package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mediatasks/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// TVDB contains configuration for TheTVDB API.
type TVDB struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Language          string `toml:"language"`
	RequestsPerSecond int    `toml:"requests_per_second"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	CacheTTLHours     int    `toml:"cache_ttl_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Task describes one configured task. Plugins maps plugin names to their raw
// configuration; each plugin decodes its own table with DecodePlugin.
type Task struct {
	Name        string         `toml:"name"`
	Schedule    string         `toml:"schedule"`
	EntriesFile string         `toml:"entries_file"`
	Plugins     map[string]any `toml:"plugins"`
}

// Config encapsulates all configuration values for mediatasks.
//
// Configuration sections:
//   - Paths: state (cache database, lock file) and log directories
//   - TVDB: TheTVDB API credentials, limits, and lookup cache lifetime
//   - Logging: log format and level
//   - Tasks: named plugin pipelines, optionally scheduled
type Config struct {
	Paths   Paths   `toml:"paths"`
	TVDB    TVDB    `toml:"tvdb"`
	Logging Logging `toml:"logging"`
	Tasks   []Task  `toml:"tasks"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/mediatasks/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded. Unknown keys are rejected.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "parse", resolvedPath, describeDecodeError(err))
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		info, err := os.Stat(expanded)
		if err != nil {
			return "", false, fmt.Errorf("stat config %q: %w", expanded, err)
		}
		if info.IsDir() {
			return "", false, fmt.Errorf("config path %q is a directory", expanded)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediatasks.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// DecodePlugin decodes a raw plugin table into out. Fields already set on out
// act as defaults. Unknown keys produce an ErrConfiguration error naming the
// plugin.
func DecodePlugin[T any](plugin string, raw any, out *T) error {
	if raw == nil || out == nil {
		return nil
	}
	data, err := toml.Marshal(map[string]any{"config": raw})
	if err != nil {
		return services.Wrap(services.ErrConfiguration, plugin, "encode config", "", err)
	}
	wrapper := struct {
		Config T `toml:"config"`
	}{Config: *out}

	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&wrapper); err != nil {
		return services.Wrap(services.ErrConfiguration, plugin, "decode config", "", describeDecodeError(err))
	}
	*out = wrapper.Config
	return nil
}

func describeDecodeError(err error) error {
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		return errors.New(strings.TrimSpace(strict.String()))
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		return errors.New(strings.TrimSpace(decodeErr.String()))
	}
	return err
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SeriesCachePath returns the location of the series lookup database.
func (c *Config) SeriesCachePath() string {
	return filepath.Join(c.Paths.StateDir, "series.db")
}

// LockPath returns the location of the task run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "mediatasks.lock")
}

// TVDBTimeout returns the per-request timeout for TheTVDB calls.
func (c *Config) TVDBTimeout() time.Duration {
	return time.Duration(c.TVDB.TimeoutSeconds) * time.Second
}

// SeriesCacheTTL returns how long a cached series lookup stays fresh.
func (c *Config) SeriesCacheTTL() time.Duration {
	return time.Duration(c.TVDB.CacheTTLHours) * time.Hour
}

// Task returns the named task definition.
func (c *Config) Task(name string) (Task, bool) {
	name = strings.TrimSpace(name)
	for _, task := range c.Tasks {
		if task.Name == name {
			return task, true
		}
	}
	return Task{}, false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
