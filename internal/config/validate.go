package config

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"mediatasks/internal/services"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTVDB(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return c.validateTasks()
}

func (c *Config) validateTVDB() error {
	if c.TVDB.RequestsPerSecond < 0 {
		return invalid("tvdb.requests_per_second must not be negative")
	}
	if c.TVDB.TimeoutSeconds <= 0 {
		return invalid("tvdb.timeout_seconds must be positive")
	}
	if c.TVDB.CacheTTLHours < 0 {
		return invalid("tvdb.cache_ttl_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return invalid(fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}
	return nil
}

func (c *Config) validateTasks() error {
	seen := make(map[string]struct{}, len(c.Tasks))
	for i, task := range c.Tasks {
		if task.Name == "" {
			return invalid(fmt.Sprintf("tasks[%d].name must be set", i))
		}
		if _, dup := seen[task.Name]; dup {
			return invalid(fmt.Sprintf("tasks[%d].name %q is defined more than once", i, task.Name))
		}
		seen[task.Name] = struct{}{}
		if len(task.Plugins) == 0 {
			return invalid(fmt.Sprintf("task %q has no plugins", task.Name))
		}
		if task.Schedule != "" {
			if _, err := cron.ParseStandard(task.Schedule); err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate", fmt.Sprintf("task %q schedule", task.Name), err)
			}
		}
	}
	return nil
}

func invalid(message string) error {
	return services.Wrap(services.ErrConfiguration, "config", "validate", message, nil)
}
