package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTVDB()
	c.normalizeLogging()
	return c.normalizeTasks()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTVDB() {
	if value, ok := os.LookupEnv("TVDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.TVDB.APIKey = value
	}
	c.TVDB.APIKey = strings.TrimSpace(c.TVDB.APIKey)
	c.TVDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TVDB.BaseURL), "/")
	if c.TVDB.BaseURL == "" {
		c.TVDB.BaseURL = defaultTVDBBaseURL
	}
	c.TVDB.Language = strings.TrimSpace(c.TVDB.Language)
	if c.TVDB.Language == "" {
		c.TVDB.Language = defaultTVDBLanguage
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeTasks() error {
	for i := range c.Tasks {
		task := &c.Tasks[i]
		task.Name = strings.TrimSpace(task.Name)
		task.Schedule = strings.TrimSpace(task.Schedule)
		if strings.TrimSpace(task.EntriesFile) == "" {
			task.EntriesFile = ""
			continue
		}
		expanded, err := expandPath(task.EntriesFile)
		if err != nil {
			return fmt.Errorf("tasks[%d].entries_file: %w", i, err)
		}
		task.EntriesFile = expanded
	}
	return nil
}
