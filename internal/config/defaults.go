package config

const (
	defaultStateDir              = "~/.local/share/mediatasks"
	defaultLogDir                = "~/.local/share/mediatasks/logs"
	defaultTVDBBaseURL           = "https://api.thetvdb.com"
	defaultTVDBLanguage          = "en"
	defaultTVDBRequestsPerSecond = 5
	defaultTVDBTimeoutSeconds    = 15
	defaultTVDBCacheTTLHours     = 168
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		TVDB: TVDB{
			BaseURL:           defaultTVDBBaseURL,
			Language:          defaultTVDBLanguage,
			RequestsPerSecond: defaultTVDBRequestsPerSecond,
			TimeoutSeconds:    defaultTVDBTimeoutSeconds,
			CacheTTLHours:     defaultTVDBCacheTTLHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
