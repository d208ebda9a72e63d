package preflight

import (
	"context"
	"strings"

	"mediatasks/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// The TheTVDB check is skipped when no API key is configured.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckSeriesCache(ctx, cfg.SeriesCachePath()),
	}

	if strings.TrimSpace(cfg.TVDB.APIKey) == "" {
		results = append(results, Result{Name: tvdbCheckName, Detail: "API key missing (set tvdb.api_key or TVDB_API_KEY)"})
	} else {
		results = append(results, CheckTVDB(ctx, cfg.TVDB.APIKey, cfg.TVDB.BaseURL, cfg.TVDB.Language))
	}

	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
