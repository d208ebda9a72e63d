package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"mediatasks/internal/entry"
	"mediatasks/internal/logging"
	"mediatasks/internal/services"
	"mediatasks/internal/tvdb"
)

const seriesURLFormat = "http://thetvdb.com/index.php?tab=series&id=%d"

// Config is the thetvdb_list plugin schema.
type Config struct {
	Username   string `toml:"username"`
	AccountID  string `toml:"account_id"`
	StripDates bool   `toml:"strip_dates"`
}

// Validate reports missing required fields.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(c.AccountID) == "" {
		missing = append(missing, "account_id")
	}
	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "thetvdb_list", "validate config",
			"missing required field(s): "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// Credentials returns the TheTVDB user credentials for this list.
func (c Config) Credentials() tvdb.Credentials {
	return tvdb.Credentials{Username: c.Username, AccountID: c.AccountID}
}

// FavoritesAPI is the remote favorites surface.
type FavoritesAPI interface {
	Favorites(ctx context.Context, creds tvdb.Credentials) ([]string, error)
	AddFavorite(ctx context.Context, creds tvdb.Credentials, seriesID string) error
	RemoveFavorite(ctx context.Context, creds tvdb.Credentials, seriesID string) error
}

// SeriesLookup resolves a series id to its record.
type SeriesLookup interface {
	Lookup(ctx context.Context, seriesID int64) (tvdb.Series, error)
}

// TVDBSet is a Set over a TheTVDB user's favorites.
type TVDBSet struct {
	cfg    Config
	api    FavoritesAPI
	lookup SeriesLookup
	logger *slog.Logger

	items  []*entry.Entry
	cached bool
}

var _ Set = (*TVDBSet)(nil)

// NewTVDBSet validates cfg and returns an uncached set.
func NewTVDBSet(cfg Config, api FavoritesAPI, lookup SeriesLookup, logger *slog.Logger) (*TVDBSet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &TVDBSet{
		cfg:    cfg,
		api:    api,
		lookup: lookup,
		logger: logging.NewComponentLogger(logger, "thetvdb_list"),
	}, nil
}

// List returns the favorites, fetching and resolving them on a cache miss.
// Returned entries are copies; mutating them does not touch the cache.
func (s *TVDBSet) List(ctx context.Context) ([]*entry.Entry, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*entry.Entry, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out, nil
}

func (s *TVDBSet) load(ctx context.Context) ([]*entry.Entry, error) {
	if s.cached {
		return s.items, nil
	}
	ids, err := s.api.Favorites(ctx, s.cfg.Credentials())
	if err != nil {
		return nil, services.Wrap(services.ErrRemoteService, "thetvdb_list", "fetch favorites",
			"error retrieving favorites from thetvdb", err)
	}

	logger := logging.WithContext(ctx, s.logger)
	items := make([]*entry.Entry, 0, len(ids))
	for _, raw := range ids {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		item, err := s.resolve(ctx, raw)
		if err != nil {
			logger.Error("error looking up series from thetvdb",
				logging.String(logging.FieldSeriesID, raw),
				logging.Error(err),
				logging.String(logging.FieldEventType, "favorite_lookup_failed"),
				logging.String(logging.FieldErrorHint, "the series may have been removed from thetvdb"),
			)
			continue
		}
		items = append(items, item)
	}

	s.items = items
	s.cached = true
	logger.Debug("favorites loaded", logging.Int("count", len(items)), logging.Int("remote_ids", len(ids)))
	return s.items, nil
}

func (s *TVDBSet) resolve(ctx context.Context, raw string) (*entry.Entry, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, services.Wrap(services.ErrLookup, "thetvdb_list", "parse id",
			fmt.Sprintf("favorite id %q is not numeric", raw), err)
	}
	series, err := s.lookup.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	name := series.Name
	if s.cfg.StripDates {
		name, _ = SplitTitleYear(name)
	}
	item := entry.New(name)
	item.SeriesName = name
	item.URL = fmt.Sprintf(seriesURLFormat, series.ID)
	item.TVDBID = strconv.FormatInt(series.ID, 10)
	return item, nil
}

// Contains reports whether e's tvdb_id is among the favorites.
func (s *TVDBSet) Contains(ctx context.Context, e *entry.Entry) (bool, error) {
	item, err := s.Find(ctx, e)
	return item != nil, err
}

// Find returns the favorite with e's tvdb_id. An entry without tvdb_id is
// never found and triggers no remote call.
func (s *TVDBSet) Find(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if e == nil || e.TVDBID == "" {
		title := ""
		if e != nil {
			title = e.Title
		}
		logging.WithContext(ctx, s.logger).Debug("entry does not have tvdb_id, skipping", logging.Entry(title))
		return nil, nil
	}
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.TVDBID == e.TVDBID {
			return item.Clone(), nil
		}
	}
	return nil, nil
}

// Add favorites e's series. The cache is invalidated afterwards even when
// the remote call failed.
func (s *TVDBSet) Add(ctx context.Context, e *entry.Entry) {
	logger := logging.WithContext(ctx, s.logger)
	if e == nil || e.TVDBID == "" {
		logger.Info("entry does not have tvdb_id, cannot add to list; consider using a lookup plugin", logging.Entry(titleOf(e)))
		return
	}
	if err := s.api.AddFavorite(ctx, s.cfg.Credentials(), e.TVDBID); err != nil {
		logger.Error("could not add series to favorites list",
			logging.String(logging.FieldSeriesID, e.TVDBID),
			logging.Entry(e.Title),
			logging.Error(err),
			logging.String(logging.FieldEventType, "favorite_add_failed"),
			logging.String(logging.FieldErrorHint, "check thetvdb credentials and connectivity"),
		)
	} else {
		logger.Info("added series to favorites", logging.String(logging.FieldSeriesID, e.TVDBID), logging.Entry(e.Title))
	}
	s.InvalidateCache()
}

// Remove unfavorites e's series. The cache is left as is.
func (s *TVDBSet) Remove(ctx context.Context, e *entry.Entry) {
	logger := logging.WithContext(ctx, s.logger)
	if e == nil || e.TVDBID == "" {
		logger.Info("entry does not have tvdb_id, cannot remove from list; consider using a lookup plugin", logging.Entry(titleOf(e)))
		return
	}
	if err := s.api.RemoveFavorite(ctx, s.cfg.Credentials(), e.TVDBID); err != nil {
		logger.Error("could not remove series from favorites list",
			logging.String(logging.FieldSeriesID, e.TVDBID),
			logging.Entry(e.Title),
			logging.Error(err),
			logging.String(logging.FieldEventType, "favorite_remove_failed"),
			logging.String(logging.FieldErrorHint, "check thetvdb credentials and connectivity"),
		)
		return
	}
	logger.Info("removed series from favorites", logging.String(logging.FieldSeriesID, e.TVDBID), logging.Entry(e.Title))
}

// InvalidateCache drops the materialized list.
func (s *TVDBSet) InvalidateCache() {
	s.items = nil
	s.cached = false
}

// Len returns the number of resolved favorites.
func (s *TVDBSet) Len(ctx context.Context) (int, error) {
	items, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// Online is always true.
func (s *TVDBSet) Online() bool { return true }

func titleOf(e *entry.Entry) string {
	if e == nil {
		return ""
	}
	return e.Title
}
