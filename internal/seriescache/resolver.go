package seriescache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"mediatasks/internal/logging"
	"mediatasks/internal/services"
	"mediatasks/internal/tvdb"
)

// Fetcher retrieves a series record from the remote API.
type Fetcher interface {
	Series(ctx context.Context, seriesID int64) (*tvdb.Series, error)
}

// Resolver looks up series, serving fresh rows from the store. A nil store
// turns it into a thin pass-through to the fetcher.
type Resolver struct {
	store   *Store
	fetcher Fetcher
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewResolver builds a Resolver. A ttl of zero disables reads from the store
// while still recording fetched rows.
func NewResolver(store *Store, fetcher Fetcher, ttl time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		ttl:     ttl,
		logger:  logging.NewComponentLogger(logger, "seriescache"),
		now:     time.Now,
	}
}

// Prune deletes rows that are past the ttl. Without a store or with a zero
// ttl it removes nothing.
func (r *Resolver) Prune(ctx context.Context) (int64, error) {
	if r.store == nil || r.ttl <= 0 {
		return 0, nil
	}
	removed, err := r.store.Purge(ctx, r.now().Add(-r.ttl))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.Info("pruned stale series", logging.Int64("removed", removed))
	}
	return removed, nil
}

// Lookup resolves a series id to its record. Every failure is marked
// services.ErrLookup; a missing series additionally matches services.ErrNotFound.
func (r *Resolver) Lookup(ctx context.Context, seriesID int64) (tvdb.Series, error) {
	if r.store != nil && r.ttl > 0 {
		rec, ok, err := r.store.Get(ctx, seriesID)
		switch {
		case err != nil:
			logging.WarnWithContext(r.logger, "series cache read failed", "series_cache_read_failed",
				logging.SeriesID(seriesID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "series will be fetched from thetvdb"),
				logging.String(logging.FieldErrorHint, "delete the series cache database if this persists"),
			)
		case ok && r.now().Sub(rec.FetchedAt) < r.ttl:
			r.logger.Debug("series cache hit", logging.SeriesID(seriesID))
			return rec.Series, nil
		}
	}

	if r.fetcher == nil {
		return tvdb.Series{}, services.Wrap(services.ErrLookup, "seriescache", "lookup", "no series fetcher configured", nil)
	}
	series, err := r.fetcher.Series(ctx, seriesID)
	if err != nil {
		message := "series " + strconv.FormatInt(seriesID, 10)
		if errors.Is(err, services.ErrNotFound) {
			message += " not found"
		}
		return tvdb.Series{}, services.Wrap(services.ErrLookup, "seriescache", "lookup", message, err)
	}

	if r.store != nil {
		if err := r.store.Put(ctx, *series, r.now()); err != nil {
			logging.WarnWithContext(r.logger, "series cache write failed", "series_cache_write_failed",
				logging.SeriesID(seriesID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "series will be fetched again on the next run"),
			)
		}
	}
	return *series, nil
}
