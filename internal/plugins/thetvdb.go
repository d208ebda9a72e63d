package plugins

import (
	"context"

	"mediatasks/internal/config"
	"mediatasks/internal/entry"
	"mediatasks/internal/favorites"
	"mediatasks/internal/plugin"
	"mediatasks/internal/services"
)

const (
	thetvdbList      = "thetvdb_list"
	thetvdbFavorites = "thetvdb_favorites"
	thetvdbAdd       = "thetvdb_add"
	thetvdbRemove    = "thetvdb_remove"
)

func registerTVDB(reg *plugin.Registry) error {
	if err := reg.Register(plugin.Info{
		Name:   thetvdbList,
		Groups: []string{plugin.GroupList},
		Config: parseFavoritesConfig,
		Input:  favoritesInput,
		List:   newFavoritesSet,
	}); err != nil {
		return err
	}
	if err := reg.Alias(thetvdbFavorites, thetvdbList, "thetvdb_favorites is deprecated, use list_add instead"); err != nil {
		return err
	}
	if err := reg.Register(plugin.Info{
		Name:       thetvdbAdd,
		Deprecated: "thetvdb_add is deprecated, use list_add instead",
		Priority:   plugin.LastPriority,
		Config:     parseFavoritesConfig,
		Output:     favoritesOutput(favorites.AddAll),
	}); err != nil {
		return err
	}
	return reg.Register(plugin.Info{
		Name:       thetvdbRemove,
		Deprecated: "thetvdb_remove is deprecated, use list_remove instead",
		Priority:   plugin.LastPriority,
		Config:     parseFavoritesConfig,
		Output:     favoritesOutput(favorites.RemoveAll),
	})
}

func parseFavoritesConfig(raw any) (any, error) {
	var cfg favorites.Config
	if err := config.DecodePlugin(thetvdbList, raw, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFavoritesSet(deps *plugin.Deps, raw any) (favorites.Set, error) {
	cfg, ok := raw.(favorites.Config)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, thetvdbList, "build list", "unexpected config type", nil)
	}
	if deps == nil || deps.Favorites == nil || deps.Series == nil {
		return nil, services.Wrap(services.ErrConfiguration, thetvdbList, "build list",
			"thetvdb client not configured; set tvdb.api_key or TVDB_API_KEY", nil)
	}
	return favorites.NewTVDBSet(cfg, deps.Favorites, deps.Series, deps.Logger)
}

func favoritesInput(ctx context.Context, tc *plugin.TaskContext, cfg any) ([]*entry.Entry, error) {
	set, err := newFavoritesSet(tc.Deps, cfg)
	if err != nil {
		return nil, err
	}
	return set.List(ctx)
}

func favoritesOutput(apply func(context.Context, favorites.Set, []*entry.Entry)) plugin.PhaseFunc {
	return func(ctx context.Context, tc *plugin.TaskContext, cfg any) error {
		if tc.Test {
			tc.Log().Info("Not submitting to thetvdb because of test mode.")
			return nil
		}
		set, err := newFavoritesSet(tc.Deps, cfg)
		if err != nil {
			return err
		}
		apply(ctx, set, tc.Accepted())
		return nil
	}
}
