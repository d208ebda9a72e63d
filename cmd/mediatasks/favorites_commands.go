package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mediatasks/internal/config"
	"mediatasks/internal/entry"
	"mediatasks/internal/favorites"
	"mediatasks/internal/plugin"
	"mediatasks/internal/services"
)

type listFlags struct {
	task       string
	username   string
	accountID  string
	stripDates bool
}

func newFavoritesCommand(ctx *commandContext) *cobra.Command {
	flags := &listFlags{}
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Inspect and edit a TheTVDB favorites list",
		Long: "Inspect and edit a TheTVDB favorites list.\n\n" +
			"Credentials come from --username/--account-id or from the thetvdb_list\n" +
			"plugin of a configured task (--task, default: the first task using it).",
	}
	cmd.PersistentFlags().StringVar(&flags.task, "task", "", "Task whose thetvdb_list configuration to use")
	cmd.PersistentFlags().StringVar(&flags.username, "username", "", "TheTVDB username")
	cmd.PersistentFlags().StringVar(&flags.accountID, "account-id", "", "TheTVDB account identifier")
	cmd.PersistentFlags().BoolVar(&flags.stripDates, "strip-dates", false, "Strip trailing years from series titles")

	cmd.AddCommand(newFavoritesListCommand(ctx, flags))
	cmd.AddCommand(newFavoritesEditCommand(ctx, flags, true))
	cmd.AddCommand(newFavoritesEditCommand(ctx, flags, false))
	cmd.AddCommand(newFavoritesSearchCommand(ctx, flags))
	return cmd
}

func newFavoritesListCommand(ctx *commandContext, flags *listFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the favorited series",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := openFavorites(ctx, flags)
			if err != nil {
				return err
			}
			items, err := set.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No favorites")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{item.TVDBID, item.Title, item.URL})
			}
			writeRows(cmd, []string{"TVDB ID", "Title", "URL"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft})
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func newFavoritesEditCommand(ctx *commandContext, flags *listFlags, add bool) *cobra.Command {
	use, short := "remove <tvdb-id>...", "Remove series from the favorites"
	if add {
		use, short = "add <tvdb-id>...", "Add series to the favorites"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if _, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64); err != nil {
					return fmt.Errorf("invalid tvdb id %q", arg)
				}
			}
			set, err := openFavorites(ctx, flags)
			if err != nil {
				return err
			}
			deps, err := ctx.ensureDeps()
			if err != nil {
				return err
			}
			entries := seriesEntries(cmd.Context(), deps, args)
			if add {
				favorites.AddAll(cmd.Context(), set, entries)
			} else {
				favorites.RemoveAll(cmd.Context(), set, entries)
			}
			set.InvalidateCache()

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				present, err := set.Contains(cmd.Context(), e)
				if err != nil {
					return err
				}
				state := "not in list"
				if present {
					state = "in list"
				}
				rows = append(rows, []string{e.TVDBID, e.Title, state})
			}
			writeRows(cmd, []string{"TVDB ID", "Title", "Status"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft})
			return nil
		},
	}
}

func newFavoritesSearchCommand(ctx *commandContext, flags *listFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Fuzzy search the favorited series by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := openFavorites(ctx, flags)
			if err != nil {
				return err
			}
			items, err := set.List(cmd.Context())
			if err != nil {
				return err
			}
			matches := favorites.Search(items, args[0])
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No favorites match %q\n", args[0])
				return nil
			}
			rows := make([][]string, 0, len(matches))
			for _, m := range matches {
				rows = append(rows, []string{strconv.Itoa(m.Distance), m.Entry.TVDBID, m.Entry.Title})
			}
			writeRows(cmd, []string{"Distance", "TVDB ID", "Title"}, rows, []columnAlignment{alignRight, alignRight, alignLeft})
			return nil
		},
	}
}

// seriesEntries turns ids into entries, naming them through the series
// lookup when it succeeds.
func seriesEntries(ctx context.Context, deps *plugin.Deps, ids []string) []*entry.Entry {
	entries := make([]*entry.Entry, 0, len(ids))
	for _, raw := range ids {
		raw = strings.TrimSpace(raw)
		e := entry.New("tvdb " + raw)
		e.TVDBID = raw
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && deps.Series != nil {
			if series, err := deps.Series.Lookup(ctx, id); err == nil {
				e.Title = series.Name
				e.SeriesName = series.Name
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func openFavorites(ctx *commandContext, flags *listFlags) (favorites.Set, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	reg, err := ctx.ensureRegistry()
	if err != nil {
		return nil, err
	}
	deps, err := ctx.ensureDeps()
	if err != nil {
		return nil, err
	}
	info, listCfg, err := resolveListConfig(cfg, reg, flags)
	if err != nil {
		return nil, err
	}
	return info.List(deps, listCfg)
}

// resolveListConfig picks the list credentials from flags, or from the
// thetvdb_list (or thetvdb_favorites) table of a configured task.
func resolveListConfig(cfg *config.Config, reg *plugin.Registry, flags *listFlags) (plugin.Info, any, error) {
	info, ok := reg.Lookup("thetvdb_list")
	if !ok {
		return plugin.Info{}, nil, errors.New("thetvdb_list plugin not registered")
	}
	if flags.username != "" || flags.accountID != "" {
		parsed, err := info.Parse(map[string]any{
			"username":    flags.username,
			"account_id":  flags.accountID,
			"strip_dates": flags.stripDates,
		})
		return info, parsed, err
	}

	for _, t := range cfg.Tasks {
		if flags.task != "" && t.Name != strings.TrimSpace(flags.task) {
			continue
		}
		for _, name := range []string{"thetvdb_list", "thetvdb_favorites"} {
			raw, ok := t.Plugins[name]
			if !ok {
				continue
			}
			parsed, err := info.Parse(raw)
			return info, parsed, err
		}
		if flags.task != "" {
			return info, nil, services.Wrap(services.ErrConfiguration, "favorites", "resolve list",
				fmt.Sprintf("task %q has no thetvdb_list plugin", flags.task), nil)
		}
	}
	if flags.task != "" {
		return info, nil, services.Wrap(services.ErrConfiguration, "favorites", "resolve list",
			fmt.Sprintf("unknown task %q", flags.task), nil)
	}
	return info, nil, services.Wrap(services.ErrConfiguration, "favorites", "resolve list",
		"no thetvdb_list configuration; pass --username and --account-id or configure a task", nil)
}
