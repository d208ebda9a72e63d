package plugins

import (
	"context"
	"fmt"
	"sort"

	"mediatasks/internal/entry"
	"mediatasks/internal/favorites"
	"mediatasks/internal/logging"
	"mediatasks/internal/plugin"
	"mediatasks/internal/services"
)

const (
	listAdd    = "list_add"
	listRemove = "list_remove"
)

type listTarget struct {
	info plugin.Info
	cfg  any
}

func registerLists(reg *plugin.Registry) error {
	if err := reg.Register(plugin.Info{
		Name:     listAdd,
		Priority: plugin.LastPriority,
		Config:   parseListTargets(reg, listAdd),
		Output:   listOutput(favorites.AddAll),
	}); err != nil {
		return err
	}
	return reg.Register(plugin.Info{
		Name:     listRemove,
		Priority: plugin.LastPriority,
		Config:   parseListTargets(reg, listRemove),
		Output:   listOutput(favorites.RemoveAll),
	})
}

// parseListTargets decodes a list of single-key tables, each naming a list
// plugin and holding that plugin's configuration.
func parseListTargets(reg *plugin.Registry, name string) plugin.ConfigFunc {
	return func(raw any) (any, error) {
		items, err := tableList(raw)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, name, "decode config", "", err)
		}
		if len(items) == 0 {
			return nil, services.Wrap(services.ErrConfiguration, name, "decode config", "at least one list is required", nil)
		}
		targets := make([]listTarget, 0, len(items))
		for i, item := range items {
			if len(item) != 1 {
				return nil, services.Wrap(services.ErrConfiguration, name, "decode config",
					fmt.Sprintf("item %d must name exactly one list plugin", i), nil)
			}
			for listName, listRaw := range item {
				info, ok := reg.Lookup(listName)
				if !ok || !info.InGroup(plugin.GroupList) || info.List == nil {
					return nil, services.Wrap(services.ErrConfiguration, name, "decode config",
						fmt.Sprintf("%q is not a list plugin (available: %s)", listName, listNames(reg)), nil)
				}
				cfg, err := info.Parse(listRaw)
				if err != nil {
					return nil, err
				}
				targets = append(targets, listTarget{info: info, cfg: cfg})
			}
		}
		return targets, nil
	}
}

func tableList(raw any) ([]map[string]any, error) {
	switch v := raw.(type) {
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			table, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: expected a table, got %T", i, item)
			}
			out = append(out, table)
		}
		return out, nil
	case map[string]any:
		return []map[string]any{v}, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected a list of tables, got %T", raw)
	}
}

func listNames(reg *plugin.Registry) string {
	group := reg.Group(plugin.GroupList)
	names := make([]string, 0, len(group))
	for _, info := range group {
		names = append(names, info.Name)
	}
	sort.Strings(names)
	return fmt.Sprint(names)
}

func listOutput(apply func(context.Context, favorites.Set, []*entry.Entry)) plugin.PhaseFunc {
	return func(ctx context.Context, tc *plugin.TaskContext, cfg any) error {
		targets, ok := cfg.([]listTarget)
		if !ok {
			return services.Wrap(services.ErrConfiguration, "list", "output", "unexpected config type", nil)
		}
		accepted := tc.Accepted()
		if len(accepted) == 0 {
			return nil
		}
		for _, target := range targets {
			set, err := target.info.List(tc.Deps, target.cfg)
			if err != nil {
				return err
			}
			if set.Online() && tc.Test {
				tc.Log().Info("Not submitting to online list because of test mode.",
					logging.String("list", target.info.Name))
				continue
			}
			apply(ctx, set, accepted)
		}
		return nil
	}
}
