package plugins

import (
	"context"

	"mediatasks/internal/config"
	"mediatasks/internal/logging"
	"mediatasks/internal/plugin"
	"mediatasks/internal/rename"
	"mediatasks/internal/services"
)

const delugeRename = "deluge_rename"

func registerDelugeRename(reg *plugin.Registry) error {
	return reg.Register(plugin.Info{
		Name:   delugeRename,
		Config: parseRenameConfig,
		Modify: renameModify,
	})
}

func parseRenameConfig(raw any) (any, error) {
	cfg := rename.DefaultConfig()
	if err := config.DecodePlugin(delugeRename, raw, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func renameModify(ctx context.Context, tc *plugin.TaskContext, raw any) error {
	cfg, ok := raw.(rename.Config)
	if !ok {
		return services.Wrap(services.ErrConfiguration, delugeRename, "modify", "unexpected config type", nil)
	}
	var deps plugin.Deps
	if tc.Deps != nil {
		deps = *tc.Deps
	}
	renamer, err := rename.NewRenamer(cfg, deps.Renderer, tc.Log())
	if err != nil {
		return err
	}
	tc.Log().Debug("rename settings", logging.Bool("keep_subs", cfg.KeepSubs))
	for _, e := range tc.Accepted() {
		if _, err := renamer.Process(ctx, e); err != nil {
			tc.Log().Error("entry failed", logging.Entry(e.Title), logging.Error(err),
				logging.String(logging.FieldEventType, "rename_entry_failed"))
		}
	}
	return nil
}
