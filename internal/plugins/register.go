package plugins

import (
	"mediatasks/internal/plugin"
)

// Register adds every built-in plugin to reg.
func Register(reg *plugin.Registry) error {
	steps := []func(*plugin.Registry) error{
		registerTVDB,
		registerLists,
		registerDelugeRename,
	}
	for _, step := range steps {
		if err := step(reg); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in plugin.
func NewRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
