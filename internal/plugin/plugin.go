package plugin

import (
	"context"
	"log/slog"

	"mediatasks/internal/entry"
	"mediatasks/internal/favorites"
	"mediatasks/internal/logging"
	"mediatasks/internal/render"
)

// APIVersion is the plugin API version implemented by this repository.
const APIVersion = 2

// Priority bounds. Handlers run in descending priority within a phase.
const (
	DefaultPriority = 128
	LastPriority    = -255
)

// Phase names a step of a task run.
type Phase string

const (
	PhaseInput  Phase = "input"
	PhaseFilter Phase = "filter"
	PhaseModify Phase = "modify"
	PhaseOutput Phase = "output"
)

// Phases lists every phase in execution order.
var Phases = []Phase{PhaseInput, PhaseFilter, PhaseModify, PhaseOutput}

// GroupList marks plugins that provide a favorites.Set.
const GroupList = "list"

// Deps are the shared collaborators handed to plugins.
type Deps struct {
	Favorites favorites.FavoritesAPI
	Series    favorites.SeriesLookup
	Renderer  render.Renderer
	Logger    *slog.Logger
}

// TaskContext is the state of one task run as seen by a phase handler.
type TaskContext struct {
	Name     string
	Test     bool
	Entries  []*entry.Entry
	Deps     *Deps
	Registry *Registry
	Logger   *slog.Logger
}

// Log returns the task logger, or a no-op logger when none is set.
func (t *TaskContext) Log() *slog.Logger {
	if t.Logger == nil {
		return logging.NewNop()
	}
	return t.Logger
}

// Accepted returns the accepted entries in batch order.
func (t *TaskContext) Accepted() []*entry.Entry {
	return entry.Filter(t.Entries, entry.Accepted)
}

// ConfigFunc decodes and validates a plugin's raw configuration table.
type ConfigFunc func(raw any) (any, error)

// InputFunc produces entries for the task.
type InputFunc func(ctx context.Context, tc *TaskContext, cfg any) ([]*entry.Entry, error)

// PhaseFunc operates on the task's entries in place.
type PhaseFunc func(ctx context.Context, tc *TaskContext, cfg any) error

// ListFunc builds the set a list plugin exposes.
type ListFunc func(deps *Deps, cfg any) (favorites.Set, error)

// Info describes a registered plugin.
type Info struct {
	Name       string
	APIVersion int
	Groups     []string
	// Deprecated holds the notice logged whenever a task uses the plugin.
	Deprecated string
	// Priority orders handlers within a phase; zero means DefaultPriority.
	Priority int

	Config ConfigFunc
	Input  InputFunc
	Modify PhaseFunc
	Output PhaseFunc
	List   ListFunc
}

// InGroup reports whether the plugin belongs to group.
func (i Info) InGroup(group string) bool {
	for _, g := range i.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Phases returns the phases the plugin handles, in execution order.
func (i Info) Phases() []Phase {
	var out []Phase
	if i.Input != nil {
		out = append(out, PhaseInput)
	}
	if i.Modify != nil {
		out = append(out, PhaseModify)
	}
	if i.Output != nil {
		out = append(out, PhaseOutput)
	}
	return out
}

// Handles reports whether the plugin has a handler for phase.
func (i Info) Handles(phase Phase) bool {
	for _, p := range i.Phases() {
		if p == phase {
			return true
		}
	}
	return false
}

// Parse decodes raw through the plugin's ConfigFunc. Plugins without one
// accept any value and receive it unchanged.
func (i Info) Parse(raw any) (any, error) {
	if i.Config == nil {
		return raw, nil
	}
	return i.Config(raw)
}
