package plugin

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry holds plugin registrations by name.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Info
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Info)}
}

// Register adds info. Names must be unique and non-empty.
func (r *Registry) Register(info Info) error {
	info.Name = strings.TrimSpace(info.Name)
	if info.Name == "" {
		return fmt.Errorf("register plugin: name required")
	}
	if info.APIVersion == 0 {
		info.APIVersion = APIVersion
	}
	if info.Priority == 0 {
		info.Priority = DefaultPriority
	}
	if info.Input == nil && info.Modify == nil && info.Output == nil && info.List == nil {
		return fmt.Errorf("register plugin %q: no handlers", info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[info.Name]; exists {
		return fmt.Errorf("register plugin %q: already registered", info.Name)
	}
	r.plugins[info.Name] = info
	return nil
}

// Alias registers name as a deprecated copy of target.
func (r *Registry) Alias(name, target, deprecated string) error {
	info, ok := r.Lookup(target)
	if !ok {
		return fmt.Errorf("alias %q: unknown plugin %q", name, target)
	}
	info.Name = name
	info.Deprecated = deprecated
	return r.Register(info)
}

// Lookup returns the plugin registered under name.
func (r *Registry) Lookup(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.plugins[name]
	return info, ok
}

// All returns every registration sorted by name.
func (r *Registry) All() []Info {
	r.mu.RLock()
	out := make([]Info, 0, len(r.plugins))
	for _, info := range r.plugins {
		out = append(out, info)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Group returns the registrations in group sorted by name.
func (r *Registry) Group(group string) []Info {
	var out []Info
	for _, info := range r.All() {
		if info.InGroup(group) {
			out = append(out, info)
		}
	}
	return out
}
