package hooks

import (
	"sync"

	"github.com/lerenn/pkgm/pkg/logger"
)

// Entry pairs a handler with the plugin that exported it.
type Entry struct {
	PluginID string
	Handler  Handler
}

// Registry indexes loaded plugins by the hooks they implement, keeping registration order.
type Registry struct {
	plugins []*Plugin
	index   map[string]int
	entries map[Name][]Entry
	logger  logger.Logger
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Registry{
		index:   make(map[string]int),
		entries: make(map[Name][]Entry),
		logger:  log,
	}
}

// BuildRegistry registers plugins in the given order. Invalid plugins are skipped with a warning.
func BuildRegistry(plugins []*Plugin, log logger.Logger) *Registry {
	r := NewRegistry(log)
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			r.logger.Warnf("Skipping plugin: %v", err)
		}
	}
	return r
}

// Register adds a plugin after those already registered. A plugin whose id is already
// registered replaces the earlier one at its original position.
func (r *Registry) Register(p *Plugin) error {
	if p == nil {
		return ErrPluginNil
	}
	if p.ID == "" {
		return ErrPluginIDEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if i, exists := r.index[p.ID]; exists {
		r.logger.With("plugin", p.ID).Warnf("Plugin registered twice, replacing the earlier registration")
		r.plugins[i] = p
	} else {
		r.index[p.ID] = len(r.plugins)
		r.plugins = append(r.plugins, p)
	}

	r.rebuild()
	return nil
}

func (r *Registry) rebuild() {
	entries := make(map[Name][]Entry)
	for _, p := range r.plugins {
		for _, name := range p.Hooks() {
			handler, _ := p.Handler(name)
			entries[name] = append(entries[name], Entry{PluginID: p.ID, Handler: handler})
		}
	}
	r.entries = entries
}

// Entries returns the handlers for name in registration order.
func (r *Registry) Entries(name Name) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[name]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Plugins returns every registered plugin in registration order, no-op plugins included.
func (r *Registry) Plugins() []*Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Plugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Plugin returns the plugin registered under id.
func (r *Registry) Plugin(id string) (*Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.plugins[i], true
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
