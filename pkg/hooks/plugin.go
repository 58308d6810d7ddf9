package hooks

import (
	"sort"
	"time"

	"github.com/agilira/go-timecache"
)

// Plugin is a discovered module implementing zero or more hooks.
type Plugin struct {
	// ID is the resolved source path of the plugin, or builtin://<name> for bundled ones.
	ID string
	// Runtime names what executes the plugin (javascript, lua, manifest, builtin).
	Runtime string
	// LoadedAt is when the plugin was discovered.
	LoadedAt time.Time

	handlers map[Name]Handler
}

// NewPlugin creates a plugin from its hook map. Nil handlers are ignored.
func NewPlugin(id, runtime string, handlers map[Name]Handler) *Plugin {
	p := &Plugin{
		ID:       id,
		Runtime:  runtime,
		LoadedAt: timecache.CachedTime(),
		handlers: make(map[Name]Handler, len(handlers)),
	}
	for name, handler := range handlers {
		if handler != nil {
			p.handlers[name] = handler
		}
	}
	return p
}

// Handler returns the plugin's handler for name.
func (p *Plugin) Handler(name Name) (Handler, bool) {
	h, ok := p.handlers[name]
	return h, ok
}

// Hooks returns the implemented hook names in declaration order.
func (p *Plugin) Hooks() []Name {
	out := make([]Name, 0, len(p.handlers))
	for name := range p.handlers {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].index() < out[j].index()
	})
	return out
}

// IsNoop reports whether the plugin implements no hook. Such plugins are registered but never
// invoked.
func (p *Plugin) IsNoop() bool {
	return len(p.handlers) == 0
}
