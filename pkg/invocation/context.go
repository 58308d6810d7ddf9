package invocation

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Flags holds the parsed global flags that reach plugins.
type Flags struct {
	Verbose bool
}

// Context is the data bundle passed to every handler during one command run.
// Its base fields never change after Build; the extension area is the only mutable part and is
// partitioned by plugin id.
type Context struct {
	id        string
	command   string
	args      []string
	cwd       string
	verbose   bool
	startedAt time.Time

	extensions cmap.ConcurrentMap[string, any]
}

// ID returns the unique id of this command run.
func (c *Context) ID() string {
	return c.id
}

// Command returns the command being run (install, update, ...).
func (c *Context) Command() string {
	return c.command
}

// Args returns a copy of the command arguments.
func (c *Context) Args() []string {
	args := make([]string, len(c.args))
	copy(args, c.args)
	return args
}

// Cwd returns the absolute working directory of the command.
func (c *Context) Cwd() string {
	return c.cwd
}

// Verbose reports whether verbose output was requested.
func (c *Context) Verbose() bool {
	return c.verbose
}

// StartedAt returns when the context was built.
func (c *Context) StartedAt() time.Time {
	return c.startedAt
}

// Scope returns the view of the extension area owned by pluginID.
func (c *Context) Scope(pluginID string) Scope {
	return Scope{ctx: c, pluginID: pluginID}
}

// Extension returns the value recorded by pluginID, if any.
func (c *Context) Extension(pluginID string) (any, bool) {
	return c.extensions.Get(pluginID)
}

// Extensions returns a snapshot of the whole extension area.
func (c *Context) Extensions() map[string]any {
	return c.extensions.Items()
}

// Scope is a plugin's namespaced slot in the extension area. A scope can only read and write
// the entry of its own plugin.
type Scope struct {
	ctx      *Context
	pluginID string
}

// PluginID returns the id of the plugin owning this scope.
func (s Scope) PluginID() string {
	return s.pluginID
}

// Record stores value as this plugin's entry, replacing any previous one.
func (s Scope) Record(value any) error {
	if s.ctx == nil || s.pluginID == "" {
		return ErrPluginIDMissing
	}
	s.ctx.extensions.Set(s.pluginID, value)
	return nil
}

// Recorded returns this plugin's entry.
func (s Scope) Recorded() (any, bool) {
	if s.ctx == nil || s.pluginID == "" {
		return nil, false
	}
	return s.ctx.extensions.Get(s.pluginID)
}

// Update atomically replaces this plugin's entry with fn(current, exists).
func (s Scope) Update(fn func(current any, exists bool) any) error {
	if s.ctx == nil || s.pluginID == "" {
		return ErrPluginIDMissing
	}
	s.ctx.extensions.Upsert(s.pluginID, nil, func(exist bool, valueInMap any, _ any) any {
		return fn(valueInMap, exist)
	})
	return nil
}
