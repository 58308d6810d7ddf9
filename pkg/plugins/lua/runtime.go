// Package lua runs plugin files returning a table of hook functions on go-lua.
package lua

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Shopify/go-lua"

	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/plugins"
)

// Name is the runtime name reported for Lua plugins.
const Name = "lua"

// registryKey stores the plugin table in the Lua registry.
const registryKey = "pkgm.plugin"

// hookInstructions is how many VM instructions run between cancellation checks.
const hookInstructions = 1000

// DefaultLoadTimeout bounds the execution of a plugin file's top level.
const DefaultLoadTimeout = 5 * time.Second

// Runtime imports .lua files. Each file gets its own state.
type Runtime struct {
	logger      logger.Logger
	loadTimeout time.Duration
}

// NewRuntime creates a Lua runtime.
func NewRuntime(log logger.Logger) *Runtime {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Runtime{logger: log, loadTimeout: DefaultLoadTimeout}
}

// Name implements plugins.Runtime.
func (r *Runtime) Name() string {
	return Name
}

// Extensions implements plugins.Runtime.
func (r *Runtime) Extensions() []string {
	return []string{".lua"}
}

// Open runs the file and describes the table it returns.
func (r *Runtime) Open(path string) (plugins.Export, error) {
	p := newPlugin(r.logger.With("plugin", path))
	state := p.state

	ctx, cancel := context.WithTimeout(context.Background(), r.loadTimeout)
	defer cancel()

	if err := lua.LoadFile(state, path, ""); err != nil {
		return plugins.Export{}, p.failure(ctx, err)
	}
	stop := p.watch(ctx)
	err := state.ProtectedCall(0, 1, 0)
	stop()
	if err != nil {
		if ctx.Err() != nil {
			state.SetTop(0)
			return plugins.Export{}, fmt.Errorf("import did not finish within %s: %w", r.loadTimeout, ctx.Err())
		}
		return plugins.Export{}, p.failure(ctx, err)
	}
	defer state.SetTop(0)

	if state.TypeOf(-1) != lua.TypeTable {
		return plugins.Export{Kind: lua.TypeNameOf(state, -1)}, nil
	}

	var entries []plugins.Entry
	positional := 0
	state.PushNil()
	for state.Next(-2) {
		if state.TypeOf(-2) != lua.TypeString {
			positional++
			state.Pop(1)
			continue
		}
		key, _ := state.ToString(-2)
		entry := plugins.Entry{Key: key, Kind: lua.TypeNameOf(state, -1)}
		if state.TypeOf(-1) == lua.TypeFunction {
			entry.Handler = &handler{plugin: p, key: key}
		}
		entries = append(entries, entry)
		state.Pop(1)
	}

	if len(entries) == 0 && positional > 0 {
		return plugins.Export{Kind: "array"}, nil
	}
	if positional > 0 {
		p.logger.Warnf("Ignoring %d positional values in the returned table", positional)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	state.PushValue(-1)
	state.SetField(lua.RegistryIndex, registryKey)
	return plugins.Export{Kind: plugins.KindMapping, Entries: entries}, nil
}

type handler struct {
	plugin *plugin
	key    string
}

// Invoke calls the table function with the payload table.
func (h *handler) Invoke(ctx context.Context, call hooks.Call) hooks.Future {
	return hooks.Resolved(h.plugin.call(ctx, h.key, call))
}

// plugin owns the state of one file; go-lua states are not goroutine safe.
type plugin struct {
	state  *lua.State
	logger logger.Logger
	lock   chan struct{}
}

func newPlugin(log logger.Logger) *plugin {
	state := lua.NewState()
	lua.OpenLibraries(state)
	state.Register("print", func(state *lua.State) int {
		parts := make([]string, state.Top())
		for i := range parts {
			parts[i] = fmt.Sprint(toGo(state, i+1, 0))
		}
		log.Logf("%s", strings.Join(parts, "\t"))
		return 0
	})
	return &plugin{state: state, logger: log, lock: make(chan struct{}, 1)}
}

func (p *plugin) call(ctx context.Context, key string, call hooks.Call) error {
	select {
	case p.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.lock }()

	state := p.state
	defer state.SetTop(0)

	defer p.watch(ctx)()

	state.Field(lua.RegistryIndex, registryKey)
	state.Field(-1, key)
	state.Remove(-2)
	pushPayload(state, call)

	if err := state.ProtectedCall(1, 0, 0); err != nil {
		return p.failure(ctx, err)
	}
	return nil
}

// watch raises an error inside the running chunk once ctx is done. The returned func
// removes the hook.
func (p *plugin) watch(ctx context.Context) func() {
	lua.SetDebugHook(p.state, func(state *lua.State, _ lua.Debug) {
		if err := ctx.Err(); err != nil {
			lua.Errorf(state, "%s", err.Error())
		}
	}, lua.MaskCount, hookInstructions)
	return func() { lua.SetDebugHook(p.state, nil, 0, 0) }
}

func pushPayload(state *lua.State, call hooks.Call) {
	state.NewTable()
	state.PushString(string(call.Hook))
	state.SetField(-2, "hook")
	state.PushString(call.PluginID)
	state.SetField(-2, "plugin")
	state.PushString(call.Command)
	state.SetField(-2, "command")

	state.NewTable()
	for i, arg := range call.Args {
		state.PushString(arg)
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "args")

	state.NewTable()
	state.PushString(call.Context.Cwd)
	state.SetField(-2, "cwd")
	state.PushBoolean(call.Context.Verbose)
	state.SetField(-2, "verbose")
	state.SetField(-2, "context")

	state.PushGoFunction(func(state *lua.State) int {
		if err := call.Scope.Record(toGo(state, 1, 0)); err != nil {
			lua.Errorf(state, "%s", err.Error())
		}
		return 0
	})
	state.SetField(-2, "record")

	state.PushGoFunction(func(state *lua.State) int {
		value, _ := call.Scope.Recorded()
		pushGo(state, value, 0)
		return 1
	})
	state.SetField(-2, "recorded")
}

// failure reads the error value left on the stack by a failed load or call.
func (p *plugin) failure(ctx context.Context, err error) error {
	msg, ok := p.state.ToString(-1)
	p.state.SetTop(0)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if !ok || msg == "" {
		return err
	}
	return fmt.Errorf("%s", msg)
}
