// Package javascript runs CommonJS plugin files on goja.
package javascript

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/plugins"
)

// Name is the runtime name reported for JavaScript plugins.
const Name = "javascript"

// DefaultLoadTimeout bounds the evaluation of a plugin file.
const DefaultLoadTimeout = 5 * time.Second

// Runtime imports .js files. Each file gets its own VM.
type Runtime struct {
	fs          fs.FS
	logger      logger.Logger
	loadTimeout time.Duration
}

// NewRuntime creates a JavaScript runtime.
func NewRuntime(fsys fs.FS, log logger.Logger) *Runtime {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Runtime{fs: fsys, logger: log, loadTimeout: DefaultLoadTimeout}
}

// Name implements plugins.Runtime.
func (r *Runtime) Name() string {
	return Name
}

// Extensions implements plugins.Runtime.
func (r *Runtime) Extensions() []string {
	return []string{".js", ".cjs"}
}

// Open evaluates the file as a CommonJS module and describes module.exports.
func (r *Runtime) Open(path string) (plugins.Export, error) {
	src, err := r.fs.ReadFile(path)
	if err != nil {
		return plugins.Export{}, err
	}

	program, err := goja.Compile(path, "(function (module, exports) {"+string(src)+"\n})", false)
	if err != nil {
		return plugins.Export{}, err
	}

	p := newPlugin(r.logger.With("plugin", path))

	ctx, cancel := context.WithTimeout(context.Background(), r.loadTimeout)
	defer cancel()
	stop := p.watch(ctx)
	defer stop()

	wrapper, err := p.vm.RunProgram(program)
	if err != nil {
		return plugins.Export{}, p.failure(ctx, err)
	}
	fn, ok := goja.AssertFunction(wrapper)
	if !ok {
		return plugins.Export{}, fmt.Errorf("%s: module wrapper is not callable", path)
	}

	module := p.vm.NewObject()
	exports := p.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return plugins.Export{}, err
	}
	if _, err := fn(goja.Undefined(), module, exports); err != nil {
		return plugins.Export{}, p.failure(ctx, err)
	}

	return p.describe(module.Get("exports")), nil
}

func (p *plugin) describe(value goja.Value) plugins.Export {
	kind := kindOf(value)
	if kind != plugins.KindMapping {
		return plugins.Export{Kind: kind}
	}

	obj := value.(*goja.Object)
	keys := obj.Keys()
	entries := make([]plugins.Entry, 0, len(keys))
	for _, key := range keys {
		member := obj.Get(key)
		entry := plugins.Entry{Key: key, Kind: kindOf(member)}
		if fn, ok := goja.AssertFunction(member); ok {
			entry.Handler = &handler{plugin: p, fn: fn}
		}
		entries = append(entries, entry)
	}
	return plugins.Export{Kind: plugins.KindMapping, Entries: entries}
}

func kindOf(value goja.Value) string {
	if value == nil || goja.IsUndefined(value) {
		return "undefined"
	}
	if goja.IsNull(value) {
		return "null"
	}
	if obj, ok := value.(*goja.Object); ok {
		if _, callable := goja.AssertFunction(obj); callable {
			return "function"
		}
		if obj.ClassName() == "Object" {
			return plugins.KindMapping
		}
		return strings.ToLower(obj.ClassName())
	}
	switch value.Export().(type) {
	case string:
		return "string"
	case int64, float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "value"
	}
}

type handler struct {
	plugin *plugin
	fn     goja.Callable
}

// Invoke runs the exported function and awaits the Promise it may return.
func (h *handler) Invoke(ctx context.Context, call hooks.Call) hooks.Future {
	return hooks.Resolved(h.plugin.call(ctx, h.fn, call))
}
