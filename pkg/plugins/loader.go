package plugins

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

// Loader discovers plugin files in directories and imports them through runtimes.
type Loader struct {
	fs       fs.FS
	logger   logger.Logger
	runtimes map[string]Runtime
}

// NewLoaderParams contains the parameters for creating a Loader.
type NewLoaderParams struct {
	FS       fs.FS
	Logger   logger.Logger
	Runtimes []Runtime
}

// NewLoader creates a Loader. Each extension may be claimed by a single runtime.
func NewLoader(params NewLoaderParams) (*Loader, error) {
	l := &Loader{
		fs:       params.FS,
		logger:   params.Logger,
		runtimes: make(map[string]Runtime),
	}
	if l.fs == nil {
		l.fs = fs.NewFS()
	}
	if l.logger == nil {
		l.logger = logger.NewNoopLogger()
	}

	for _, rt := range params.Runtimes {
		if rt == nil {
			return nil, ErrRuntimeNil
		}
		for _, ext := range rt.Extensions() {
			ext = strings.ToLower(ext)
			if other, taken := l.runtimes[ext]; taken {
				return nil, fmt.Errorf("%w: %s (%s, %s)", ErrExtensionClaimed, ext, other.Name(), rt.Name())
			}
			l.runtimes[ext] = rt
		}
	}
	return l, nil
}

// Extensions returns the recognized file extensions, sorted.
func (l *Loader) Extensions() []string {
	out := make([]string, 0, len(l.runtimes))
	for ext := range l.runtimes {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Load scans dirs in order and imports every recognized file. Files that cannot be imported or
// have the wrong shape are reported in the error slice and left out; scanning always continues.
func (l *Loader) Load(dirs []string) ([]*hooks.Plugin, []error) {
	var plugins []*hooks.Plugin
	var errs []error

	for _, dir := range dirs {
		found, dirErrs := l.loadDir(dir)
		plugins = append(plugins, found...)
		errs = append(errs, dirErrs...)
	}

	return plugins, errs
}

func (l *Loader) loadDir(dir string) ([]*hooks.Plugin, []error) {
	expanded, err := l.fs.ExpandPath(dir)
	if err != nil {
		return nil, []error{NewLoadError(dir, err)}
	}

	exists, err := l.fs.Exists(expanded)
	if err != nil {
		return nil, []error{NewLoadError(expanded, err)}
	}
	if !exists {
		l.logger.Debugf("Plugin directory %s does not exist, skipping", expanded)
		return nil, nil
	}

	isDir, err := l.fs.IsDir(expanded)
	if err != nil {
		return nil, []error{NewLoadError(expanded, err)}
	}
	if !isDir {
		return nil, []error{NewLoadError(expanded, ErrNotDirectory)}
	}

	entries, err := l.fs.ReadDir(expanded)
	if err != nil {
		return nil, []error{NewLoadError(expanded, err)}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var plugins []*hooks.Plugin
	var errs []error
	for _, entry := range entries {
		path := filepath.Join(expanded, entry.Name())
		rt, ok := l.runtimeFor(path, entry)
		if !ok {
			continue
		}

		plugin, err := l.loadFile(path, rt)
		if err != nil {
			l.logger.With("plugin", path).Warnf("Skipping plugin: %v", err)
			errs = append(errs, err)
			continue
		}
		plugins = append(plugins, plugin)
	}

	return plugins, errs
}

func (l *Loader) runtimeFor(path string, entry os.DirEntry) (Runtime, bool) {
	name := entry.Name()
	if strings.HasPrefix(name, ".") || entry.IsDir() {
		return nil, false
	}
	if entry.Type()&os.ModeSymlink != 0 {
		if isDir, err := l.fs.IsDir(path); err == nil && isDir {
			return nil, false
		}
	}

	rt, ok := l.runtimes[strings.ToLower(filepath.Ext(name))]
	if !ok {
		l.logger.Debugf("Ignoring %s: no runtime for this extension", path)
	}
	return rt, ok
}

func (l *Loader) loadFile(path string, rt Runtime) (*hooks.Plugin, error) {
	id, err := l.fs.ResolveAbs(path)
	if err != nil {
		return nil, NewLoadError(path, err)
	}

	export, err := open(rt, id)
	if err != nil {
		return nil, NewLoadError(id, err)
	}
	if export.Kind != KindMapping {
		return nil, NewShapeError(id, export.Kind)
	}

	log := l.logger.With("plugin", id)
	handlers := make(map[hooks.Name]hooks.Handler, len(export.Entries))
	for _, entry := range export.Entries {
		name, err := hooks.ParseName(entry.Key)
		if err != nil {
			log.Warnf("Ignoring export %q: not a hook name", entry.Key)
			continue
		}
		if entry.Handler == nil {
			log.Warnf("Ignoring export %q: expected a function, got %s", entry.Key, entry.Kind)
			continue
		}
		handlers[name] = entry.Handler
	}

	plugin := hooks.NewPlugin(id, rt.Name(), handlers)
	if plugin.IsNoop() {
		log.Debugf("Plugin implements no hook")
	} else {
		log.Debugf("Loaded %s plugin with hooks %v", rt.Name(), plugin.Hooks())
	}
	return plugin, nil
}

// open imports a file, turning a runtime panic into an error.
func open(rt Runtime, path string) (export Export, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while importing: %v", r)
		}
	}()
	return rt.Open(path)
}
