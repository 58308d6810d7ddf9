package cli

import (
	"fmt"

	"github.com/lerenn/pkgm/pkg/config"
	"github.com/lerenn/pkgm/pkg/core"
	"github.com/lerenn/pkgm/pkg/dependencies"
	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/lifecycle"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/plugins"
	"github.com/lerenn/pkgm/pkg/plugins/bundled"
	"github.com/lerenn/pkgm/pkg/plugins/javascript"
	"github.com/lerenn/pkgm/pkg/plugins/lua"
	"github.com/lerenn/pkgm/pkg/plugins/manifest"
)

// Engine is everything a command needs, built once per process.
type Engine struct {
	Config     config.Config
	Logger     logger.Logger
	Registry   *hooks.Registry
	Runner     lifecycle.Runner
	LoadErrors []error
}

// NewEngine loads the configuration and the plugins, then wires the lifecycle runner.
func NewEngine() (*Engine, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return newEngine(fs.NewFS(), NewConfigManager(), cfg)
}

func newEngine(fsys fs.FS, manager config.Manager, cfg config.Config) (*Engine, error) {
	log := logger.New(cfg.Logger())

	plugs, loadErrs, err := LoadPlugins(fsys, cfg, log)
	if err != nil {
		return nil, err
	}

	registry := hooks.BuildRegistry(plugs, log)
	metrics := hooks.NewMetrics()
	invoker := hooks.NewInvoker(hooks.NewInvokerParams{
		Registry:       registry,
		Logger:         log,
		Metrics:        metrics,
		DefaultTimeout: cfg.Hooks.Timeout,
	})

	var c core.Core = core.NewNoopCore(log)
	if len(cfg.Core.Command) > 0 {
		if _, err := fsys.Which(cfg.Core.Command[0]); err != nil {
			log.Warnf("Core command %s not found: %v", cfg.Core.Command[0], err)
		}
		c = core.NewCommandCore(cfg.Core.Command, log)
	}

	runner, err := lifecycle.NewRunner(lifecycle.NewRunnerParams{
		Dependencies: dependencies.New().
			WithFS(fsys).
			WithLogger(log).
			WithConfig(overrideManager{Manager: manager, config: cfg}).
			WithBuilder(invocation.NewBuilder(fsys)).
			WithInvoker(invoker).
			WithMetrics(metrics).
			WithCore(c),
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		Config:     cfg,
		Logger:     log,
		Registry:   registry,
		Runner:     runner,
		LoadErrors: loadErrs,
	}, nil
}

// LoadPlugins returns the bundled plugins followed by the plugins found in the configured
// directories, in discovery order.
func LoadPlugins(fsys fs.FS, cfg config.Config, log logger.Logger) ([]*hooks.Plugin, []error, error) {
	loader, err := plugins.NewLoader(plugins.NewLoaderParams{
		FS:     fsys,
		Logger: log,
		Runtimes: []plugins.Runtime{
			javascript.NewRuntime(fsys, log),
			lua.NewRuntime(log),
			manifest.NewRuntime(fsys, log),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create plugin loader: %w", err)
	}

	plugs := bundled.New(bundled.Params{FS: fsys, Logger: log, HistoryFile: cfg.HistoryFile})
	discovered, loadErrs := loader.Load(cfg.PluginDirs)
	return append(plugs, discovered...), loadErrs, nil
}

// overrideManager serves the configuration already adjusted by the command-line flags.
type overrideManager struct {
	config.Manager
	config config.Config
}

func (m overrideManager) GetConfigWithFallback() (config.Config, error) {
	return m.config, nil
}
