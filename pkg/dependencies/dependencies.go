// Package dependencies provides a centralized dependency container for the pkgm application.
// This package follows Go idioms for dependency injection by grouping related dependencies
// together and providing a fluent API for configuration.
package dependencies

import (
	"errors"

	"github.com/lerenn/pkgm/pkg/config"
	"github.com/lerenn/pkgm/pkg/core"
	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/logger"
)

// Validation errors for missing dependencies.
var (
	ErrFSMissing      = errors.New("fs dependency is required but not set")
	ErrConfigMissing  = errors.New("config dependency is required but not set")
	ErrLoggerMissing  = errors.New("logger dependency is required but not set")
	ErrBuilderMissing = errors.New("context builder dependency is required but not set")
	ErrInvokerMissing = errors.New("hook invoker dependency is required but not set")
	ErrCoreMissing    = errors.New("core dependency is required but not set")
)

// Dependencies holds shared dependencies across the application.
type Dependencies struct {
	FS      fs.FS
	Config  config.Manager
	Logger  logger.Logger
	Builder *invocation.Builder
	Invoker *hooks.Invoker
	// Metrics is optional; when set its samples are exported after each command.
	Metrics *hooks.Metrics
	Core    core.Core
}

// New creates a new Dependencies instance with sensible defaults.
func New() *Dependencies {
	fsys := fs.NewFS()
	log := logger.NewNoopLogger()
	return &Dependencies{
		FS:      fsys,
		Logger:  log,
		Builder: invocation.NewBuilder(fsys),
		Invoker: hooks.NewInvoker(hooks.NewInvokerParams{Logger: log}),
		Core:    core.NewNoopCore(log),
		// Note: Config is intentionally left nil as it requires a config path.
	}
}

// WithFS sets the filesystem and returns the instance for chaining.
func (d *Dependencies) WithFS(fs fs.FS) *Dependencies {
	d.FS = fs
	return d
}

// WithConfig sets the config manager and returns the instance for chaining.
func (d *Dependencies) WithConfig(cfg config.Manager) *Dependencies {
	d.Config = cfg
	return d
}

// WithLogger sets the logger and returns the instance for chaining.
func (d *Dependencies) WithLogger(logger logger.Logger) *Dependencies {
	d.Logger = logger
	return d
}

// WithBuilder sets the context builder and returns the instance for chaining.
func (d *Dependencies) WithBuilder(b *invocation.Builder) *Dependencies {
	d.Builder = b
	return d
}

// WithInvoker sets the hook invoker and returns the instance for chaining.
func (d *Dependencies) WithInvoker(inv *hooks.Invoker) *Dependencies {
	d.Invoker = inv
	return d
}

// WithMetrics sets the hook metrics and returns the instance for chaining.
func (d *Dependencies) WithMetrics(m *hooks.Metrics) *Dependencies {
	d.Metrics = m
	return d
}

// WithCore sets the core action runner and returns the instance for chaining.
func (d *Dependencies) WithCore(c core.Core) *Dependencies {
	d.Core = c
	return d
}

// dependencyCheck represents a dependency validation check.
type dependencyCheck struct {
	missing bool
	err     error
}

// Validate checks that all required dependencies are set and returns an error if any are missing.
func (d *Dependencies) Validate() error {
	checks := []dependencyCheck{
		{d.FS == nil, ErrFSMissing},
		{d.Config == nil, ErrConfigMissing},
		{d.Logger == nil, ErrLoggerMissing},
		{d.Builder == nil, ErrBuilderMissing},
		{d.Invoker == nil, ErrInvokerMissing},
		{d.Core == nil, ErrCoreMissing},
	}

	for _, check := range checks {
		if check.missing {
			return check.err
		}
	}
	return nil
}
