// Package lifecycle runs a primary action surrounded by its hooks.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/lerenn/pkgm/pkg/config"
	"github.com/lerenn/pkgm/pkg/core"
	"github.com/lerenn/pkgm/pkg/dependencies"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/invocation"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=runner.go -destination=mockrunner.gen.go -package=lifecycle

// Request is one command dispatched by the CLI.
type Request struct {
	Action core.Action
	Args   []string
	// Cwd defaults to the process working directory.
	Cwd   string
	Flags invocation.Flags
}

// Runner interface runs commands with their hooks.
type Runner interface {
	// Run invokes onCommand and the action's before-hook, performs the action, then invokes the
	// after-hook whatever the action's outcome. Hook outcomes never change the returned error;
	// only the action's does.
	Run(ctx context.Context, req Request) error
	// Dispatch invokes onCommand for a command that is not an action, such as "plugins list".
	Dispatch(ctx context.Context, command string, args []string, flags invocation.Flags) error
}

type realRunner struct {
	deps *dependencies.Dependencies
}

// NewRunnerParams contains parameters for creating a new Runner.
type NewRunnerParams struct {
	Dependencies *dependencies.Dependencies
}

// NewRunner creates a new Runner instance.
func NewRunner(params NewRunnerParams) (Runner, error) {
	if params.Dependencies == nil {
		return nil, ErrDependenciesMissing
	}
	if err := params.Dependencies.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependenciesMissing, err)
	}
	return &realRunner{deps: params.Dependencies}, nil
}

func (r *realRunner) Run(ctx context.Context, req Request) error {
	if !req.Action.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrUnknownAction, req.Action)
	}

	cfg, err := r.deps.Config.GetConfigWithFallback()
	if err != nil {
		return err
	}

	ictx, err := r.deps.Builder.Build(req.Action.String(), req.Args, req.Cwd, req.Flags)
	if err != nil {
		return err
	}
	log := r.deps.Logger.With("run", ictx.ID(), "command", ictx.Command())

	r.invoke(ctx, cfg, hooks.OnCommand, ictx)
	r.invoke(ctx, cfg, req.Action.BeforeHook(), ictx)

	coreErr := r.perform(ctx, core.Operation{
		Action: req.Action,
		Args:   ictx.Args(),
		Cwd:    ictx.Cwd(),
	})
	if coreErr != nil {
		log.Debugf("Action failed, running %s anyway: %v", req.Action.AfterHook(), coreErr)
	}

	r.invoke(ctx, cfg, req.Action.AfterHook(), ictx)
	r.exportMetrics(cfg)

	return coreErr
}

func (r *realRunner) Dispatch(ctx context.Context, command string, args []string, flags invocation.Flags) error {
	cfg, err := r.deps.Config.GetConfigWithFallback()
	if err != nil {
		return err
	}

	ictx, err := r.deps.Builder.Build(command, args, "", flags)
	if err != nil {
		return err
	}

	r.invoke(ctx, cfg, hooks.OnCommand, ictx)
	r.exportMetrics(cfg)
	return nil
}

func (r *realRunner) invoke(ctx context.Context, cfg config.Config, name hooks.Name, ictx *invocation.Context) {
	results := r.deps.Invoker.Invoke(ctx, name, ictx, cfg.Policy(name))
	if len(results) == 0 {
		return
	}

	s := hooks.Summarize(results)
	r.deps.Logger.Debugf("Hook %s: %d succeeded, %d failed, %d timed out", name, s.Succeeded, s.Failed, s.TimedOut)
}

func (r *realRunner) perform(ctx context.Context, op core.Operation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrCorePanicked, op.Action, rec)
		}
	}()
	return r.deps.Core.Run(ctx, op)
}

func (r *realRunner) exportMetrics(cfg config.Config) {
	if cfg.MetricsFile == "" || r.deps.Metrics == nil {
		return
	}

	path, err := r.deps.FS.ExpandPath(cfg.MetricsFile)
	if err == nil {
		err = r.deps.Metrics.WriteTextfile(path)
	}
	if err != nil {
		r.deps.Logger.Warnf("Failed to write hook metrics to %s: %v", cfg.MetricsFile, err)
	}
}
