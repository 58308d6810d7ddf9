//go:build unit

package lifecycle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lerenn/pkgm/pkg/config"
	"github.com/lerenn/pkgm/pkg/core"
	"github.com/lerenn/pkgm/pkg/dependencies"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/logger"
)

type runnerFixture struct {
	runner  Runner
	config  *config.MockManager
	core    *core.MockCore
	metrics *hooks.Metrics
	logs    *observer.ObservedLogs
}

// recorder returns a plugin appending "<hook>:<id>" to events for every hook it is given.
func recorder(id string, events *[]string, names ...hooks.Name) *hooks.Plugin {
	handlers := make(map[hooks.Name]hooks.Handler, len(names))
	for _, name := range names {
		handlers[name] = hooks.HandlerFunc(func(_ context.Context, call hooks.Call) error {
			*events = append(*events, string(call.Hook)+":"+id)
			return nil
		})
	}
	return hooks.NewPlugin(id, "test", handlers)
}

func newRunnerFixture(t *testing.T, plugins ...*hooks.Plugin) runnerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	zcore, logs := observer.New(zap.DebugLevel)
	log := logger.NewFromZap(zap.New(zcore))

	metrics := hooks.NewMetrics()
	registry := hooks.BuildRegistry(plugins, log)
	mockConfig := config.NewMockManager(ctrl)
	mockCore := core.NewMockCore(ctrl)

	deps := dependencies.New().
		WithLogger(log).
		WithConfig(mockConfig).
		WithCore(mockCore).
		WithMetrics(metrics).
		WithInvoker(hooks.NewInvoker(hooks.NewInvokerParams{
			Registry: registry,
			Logger:   log,
			Metrics:  metrics,
		}))

	runner, err := NewRunner(NewRunnerParams{Dependencies: deps})
	require.NoError(t, err)

	return runnerFixture{
		runner:  runner,
		config:  mockConfig,
		core:    mockCore,
		metrics: metrics,
		logs:    logs,
	}
}

func defaultConfig() config.Config {
	return config.NewManager(nil, "").DefaultConfig()
}

func TestRunner_Run_Order(t *testing.T) {
	var events []string
	all := hooks.Names()
	f := newRunnerFixture(t,
		recorder("a", &events, all...),
		recorder("b", &events, hooks.BeforeInstall, hooks.AfterInstall),
	)
	cwd, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	f.config.EXPECT().GetConfigWithFallback().Return(defaultConfig(), nil)
	f.core.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, op core.Operation) error {
		assert.Equal(t, core.Install, op.Action)
		assert.Equal(t, []string{"left-pad"}, op.Args)
		assert.Equal(t, cwd, op.Cwd)
		events = append(events, "core")
		return nil
	})

	err = f.runner.Run(t.Context(), Request{Action: core.Install, Args: []string{"left-pad"}, Cwd: cwd})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"onCommand:a",
		"beforeInstall:a",
		"beforeInstall:b",
		"core",
		"afterInstall:a",
		"afterInstall:b",
	}, events)
}

func TestRunner_Dispatch_InvokesOnCommandOnly(t *testing.T) {
	var events []string
	var command string
	seen := hooks.NewPlugin("seen", "test", map[hooks.Name]hooks.Handler{
		hooks.OnCommand: hooks.HandlerFunc(func(_ context.Context, call hooks.Call) error {
			command = call.Command
			return nil
		}),
	})
	f := newRunnerFixture(t, seen, recorder("a", &events, hooks.BeforeInstall, hooks.AfterInstall))

	f.config.EXPECT().GetConfigWithFallback().Return(defaultConfig(), nil)

	require.NoError(t, f.runner.Dispatch(t.Context(), "plugins list", nil, invocation.Flags{}))
	assert.Equal(t, "plugins list", command)
	assert.Empty(t, events)
}

func TestRunner_Dispatch_ConfigError(t *testing.T) {
	f := newRunnerFixture(t)
	f.config.EXPECT().GetConfigWithFallback().Return(config.Config{}, config.ErrConfigFileParse)

	err := f.runner.Dispatch(t.Context(), "plugins list", nil, invocation.Flags{})
	assert.ErrorIs(t, err, config.ErrConfigFileParse)
}

func TestRunner_Run_CoreFailureStillRunsAfterHooks(t *testing.T) {
	var events []string
	f := newRunnerFixture(t, recorder("a", &events, hooks.BeforeClean, hooks.AfterClean))
	coreErr := errors.New("disk full")

	f.config.EXPECT().GetConfigWithFallback().Return(defaultConfig(), nil)
	f.core.EXPECT().Run(gomock.Any(), gomock.Any()).Return(coreErr)

	err := f.runner.Run(t.Context(), Request{Action: core.Clean, Cwd: t.TempDir()})
	assert.ErrorIs(t, err, coreErr)
	assert.Equal(t, []string{"beforeClean:a", "afterClean:a"}, events)
}

func TestRunner_Run_CorePanic(t *testing.T) {
	var events []string
	f := newRunnerFixture(t, recorder("a", &events, hooks.AfterUpdate))

	f.config.EXPECT().GetConfigWithFallback().Return(defaultConfig(), nil)
	f.core.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, core.Operation) error {
		panic("resolver exploded")
	})

	err := f.runner.Run(t.Context(), Request{Action: core.Update, Cwd: t.TempDir()})
	require.ErrorIs(t, err, ErrCorePanicked)
	assert.Contains(t, err.Error(), "resolver exploded")
	assert.Equal(t, []string{"afterUpdate:a"}, events)
}

func TestRunner_Run_HookFailuresDoNotFailTheCommand(t *testing.T) {
	broken := hooks.NewPlugin("broken", "test", map[hooks.Name]hooks.Handler{
		hooks.BeforeUninstall: hooks.HandlerFunc(func(context.Context, hooks.Call) error {
			return errors.New("boom")
		}),
		hooks.AfterUninstall: hooks.HandlerFunc(func(context.Context, hooks.Call) error {
			panic("worse")
		}),
	})
	f := newRunnerFixture(t, broken)

	f.config.EXPECT().GetConfigWithFallback().Return(defaultConfig(), nil)
	f.core.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.runner.Run(t.Context(), Request{Action: core.Uninstall, Cwd: t.TempDir()}))

	warnings := f.logs.FilterLevelExact(zap.WarnLevel).FilterField(zap.String("plugin", "broken"))
	assert.Equal(t, 2, warnings.Len())
}

func TestRunner_Run_ParallelPolicyFromConfig(t *testing.T) {
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	rendezvous := hooks.HandlerFunc(func(ctx context.Context, _ hooks.Call) error {
		started <- struct{}{}
		select {
		case <-release:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	f := newRunnerFixture(t,
		hooks.NewPlugin("one", "test", map[hooks.Name]hooks.Handler{hooks.BeforeAudit: rendezvous}),
		hooks.NewPlugin("two", "test", map[hooks.Name]hooks.Handler{hooks.BeforeAudit: rendezvous}),
	)

	cfg := defaultConfig()
	cfg.Hooks.Timeout = 5 * time.Second
	f.config.EXPECT().GetConfigWithFallback().Return(cfg, nil)
	f.core.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil)

	go func() {
		// Both handlers must be running at once before either is released.
		<-started
		<-started
		close(release)
	}()

	require.NoError(t, f.runner.Run(t.Context(), Request{Action: core.Audit, Cwd: t.TempDir()}))
	assert.Equal(t, 0, f.logs.FilterLevelExact(zap.WarnLevel).Len())
}

func TestRunner_Run_MetricsFile(t *testing.T) {
	var events []string
	f := newRunnerFixture(t, recorder("a", &events, hooks.AfterInstall))
	path := filepath.Join(t.TempDir(), "pkgm.prom")

	cfg := defaultConfig()
	cfg.MetricsFile = path
	f.config.EXPECT().GetConfigWithFallback().Return(cfg, nil)
	f.core.EXPECT().Run(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.runner.Run(t.Context(), Request{Action: core.Install, Cwd: t.TempDir()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pkgm_hooks_results_total{hook="afterInstall",outcome="SUCCEEDED"} 1`)
}

func TestRunner_Run_Errors(t *testing.T) {
	t.Run("unknown action", func(t *testing.T) {
		f := newRunnerFixture(t)
		err := f.runner.Run(t.Context(), Request{Action: "publish"})
		assert.ErrorIs(t, err, core.ErrUnknownAction)
	})

	t.Run("config error aborts before any hook", func(t *testing.T) {
		var events []string
		f := newRunnerFixture(t, recorder("a", &events, hooks.Names()...))
		f.config.EXPECT().GetConfigWithFallback().Return(config.Config{}, config.ErrConfigFileParse)

		err := f.runner.Run(t.Context(), Request{Action: core.Install})
		assert.ErrorIs(t, err, config.ErrConfigFileParse)
		assert.Empty(t, events)
	})

	t.Run("unresolvable cwd", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.config.EXPECT().GetConfigWithFallback().Return(defaultConfig(), nil)

		err := f.runner.Run(t.Context(), Request{Action: core.Install, Cwd: "\x00"})
		assert.ErrorIs(t, err, invocation.ErrCwdResolution)
	})
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(NewRunnerParams{})
	assert.ErrorIs(t, err, ErrDependenciesMissing)

	_, err = NewRunner(NewRunnerParams{Dependencies: dependencies.New()})
	assert.ErrorIs(t, err, ErrDependenciesMissing)
	assert.ErrorIs(t, err, dependencies.ErrConfigMissing)
}
