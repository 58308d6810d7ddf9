//go:build unit

package dependencies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/lerenn/pkgm/pkg/config"
	"github.com/lerenn/pkgm/pkg/core"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

func TestDependencies_New_Defaults(t *testing.T) {
	deps := New()

	assert.NotNil(t, deps.FS)
	assert.NotNil(t, deps.Logger)
	assert.NotNil(t, deps.Builder)
	assert.NotNil(t, deps.Invoker)
	assert.NotNil(t, deps.Core)
	assert.Nil(t, deps.Config)
	assert.Nil(t, deps.Metrics)

	// Validation fails because the config manager needs a path.
	assert.ErrorIs(t, deps.Validate(), ErrConfigMissing)
}

func TestDependencies_Validate(t *testing.T) {
	ctrl := gomock.NewController(t)
	complete := func() *Dependencies {
		return New().WithConfig(config.NewMockManager(ctrl))
	}

	tests := []struct {
		name    string
		unset   func(d *Dependencies)
		wantErr error
	}{
		{name: "complete", unset: func(*Dependencies) {}},
		{name: "fs", unset: func(d *Dependencies) { d.FS = nil }, wantErr: ErrFSMissing},
		{name: "config", unset: func(d *Dependencies) { d.Config = nil }, wantErr: ErrConfigMissing},
		{name: "logger", unset: func(d *Dependencies) { d.Logger = nil }, wantErr: ErrLoggerMissing},
		{name: "builder", unset: func(d *Dependencies) { d.Builder = nil }, wantErr: ErrBuilderMissing},
		{name: "invoker", unset: func(d *Dependencies) { d.Invoker = nil }, wantErr: ErrInvokerMissing},
		{name: "core", unset: func(d *Dependencies) { d.Core = nil }, wantErr: ErrCoreMissing},
		{name: "metrics are optional", unset: func(d *Dependencies) { d.Metrics = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := complete()
			tt.unset(deps)

			err := deps.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDependencies_Validate_AllMissing(t *testing.T) {
	deps := &Dependencies{}

	// The first missing dependency is reported.
	assert.ErrorIs(t, deps.Validate(), ErrFSMissing)
}

func TestDependencies_With(t *testing.T) {
	ctrl := gomock.NewController(t)
	cfg := config.NewMockManager(ctrl)
	c := core.NewMockCore(ctrl)
	log := logger.NewNoopLogger()
	metrics := hooks.NewMetrics()
	inv := hooks.NewInvoker(hooks.NewInvokerParams{Metrics: metrics})

	deps := New().
		WithConfig(cfg).
		WithCore(c).
		WithLogger(log).
		WithMetrics(metrics).
		WithInvoker(inv)

	assert.Same(t, cfg, deps.Config)
	assert.Same(t, c, deps.Core)
	assert.Same(t, metrics, deps.Metrics)
	assert.Same(t, inv, deps.Invoker)
	assert.Equal(t, log, deps.Logger)
}
