//go:build unit

package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/process"
)

func TestParseAction(t *testing.T) {
	for _, a := range Actions() {
		parsed, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	_, err := ParseAction("publish")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestAction_Hooks(t *testing.T) {
	tests := []struct {
		action Action
		before hooks.Name
		after  hooks.Name
	}{
		{Install, hooks.BeforeInstall, hooks.AfterInstall},
		{Update, hooks.BeforeUpdate, hooks.AfterUpdate},
		{Uninstall, hooks.BeforeUninstall, hooks.AfterUninstall},
		{Audit, hooks.BeforeAudit, hooks.AfterAudit},
		{Clean, hooks.BeforeClean, hooks.AfterClean},
	}

	for _, tt := range tests {
		t.Run(tt.action.String(), func(t *testing.T) {
			assert.Equal(t, tt.before, tt.action.BeforeHook())
			assert.Equal(t, tt.after, tt.action.AfterHook())
		})
	}
}

func TestNoopCore_Run(t *testing.T) {
	c := NewNoopCore(nil)
	assert.NoError(t, c.Run(t.Context(), Operation{Action: Install, Args: []string{"left-pad"}}))
}

func TestCommandCore_EmptyCommand(t *testing.T) {
	c := NewCommandCore(nil, nil)
	assert.ErrorIs(t, c.Run(t.Context(), Operation{Action: Install}), process.ErrEmptyCommand)
}

func TestExitCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want int
	}{
		"success":       {err: nil, want: 0},
		"core exit":     {err: fmt.Errorf("%w: %s: %w", ErrActionFailed, Install, &process.ExitError{Name: "npm", Code: 4}), want: 4},
		"core not run":  {err: fmt.Errorf("%w: %s: %w", ErrActionFailed, Install, errors.New("not found")), want: 1},
		"other failure": {err: ErrUnknownAction, want: 1},
		"bare exit":     {err: &process.ExitError{Name: "npm", Code: 4}, want: 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
