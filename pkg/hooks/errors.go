package hooks

import (
	"errors"
	"fmt"
	"time"

	goerrors "github.com/agilira/go-errors"
)

// Registry errors.
var (
	ErrPluginNil     = errors.New("plugin cannot be nil")
	ErrPluginIDEmpty = errors.New("plugin id cannot be empty")
	ErrUnknownHook   = errors.New("unknown hook name")
)

// Error codes carried by Result.Err.
const (
	ErrCodeHandler = "HOOK_HANDLER"
	ErrCodeTimeout = "HOOK_TIMEOUT"
)

// NewHandlerError wraps the failure of a handler.
func NewHandlerError(name Name, pluginID string, cause error) *goerrors.Error {
	if cause == nil {
		cause = errors.New("handler failed")
	}
	return goerrors.Wrap(cause, ErrCodeHandler, cause.Error()).
		WithUserMessage(fmt.Sprintf("plugin %s failed during %s", pluginID, name)).
		WithContext("hook", string(name)).
		WithContext("plugin", pluginID).
		WithSeverity("warning")
}

// NewTimeoutError reports a handler that did not settle within its deadline.
func NewTimeoutError(name Name, pluginID string, timeout time.Duration) *goerrors.Error {
	return goerrors.New(ErrCodeTimeout, fmt.Sprintf("handler did not settle within %s", timeout)).
		WithUserMessage(fmt.Sprintf("plugin %s timed out during %s", pluginID, name)).
		WithContext("hook", string(name)).
		WithContext("plugin", pluginID).
		WithContext("timeout", timeout.String()).
		WithSeverity("warning")
}
