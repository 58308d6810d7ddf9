package plugins

import (
	"errors"
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Loader configuration errors.
var (
	ErrRuntimeNil       = errors.New("runtime cannot be nil")
	ErrExtensionClaimed = errors.New("extension already claimed by another runtime")
	ErrNotDirectory     = errors.New("not a directory")
)

// Error codes returned by Loader.Load.
const (
	ErrCodeLoad  = "PLUGIN_LOAD"
	ErrCodeShape = "PLUGIN_SHAPE"
)

// NewLoadError reports a plugin file or directory that could not be imported.
func NewLoadError(path string, cause error) *goerrors.Error {
	if cause == nil {
		cause = errors.New("import failed")
	}
	return goerrors.Wrap(cause, ErrCodeLoad, fmt.Sprintf("cannot load %s: %v", path, cause)).
		WithUserMessage("Plugin could not be loaded and was skipped").
		WithContext("plugin", path).
		WithSeverity("warning")
}

// NewShapeError reports a plugin whose default export is not a mapping.
func NewShapeError(path, kind string) *goerrors.Error {
	return goerrors.New(ErrCodeShape, fmt.Sprintf("%s must export a mapping of hook names to handlers, got %s", path, kind)).
		WithUserMessage("Plugin has an invalid shape and was skipped").
		WithContext("plugin", path).
		WithContext("kind", kind).
		WithSeverity("warning")
}
