// Package invocation builds the per-command context handed to every hook handler.
package invocation

import "errors"

// Error definitions for invocation package.
var (
	ErrCommandEmpty    = errors.New("command cannot be empty")
	ErrCwdResolution   = errors.New("failed to resolve working directory")
	ErrPluginIDMissing = errors.New("extension scope requires a plugin id")
)
