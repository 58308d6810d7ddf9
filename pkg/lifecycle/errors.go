package lifecycle

import "errors"

// Error definitions for lifecycle package.
var (
	ErrDependenciesMissing = errors.New("lifecycle runner requires dependencies")
	ErrCorePanicked        = errors.New("core action panicked")
)
