package core

import (
	"errors"

	"github.com/lerenn/pkgm/pkg/process"
)

// Error definitions for core package.
var (
	ErrUnknownAction = errors.New("unknown action")
	ErrActionFailed  = errors.New("action failed")
)

// ExitCode returns the status the CLI exits with for err: the core command's own exit status
// when the action failed that way, 1 for any other error, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *process.ExitError
	if errors.Is(err, ErrActionFailed) && errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}
