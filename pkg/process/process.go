// Package process runs external commands for plugins and the core action, killing the whole
// process group when the context ends.
package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"
)

// WaitDelay bounds how long Run waits for output pipes after the process was killed.
const WaitDelay = 2 * time.Second

// Errors.
var (
	ErrEmptyCommand = errors.New("command cannot be empty")
	ErrNonZeroExit  = errors.New("command exited with non-zero status")
)

// ExitError is returned when a command exits with a non-zero status. It matches ErrNonZeroExit.
type ExitError struct {
	Name string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %s exited with %d", ErrNonZeroExit, e.Name, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrNonZeroExit
}

// Spec describes a command to run.
type Spec struct {
	Name string
	Args []string
	Dir  string
	// Env is appended to the current environment.
	Env   []string
	Stdin io.Reader
	// Stdout and Stderr receive the streams when set; otherwise the streams are captured in Output.
	Stdout io.Writer
	Stderr io.Writer
}

// Output is what a finished command produced.
type Output struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Run executes spec and waits for it. A non-zero exit returns the output together with an error
// of type *ExitError. When ctx ends first the process group is killed and ctx's error is
// returned.
func Run(ctx context.Context, spec Spec) (*Output, error) {
	if spec.Name == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...) // #nosec G204 -- commands come from user-installed plugins
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdin = spec.Stdin
	cmd.WaitDelay = WaitDelay
	configureProcessGroup(cmd)

	stdout := bytebufferpool.Get()
	defer bytebufferpool.Put(stdout)
	stderr := bytebufferpool.Get()
	defer bytebufferpool.Put(stderr)

	cmd.Stdout = stdout
	if spec.Stdout != nil {
		cmd.Stdout = spec.Stdout
	}
	cmd.Stderr = stderr
	if spec.Stderr != nil {
		cmd.Stderr = spec.Stderr
	}

	err := cmd.Run()
	out := &Output{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   append([]byte(nil), stdout.B...),
		Stderr:   append([]byte(nil), stderr.B...),
	}

	if ctx.Err() != nil {
		return out, fmt.Errorf("%s: %w", spec.Name, ctx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, &ExitError{Name: spec.Name, Code: exitErr.ExitCode()}
		}
		return nil, fmt.Errorf("failed to run %s: %w", spec.Name, err)
	}
	return out, nil
}

// Tail returns the last n bytes of b, trimmed, starting at a line boundary when possible.
func Tail(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	s = s[len(s)-n:]
	if i := strings.IndexByte(s, '\n'); i >= 0 && i < len(s)-1 {
		s = s[i+1:]
	}
	return s
}
