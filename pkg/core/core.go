package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/process"
)

//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=core.go -destination=mockcore.gen.go -package=core

// Operation is one primary action to perform.
type Operation struct {
	Action Action
	Args   []string
	Cwd    string
}

// Core performs primary actions. Resolution, lockfiles and installation live behind it.
type Core interface {
	Run(ctx context.Context, op Operation) error
}

type commandCore struct {
	command []string
	logger  logger.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// NewCommandCore creates a Core running command followed by the action and its arguments,
// with the terminal's standard streams.
func NewCommandCore(command []string, log logger.Logger) Core {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &commandCore{
		command: append([]string(nil), command...),
		logger:  log,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

func (c *commandCore) Run(ctx context.Context, op Operation) error {
	if len(c.command) == 0 {
		return process.ErrEmptyCommand
	}

	args := make([]string, 0, len(c.command)+len(op.Args))
	args = append(args, c.command[1:]...)
	args = append(args, op.Action.String())
	args = append(args, op.Args...)
	c.logger.Debugf("Running %s %v in %s", c.command[0], args, op.Cwd)

	_, err := process.Run(ctx, process.Spec{
		Name:   c.command[0],
		Args:   args,
		Dir:    op.Cwd,
		Stdin:  c.stdin,
		Stdout: c.stdout,
		Stderr: c.stderr,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrActionFailed, op.Action, err)
	}
	return nil
}

type noopCore struct {
	logger logger.Logger
}

// NewNoopCore creates a Core that only logs the action. Used when no core command is configured,
// so that hooks still run.
func NewNoopCore(log logger.Logger) Core {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &noopCore{logger: log}
}

func (c *noopCore) Run(_ context.Context, op Operation) error {
	c.logger.Logf("No core command configured, skipping %s", op.Action)
	return nil
}
