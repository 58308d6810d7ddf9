package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/process"
)

// stderrTail bounds the stderr excerpt carried by a failure.
const stderrTail = 512

// command is a hook handler backed by an external process.
type command struct {
	argv        []string
	env         map[string]string
	dir         string
	manifestDir string
	logger      logger.Logger
}

type stdinPayload struct {
	Hook   string `json:"hook"`
	Plugin string `json:"plugin"`
	hooks.Payload
}

// Invoke runs the command with the payload on stdin.
func (c *command) Invoke(ctx context.Context, call hooks.Call) hooks.Future {
	return hooks.Resolved(c.run(ctx, call))
}

func (c *command) run(ctx context.Context, call hooks.Call) error {
	payload, err := json.Marshal(stdinPayload{
		Hook:    string(call.Hook),
		Plugin:  call.PluginID,
		Payload: call.Payload(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	out, err := process.Run(ctx, process.Spec{
		Name:  c.argv[0],
		Args:  c.argv[1:],
		Dir:   c.workDir(call),
		Env:   c.environ(call),
		Stdin: bytes.NewReader(payload),
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		if errors.Is(err, process.ErrNonZeroExit) {
			if tail := process.Tail(out.Stderr, stderrTail); tail != "" {
				return fmt.Errorf("exit status %d: %s", out.ExitCode, tail)
			}
			return fmt.Errorf("exit status %d", out.ExitCode)
		}
		return err
	}

	if stderr := strings.TrimSpace(string(out.Stderr)); stderr != "" {
		c.logger.Debugf("%s", stderr)
	}
	return c.record(call, out.Stdout)
}

// record stores JSON printed on stdout in the plugin namespace; other output is logged.
func (c *command) record(call hooks.Call, stdout []byte) error {
	stdout = bytes.TrimSpace(stdout)
	if len(stdout) == 0 {
		return nil
	}
	if !json.Valid(stdout) {
		c.logger.Debugf("%s", stdout)
		return nil
	}

	var value any
	if err := json.Unmarshal(stdout, &value); err != nil {
		return fmt.Errorf("failed to decode output: %w", err)
	}
	return call.Scope.Record(value)
}

func (c *command) workDir(call hooks.Call) string {
	switch {
	case c.dir == "":
		return call.Context.Cwd
	case filepath.IsAbs(c.dir):
		return c.dir
	default:
		return filepath.Join(c.manifestDir, c.dir)
	}
}

func (c *command) environ(call hooks.Call) []string {
	env := []string{
		"PKGM_HOOK=" + string(call.Hook),
		"PKGM_PLUGIN_ID=" + call.PluginID,
		"PKGM_COMMAND=" + call.Command,
		"PKGM_ARGS=" + strings.Join(call.Args, " "),
		"PKGM_CWD=" + call.Context.Cwd,
		"PKGM_VERBOSE=" + strconv.FormatBool(call.Context.Verbose),
	}

	keys := make([]string, 0, len(c.env))
	for k := range c.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+c.env[k])
	}
	return env
}
