package bundled

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

// historyHooks are the points after which the package set may have changed.
var historyHooks = []hooks.Name{
	hooks.AfterInstall,
	hooks.AfterUpdate,
	hooks.AfterUninstall,
	hooks.AfterClean,
}

type history struct {
	fs     fs.FS
	path   string
	logger logger.Logger
	now    func() time.Time
}

// NewHistoryPlugin creates the plugin appending one line per mutating command to path.
func NewHistoryPlugin(fsys fs.FS, path string, log logger.Logger) *hooks.Plugin {
	return newHistoryPlugin(fsys, path, log, time.Now)
}

func newHistoryPlugin(fsys fs.FS, path string, log logger.Logger, now func() time.Time) *hooks.Plugin {
	h := &history{
		fs:     fsys,
		path:   path,
		logger: log.With("plugin", HistoryID),
		now:    now,
	}

	handlers := make(map[hooks.Name]hooks.Handler, len(historyHooks))
	for _, name := range historyHooks {
		handlers[name] = hooks.HandlerFunc(h.append)
	}
	return hooks.NewPlugin(HistoryID, Runtime, handlers)
}

func (h *history) append(_ context.Context, call hooks.Call) error {
	path, err := h.fs.ExpandPath(h.path)
	if err != nil {
		return err
	}

	unlock, err := h.fs.FileLock(path)
	if err != nil {
		return fmt.Errorf("failed to lock history: %w", err)
	}
	defer unlock()

	line := fmt.Sprintf("%s\t%s\t%s\n", h.now().UTC().Format(time.RFC3339), call.Command, strings.Join(call.Args, " "))
	if err := h.fs.AppendFile(path, []byte(line), 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	h.logger.Debugf("Recorded %s in %s", call.Command, path)
	return nil
}
