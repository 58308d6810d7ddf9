// Package bundled provides the plugins compiled into pkgm.
package bundled

import (
	"github.com/lerenn/pkgm/pkg/fs"
	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

// Runtime is the runtime name reported for bundled plugins.
const Runtime = "builtin"

// Plugin ids.
const (
	LoggingID = "builtin://logging"
	HistoryID = "builtin://history"
)

// Params configures the bundled plugins.
type Params struct {
	FS     fs.FS
	Logger logger.Logger
	// HistoryFile enables the history plugin when set.
	HistoryFile string
}

// New returns the bundled plugins in registration order.
func New(params Params) []*hooks.Plugin {
	log := params.Logger
	if log == nil {
		log = logger.NewNoopLogger()
	}
	fsys := params.FS
	if fsys == nil {
		fsys = fs.NewFS()
	}

	plugins := []*hooks.Plugin{NewLoggingPlugin(log)}
	if params.HistoryFile != "" {
		plugins = append(plugins, NewHistoryPlugin(fsys, params.HistoryFile, log))
	}
	return plugins
}
