package bundled

import (
	"context"
	"strings"

	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
)

// NewLoggingPlugin creates the plugin tracing every lifecycle point at debug level.
func NewLoggingPlugin(log logger.Logger) *hooks.Plugin {
	log = log.With("plugin", LoggingID)

	handlers := make(map[hooks.Name]hooks.Handler)
	for _, name := range hooks.Names() {
		handlers[name] = hooks.HandlerFunc(func(_ context.Context, call hooks.Call) error {
			switch {
			case name == hooks.OnCommand:
				log.Debugf("Dispatching %s with args %v in %s", call.Command, call.Args, call.Context.Cwd)
			case strings.HasPrefix(string(name), "before"):
				log.Debugf("Starting operation: %s with args %v", call.Command, call.Args)
			default:
				log.Debugf("Operation finished: %s", call.Command)
			}
			return nil
		})
	}

	return hooks.NewPlugin(LoggingID, Runtime, handlers)
}
