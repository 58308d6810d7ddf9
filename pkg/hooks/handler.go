package hooks

import (
	"context"

	"github.com/lerenn/pkgm/pkg/invocation"
)

// CallContext is the context part of the plugin payload.
type CallContext struct {
	Cwd     string `json:"cwd"`
	Verbose bool   `json:"verbose"`
}

// Payload is the single argument every plugin handler receives.
type Payload struct {
	Command string      `json:"command"`
	Args    []string    `json:"args"`
	Context CallContext `json:"context"`
}

// Call describes one handler execution.
type Call struct {
	Hook     Name
	PluginID string
	Command  string
	Args     []string
	Context  CallContext

	// Scope is the plugin's own slot in the extension area of the command run.
	Scope invocation.Scope
}

// Payload returns the plugin-facing argument of the call.
func (c Call) Payload() Payload {
	return Payload{Command: c.Command, Args: c.Args, Context: c.Context}
}

func newCall(name Name, pluginID string, ictx *invocation.Context) Call {
	return Call{
		Hook:     name,
		PluginID: pluginID,
		Command:  ictx.Command(),
		Args:     ictx.Args(),
		Context:  CallContext{Cwd: ictx.Cwd(), Verbose: ictx.Verbose()},
		Scope:    ictx.Scope(pluginID),
	}
}

// Future is the pending outcome of a handler. It delivers at most one value; a channel closed
// without a value counts as success.
type Future <-chan error

// Resolved returns a Future that has already settled with err.
func Resolved(err error) Future {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}

// Go runs fn in its own goroutine and returns its Future. A panic in fn settles the Future
// with a *PanicError.
func Go(fn func() error) Future {
	ch := make(chan error, 1)
	go func() {
		defer settlePanic(ch)
		ch <- fn()
	}()
	return ch
}

// Handler is one plugin's implementation of one hook.
// Invoke may block (synchronous handlers) or return a pending Future (asynchronous handlers);
// the invoker treats both the same way. A nil Future counts as immediate success.
type Handler interface {
	Invoke(ctx context.Context, call Call) Future
}

// HandlerFunc adapts a synchronous function to Handler.
type HandlerFunc func(ctx context.Context, call Call) error

// Invoke runs f and returns its settled outcome.
func (f HandlerFunc) Invoke(ctx context.Context, call Call) Future {
	return Resolved(f(ctx, call))
}

// AsyncHandlerFunc adapts a function returning a pending Future to Handler.
type AsyncHandlerFunc func(ctx context.Context, call Call) Future

// Invoke starts f.
func (f AsyncHandlerFunc) Invoke(ctx context.Context, call Call) Future {
	return f(ctx, call)
}
