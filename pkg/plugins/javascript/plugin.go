package javascript

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dop251/goja"

	"github.com/lerenn/pkgm/pkg/hooks"
	"github.com/lerenn/pkgm/pkg/logger"
	"github.com/lerenn/pkgm/pkg/process"
)

// plugin owns the VM of one file. goja runtimes are not goroutine safe, so calls are serialized.
type plugin struct {
	vm     *goja.Runtime
	logger logger.Logger
	lock   chan struct{}
	flush  goja.Callable

	// current is only touched while lock is held.
	current *callState
}

// callState lives for one handler call.
type callState struct {
	ctx  context.Context
	call hooks.Call
	jobs chan func()
	done chan struct{}
}

func newPlugin(log logger.Logger) *plugin {
	p := &plugin{
		vm:     goja.New(),
		logger: log,
		lock:   make(chan struct{}, 1),
	}

	console := p.vm.NewObject()
	_ = console.Set("log", p.console(log.Logf))
	_ = console.Set("info", p.console(log.Logf))
	_ = console.Set("debug", p.console(log.Debugf))
	_ = console.Set("warn", p.console(log.Warnf))
	_ = console.Set("error", p.console(log.Errorf))
	_ = p.vm.Set("console", console)

	host := p.vm.NewObject()
	_ = host.Set("exec", p.exec)
	_ = p.vm.Set("pkgm", host)

	noop, _ := p.vm.RunString("(function () {})")
	p.flush, _ = goja.AssertFunction(noop)
	return p
}

func (p *plugin) console(logf func(format string, args ...interface{})) func(goja.FunctionCall) goja.Value {
	return func(fc goja.FunctionCall) goja.Value {
		parts := make([]string, len(fc.Arguments))
		for i, arg := range fc.Arguments {
			parts[i] = arg.String()
		}
		logf("%s", strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// watch interrupts the VM when ctx ends. The returned function must be called once the VM is idle.
func (p *plugin) watch(ctx context.Context) func() {
	stop := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		select {
		case <-ctx.Done():
			p.vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()
	return func() {
		close(stop)
		<-finished
		p.vm.ClearInterrupt()
	}
}

func (p *plugin) call(ctx context.Context, fn goja.Callable, call hooks.Call) error {
	select {
	case p.lock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.lock }()

	state := &callState{ctx: ctx, call: call, jobs: make(chan func(), 8), done: make(chan struct{})}
	p.current = state
	defer func() {
		close(state.done)
		p.current = nil
	}()

	stop := p.watch(ctx)
	defer stop()

	value, err := fn(goja.Undefined(), p.argument(call))
	if err != nil {
		return p.failure(ctx, err)
	}
	return p.await(ctx, state, value)
}

// await settles a returned Promise, running host callbacks on the VM as they arrive.
func (p *plugin) await(ctx context.Context, state *callState, value goja.Value) error {
	if value == nil {
		return nil
	}
	promise, ok := value.Export().(*goja.Promise)
	if !ok {
		return nil
	}

	for {
		switch promise.State() {
		case goja.PromiseStateFulfilled:
			return nil
		case goja.PromiseStateRejected:
			return errors.New(p.message(promise.Result()))
		}

		select {
		case job := <-state.jobs:
			job()
			if _, err := p.flush(goja.Undefined()); err != nil {
				return p.failure(ctx, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *plugin) argument(call hooks.Call) *goja.Object {
	args := make([]interface{}, len(call.Args))
	for i, a := range call.Args {
		args[i] = a
	}

	env := p.vm.NewObject()
	_ = env.Set("cwd", call.Context.Cwd)
	_ = env.Set("verbose", call.Context.Verbose)

	arg := p.vm.NewObject()
	_ = arg.Set("hook", string(call.Hook))
	_ = arg.Set("plugin", call.PluginID)
	_ = arg.Set("command", call.Command)
	_ = arg.Set("args", p.vm.NewArray(args...))
	_ = arg.Set("context", env)
	_ = arg.Set("record", func(fc goja.FunctionCall) goja.Value {
		if err := call.Scope.Record(fc.Argument(0).Export()); err != nil {
			panic(p.vm.NewGoError(err))
		}
		return goja.Undefined()
	})
	_ = arg.Set("recorded", func(goja.FunctionCall) goja.Value {
		value, ok := call.Scope.Recorded()
		if !ok {
			return goja.Undefined()
		}
		return p.vm.ToValue(value)
	})
	return arg
}

// exec implements pkgm.exec(command, ...args), resolving with the exit code.
func (p *plugin) exec(fc goja.FunctionCall) goja.Value {
	promise, resolve, reject := p.vm.NewPromise()
	state := p.current
	if state == nil {
		reject(p.vm.NewTypeError("pkgm.exec is only available inside a hook handler"))
		return p.vm.ToValue(promise)
	}
	if len(fc.Arguments) == 0 {
		reject(p.vm.NewTypeError("pkgm.exec requires a command"))
		return p.vm.ToValue(promise)
	}

	spec := process.Spec{Name: fc.Arguments[0].String(), Dir: state.call.Context.Cwd}
	for _, arg := range fc.Arguments[1:] {
		spec.Args = append(spec.Args, arg.String())
	}

	go func() {
		out, err := process.Run(state.ctx, spec)
		job := func() {
			switch {
			case err == nil || errors.Is(err, process.ErrNonZeroExit):
				p.logger.Debugf("%s exited with %d", spec.Name, out.ExitCode)
				resolve(out.ExitCode)
			default:
				reject(p.vm.NewGoError(err))
			}
		}
		select {
		case state.jobs <- job:
		case <-state.done:
		}
	}()

	return p.vm.ToValue(promise)
}

// failure converts a goja error into the error reported for the handler.
func (p *plugin) failure(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("interrupted: %v", interrupted.Value())
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return errors.New(p.message(exception.Value()))
	}
	return err
}

// message extracts the message of a thrown value.
func (p *plugin) message(value goja.Value) string {
	if value == nil || goja.IsUndefined(value) {
		return "undefined"
	}
	if obj, ok := value.(*goja.Object); ok {
		if msg := obj.Get("message"); msg != nil && !goja.IsUndefined(msg) {
			return msg.String()
		}
	}
	return value.String()
}
