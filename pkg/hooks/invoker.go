package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/lerenn/pkgm/pkg/invocation"
	"github.com/lerenn/pkgm/pkg/logger"
)

const tracerName = "github.com/lerenn/pkgm/pkg/hooks"

var errContextNil = errors.New("invocation context is nil")

// Invoker runs the handlers registered for a hook and collects one Result per handler.
type Invoker struct {
	registry       *Registry
	logger         logger.Logger
	metrics        *Metrics
	tracer         trace.Tracer
	defaultTimeout time.Duration
}

// NewInvokerParams contains the parameters for creating an Invoker.
type NewInvokerParams struct {
	Registry *Registry
	Logger   logger.Logger
	// Metrics is optional.
	Metrics *Metrics
	// Tracer is optional; spans are dropped when unset.
	Tracer trace.Tracer
	// DefaultTimeout applies when a Policy carries none. Zero waits without limit.
	DefaultTimeout time.Duration
}

// NewInvoker creates an Invoker.
func NewInvoker(params NewInvokerParams) *Invoker {
	inv := &Invoker{
		registry:       params.Registry,
		logger:         params.Logger,
		metrics:        params.Metrics,
		tracer:         params.Tracer,
		defaultTimeout: params.DefaultTimeout,
	}
	if inv.registry == nil {
		inv.registry = NewRegistry(params.Logger)
	}
	if inv.logger == nil {
		inv.logger = logger.NewNoopLogger()
	}
	if inv.tracer == nil {
		inv.tracer = noop.NewTracerProvider().Tracer(tracerName)
	}
	return inv
}

// Registry returns the registry the invoker reads from.
func (inv *Invoker) Registry() *Registry {
	return inv.registry
}

// Invoke runs every handler registered for name and returns their results in registry order.
// It never fails: handler errors, panics and timeouts are reported as results. A hook with no
// handler yields an empty slice.
func (inv *Invoker) Invoke(ctx context.Context, name Name, ictx *invocation.Context, policy Policy) []Result {
	entries := inv.registry.Entries(name)
	if len(entries) == 0 {
		return []Result{}
	}

	if ictx == nil {
		results := make([]Result, len(entries))
		for i, entry := range entries {
			results[i] = inv.settle(name, entry.PluginID, 0, errContextNil)
		}
		return results
	}

	ctx, span := inv.tracer.Start(ctx, "hooks.invoke", trace.WithAttributes(
		attribute.String("hook.name", string(name)),
		attribute.String("hook.mode", policy.Mode.String()),
		attribute.String("invocation.id", ictx.ID()),
		attribute.Int("hook.handlers", len(entries)),
	))
	defer span.End()

	inv.metrics.observeInvocation(name, policy.Mode)

	timeout := policy.Timeout
	if timeout <= 0 {
		timeout = inv.defaultTimeout
	}

	var results []Result
	if policy.Mode == ModeParallel && len(entries) > 1 {
		results = inv.invokeParallel(ctx, name, entries, ictx, timeout, policy.concurrency(len(entries)))
	} else {
		results = inv.invokeSequential(ctx, name, entries, ictx, timeout)
	}

	summary := Summarize(results)
	span.SetAttributes(
		attribute.Int("hook.failed", summary.Failed),
		attribute.Int("hook.timed_out", summary.TimedOut),
	)
	if summary.Failed+summary.TimedOut > 0 {
		span.SetStatus(codes.Error, "one or more handlers did not succeed")
	}
	return results
}

func (inv *Invoker) invokeSequential(
	ctx context.Context,
	name Name,
	entries []Entry,
	ictx *invocation.Context,
	timeout time.Duration,
) []Result {
	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, inv.run(ctx, name, entry, ictx, timeout))
	}
	return results
}

func (inv *Invoker) invokeParallel(
	ctx context.Context,
	name Name,
	entries []Entry,
	ictx *invocation.Context,
	timeout time.Duration,
	size int,
) []Result {
	pool, err := ants.NewPool(size)
	if err != nil {
		inv.logger.Warnf("Parallel pool unavailable for %s, running sequentially: %v", name, err)
		return inv.invokeSequential(ctx, name, entries, ictx, timeout)
	}
	defer pool.Release()

	results := make([]Result, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = inv.run(ctx, name, entry, ictx, timeout)
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()
	return results
}

// run executes one handler and always returns its result.
func (inv *Invoker) run(
	ctx context.Context,
	name Name,
	entry Entry,
	ictx *invocation.Context,
	timeout time.Duration,
) Result {
	ctx, span := inv.tracer.Start(ctx, "hooks.handler", trace.WithAttributes(
		attribute.String("hook.name", string(name)),
		attribute.String("plugin.id", entry.PluginID),
	))
	defer span.End()

	hctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	settled := make(chan error, 1)
	call := newCall(name, entry.PluginID, ictx)

	go func() {
		defer settlePanic(settled)
		future := entry.Handler.Invoke(hctx, call)
		if future == nil {
			settled <- nil
			return
		}
		select {
		case err := <-future:
			settled <- err
		case <-hctx.Done():
			select {
			case err := <-future:
				settled <- err
			default:
			}
		}
	}()

	var err error
	expired := false
	select {
	case err = <-settled:
	case <-hctx.Done():
		// A handler that settled at the deadline keeps its own outcome.
		select {
		case err = <-settled:
		default:
			expired = true
			err = hctx.Err()
		}
	}

	var result Result
	if timedOut(ctx, hctx, expired, err) {
		result = inv.timeoutResult(name, entry.PluginID, time.Since(start), timeout)
	} else {
		result = inv.settle(name, entry.PluginID, time.Since(start), err)
	}

	if !result.Succeeded() {
		span.SetStatus(codes.Error, result.Message)
	}
	span.SetAttributes(attribute.String("hook.outcome", string(result.Outcome)))
	return result
}

func (inv *Invoker) settle(name Name, pluginID string, elapsed time.Duration, err error) Result {
	result := Result{
		PluginID: pluginID,
		Hook:     name,
		Outcome:  OutcomeSucceeded,
		Duration: elapsed,
	}
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = NewHandlerError(name, pluginID, err)
		result.Message = err.Error()
		inv.logger.With("plugin", pluginID, "hook", string(name)).Warnf("Hook handler failed: %s", result.Message)
		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			inv.logger.With("plugin", pluginID).Debugf("Handler stack:\n%s", panicErr.Stack)
		}
	} else {
		inv.logger.With("plugin", pluginID, "hook", string(name)).Debugf("Hook handler succeeded in %s", elapsed)
	}
	inv.metrics.observeResult(result)
	return result
}

func (inv *Invoker) timeoutResult(name Name, pluginID string, elapsed, timeout time.Duration) Result {
	result := Result{
		PluginID: pluginID,
		Hook:     name,
		Outcome:  OutcomeTimedOut,
		Duration: elapsed,
		Message:  fmt.Sprintf("handler did not settle within %s", timeout),
		Err:      NewTimeoutError(name, pluginID, timeout),
	}
	inv.logger.With("plugin", pluginID, "hook", string(name)).Warnf("Hook handler timed out after %s", timeout)
	inv.metrics.observeResult(result)
	return result
}

// timedOut reports whether a handler result is a timeout: either nothing settled before the
// handler deadline, or the handler gave up with that deadline's error. A canceled parent is a
// failure, not a timeout.
func timedOut(parent, hctx context.Context, expired bool, err error) bool {
	if parent.Err() != nil {
		return false
	}
	if expired {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && errors.Is(hctx.Err(), context.DeadlineExceeded)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
