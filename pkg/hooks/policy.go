package hooks

import "time"

// DefaultMaxConcurrency bounds parallel invocations when the policy sets no limit.
const DefaultMaxConcurrency = 4

// Mode selects how the handlers of one hook are scheduled.
type Mode int

// Modes.
const (
	// ModeSequential runs handlers one at a time in registry order.
	ModeSequential Mode = iota
	// ModeParallel starts handlers concurrently and reports results in registry order.
	ModeParallel
)

func (m Mode) String() string {
	if m == ModeParallel {
		return "parallel"
	}
	return "sequential"
}

// Policy configures one invocation.
type Policy struct {
	Mode Mode
	// Timeout applies to each handler. Zero falls back to the invoker default.
	Timeout time.Duration
	// MaxConcurrency bounds ModeParallel. Zero means DefaultMaxConcurrency.
	MaxConcurrency int
}

// Sequential returns a sequential policy.
func Sequential(timeout time.Duration) Policy {
	return Policy{Mode: ModeSequential, Timeout: timeout}
}

// Parallel returns a parallel policy.
func Parallel(timeout time.Duration, maxConcurrency int) Policy {
	return Policy{Mode: ModeParallel, Timeout: timeout, MaxConcurrency: maxConcurrency}
}

func (p Policy) concurrency(handlers int) int {
	n := p.MaxConcurrency
	if n <= 0 {
		n = DefaultMaxConcurrency
	}
	if n > handlers {
		n = handlers
	}
	return n
}
