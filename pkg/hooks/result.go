package hooks

import (
	"time"

	goerrors "github.com/agilira/go-errors"
)

// Outcome is the terminal state of one handler execution.
type Outcome string

// Outcomes.
const (
	OutcomeSucceeded Outcome = "SUCCEEDED"
	OutcomeFailed    Outcome = "FAILED"
	OutcomeTimedOut  Outcome = "TIMED_OUT"
)

// Result records what happened when one plugin's handler ran.
type Result struct {
	PluginID string
	Hook     Name
	Outcome  Outcome
	Duration time.Duration
	// Message is empty on success.
	Message string
	// Err is nil on success.
	Err *goerrors.Error
}

// Succeeded reports whether the handler settled successfully.
func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSucceeded
}

// Summary counts results by outcome.
type Summary struct {
	Succeeded int
	Failed    int
	TimedOut  int
}

// Summarize counts results by outcome.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSucceeded:
			s.Succeeded++
		case OutcomeFailed:
			s.Failed++
		case OutcomeTimedOut:
			s.TimedOut++
		}
	}
	return s
}
