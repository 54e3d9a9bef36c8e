// Package report renders and persists finished probe runs.
package report

import (
	"github.com/velotools/velocheck/internal/probe"
)

// Sink consumes one finished run. Sinks never mutate the results they are
// handed, so one run can safely fan out to several of them.
type Sink interface {
	Write(results []probe.Result, summary probe.Summary) error
}

// Multi fans one run out to several sinks. Later sinks still run when an
// earlier one fails; the first error is what comes back.
type Multi []Sink

var _ Sink = (Multi)(nil)

func (m Multi) Write(results []probe.Result, summary probe.Summary) error {
	var firstErr error

	for _, s := range m {
		if err := s.Write(results, summary); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// statusOf names a result state for the machine-readable sinks.
func statusOf(r probe.Result) string {
	switch {
	case r.Errored():
		return "error"
	case r.Success:
		return "pass"
	default:
		return "fail"
	}
}
