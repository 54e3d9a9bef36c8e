package probe

import "time"

// Summary aggregates one run. It is always derived from the results with
// Summarize, never stored or updated incrementally, so the counts cannot
// drift from the result list they describe.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Errored int

	// Duration is the wall-clock time of the whole run, not the sum of
	// per-endpoint durations.
	Duration time.Duration
}

// Summarize folds results into run totals. Passed, Failed and Errored are
// disjoint: an endpoint whose fetch failed counts as errored, not failed.
func Summarize(results []Result, elapsed time.Duration) Summary {
	s := Summary{
		Total:    len(results),
		Duration: elapsed,
	}

	for _, r := range results {
		switch {
		case r.Errored():
			s.Errored++
		case r.Success:
			s.Passed++
		default:
			s.Failed++
		}
	}

	return s
}

// Clean reports whether every endpoint passed.
func (s Summary) Clean() bool {
	return s.Failed == 0 && s.Errored == 0
}
