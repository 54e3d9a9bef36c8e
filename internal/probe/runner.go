package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/velotools/velocheck/internal/validate"
)

const defaultWorkers = 4

// Result is the outcome of probing one endpoint.
type Result struct {
	Endpoint Endpoint

	// Success is true when the payload was fetched and produced no
	// discrepancies.
	Success bool

	// Discrepancies lists everything that disagreed with the schema, in
	// deterministic traversal order. A fetch failure appears as a single
	// synthetic discrepancy at the payload root.
	Discrepancies []validate.Discrepancy

	// Raw is the decoded payload, kept so sinks can show what the API
	// actually returned. Nil when the fetch failed.
	Raw interface{}

	Duration time.Duration
}

// Errored reports whether the endpoint payload could not be fetched at all.
func (r Result) Errored() bool {
	for _, d := range r.Discrepancies {
		if d.Kind == validate.KindFetchFailed {
			return true
		}
	}

	return false
}

// Runner probes endpoints and validates their payloads. Endpoints are
// independent: one failure never suppresses another endpoint's result.
type Runner interface {
	// RunAll probes every registered endpoint.
	RunAll(ctx context.Context) ([]Result, error)

	// Run probes the named endpoints, or all of them when names is empty.
	// Results always come back in registration order, no matter how the
	// probes interleave.
	Run(ctx context.Context, names []string) ([]Result, error)
}

type runner struct {
	registry  *Registry
	fetcher   Fetcher
	validator validate.Validator
	workers   int
	timeout   time.Duration
	log       logrus.FieldLogger
}

// RunnerConfig wires a runner's collaborators and limits.
type RunnerConfig struct {
	Registry  *Registry
	Fetcher   Fetcher
	Validator validate.Validator

	// Workers caps concurrent probes. Zero means defaultWorkers.
	Workers int

	// Timeout bounds one fetch. Zero means no per-fetch deadline beyond
	// whatever the fetcher applies itself.
	Timeout time.Duration
}

// NewRunner creates an endpoint runner.
func NewRunner(log logrus.FieldLogger, cfg RunnerConfig) Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &runner{
		registry:  cfg.Registry,
		fetcher:   cfg.Fetcher,
		validator: cfg.Validator,
		workers:   workers,
		timeout:   cfg.Timeout,
		log:       log.WithField("component", "probe_runner"),
	}
}

var _ Runner = (*runner)(nil)

func (r *runner) RunAll(ctx context.Context) ([]Result, error) {
	return r.Run(ctx, nil)
}

// Run executes the probes with a worker pool. Each worker writes its result
// to its own slice index, which is what keeps output order equal to
// registration order without any sorting.
func (r *runner) Run(ctx context.Context, names []string) ([]Result, error) {
	endpoints, err := r.resolve(names)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"endpoints": len(endpoints),
		"workers":   r.workers,
	}).Info("starting endpoint probes")

	results := make([]Result, len(endpoints))
	g, gCtx := errgroup.WithContext(ctx)

	sem := make(chan struct{}, r.workers)
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gCtx.Done():
				return gCtx.Err()
			}

			results[i] = r.probe(gCtx, ep)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probe run interrupted: %w", err)
	}

	return results, nil
}

// resolve maps names to endpoints. A subset keeps registration order
// regardless of the order names were given in; an unknown name fails the
// whole run before any fetch happens.
func (r *runner) resolve(names []string) ([]Endpoint, error) {
	if len(names) == 0 {
		return r.registry.Endpoints(), nil
	}

	want := make(map[string]bool, len(names))

	for _, name := range names {
		if _, err := r.registry.Get(name); err != nil {
			return nil, err
		}

		want[name] = true
	}

	var endpoints []Endpoint

	for _, ep := range r.registry.Endpoints() {
		if want[ep.Name] {
			endpoints = append(endpoints, ep)
		}
	}

	return endpoints, nil
}

// probe fetches and validates a single endpoint. It never returns an error:
// a failed fetch becomes a result carrying a fetch_failed discrepancy so the
// rest of the run is unaffected.
func (r *runner) probe(ctx context.Context, ep Endpoint) Result {
	log := r.log.WithField("endpoint", ep.Name)
	start := time.Now()

	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	payload, err := r.fetcher.Fetch(ctx, ep.Method, ep.Params)
	if err != nil {
		log.WithError(err).Warn("fetch failed")

		return Result{
			Endpoint: ep,
			Duration: time.Since(start),
			Discrepancies: []validate.Discrepancy{{
				Kind:     validate.KindFetchFailed,
				Expected: "payload",
				Actual:   err.Error(),
			}},
		}
	}

	var discrepancies []validate.Discrepancy
	if ep.List {
		discrepancies = r.validator.ValidateList(ep.Expect, payload)
	} else {
		discrepancies = r.validator.Validate(ep.Expect, payload)
	}

	result := Result{
		Endpoint:      ep,
		Success:       len(discrepancies) == 0,
		Discrepancies: discrepancies,
		Raw:           payload,
		Duration:      time.Since(start),
	}

	log.WithFields(logrus.Fields{
		"success":       result.Success,
		"discrepancies": len(discrepancies),
		"duration":      result.Duration,
	}).Debug("endpoint probed")

	return result
}
