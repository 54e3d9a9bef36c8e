package probe

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotools/velocheck/internal/schema"
	"github.com/velotools/velocheck/internal/validate"
)

func newTestLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)

	return log
}

// fakeFetcher serves canned payloads per method, with optional per-method
// delays and errors.
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[string]interface{}
	errs     map[string]error
	delays   map[string]time.Duration
	calls    int
}

func (f *fakeFetcher) Fetch(ctx context.Context, method string, _ map[string]string) (interface{}, error) {
	f.mu.Lock()
	f.calls++
	delay := f.delays[method]
	err := f.errs[method]
	payload := f.payloads[method]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err != nil {
		return nil, err
	}

	return payload, nil
}

func itemSchema() *schema.Schema {
	return schema.New("Item", []schema.Field{
		{Name: "id", Spec: schema.Require(schema.TypeNumber)},
	})
}

func goodItem() map[string]interface{} {
	return map[string]interface{}{"id": 1}
}

func registryOf(t *testing.T, names ...string) *Registry {
	t.Helper()

	r := NewRegistry()
	for _, name := range names {
		require.NoError(t, r.Register(Endpoint{
			Name:   name,
			Method: "get/" + name,
			Expect: itemSchema(),
		}))
	}
	require.NoError(t, r.Freeze())

	return r
}

func TestRunnerResultsKeepRegistrationOrderUnderConcurrency(t *testing.T) {
	names := []string{"one", "two", "three", "four", "five"}
	registry := registryOf(t, names...)

	// The first-registered endpoints answer slowest, so completion order is
	// roughly the reverse of registration order.
	fetcher := &fakeFetcher{
		payloads: map[string]interface{}{},
		delays:   map[string]time.Duration{},
	}
	for i, name := range names {
		fetcher.payloads["get/"+name] = goodItem()
		fetcher.delays["get/"+name] = time.Duration(len(names)-i) * 20 * time.Millisecond
	}

	r := NewRunner(newTestLogger(), RunnerConfig{
		Registry:  registry,
		Fetcher:   fetcher,
		Validator: validate.NewValidator(),
		Workers:   len(names),
	})

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, len(names))

	for i, name := range names {
		assert.Equal(t, name, results[i].Endpoint.Name)
		assert.True(t, results[i].Success)
	}
}

func TestRunnerEndpointsAreIndependent(t *testing.T) {
	registry := registryOf(t, "healthy", "unreachable", "drifted")

	fetcher := &fakeFetcher{
		payloads: map[string]interface{}{
			"get/healthy": goodItem(),
			"get/drifted": map[string]interface{}{"id": "seven"},
		},
		errs: map[string]error{
			"get/unreachable": errors.New("connection refused"),
		},
	}

	r := NewRunner(newTestLogger(), RunnerConfig{
		Registry:  registry,
		Fetcher:   fetcher,
		Validator: validate.NewValidator(),
	})

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)

	healthy, unreachable, drifted := results[0], results[1], results[2]

	assert.True(t, healthy.Success)
	assert.Empty(t, healthy.Discrepancies)

	// The unreachable endpoint carries a single synthetic discrepancy at
	// the payload root and did not stop its neighbours from running.
	assert.False(t, unreachable.Success)
	assert.True(t, unreachable.Errored())
	require.Len(t, unreachable.Discrepancies, 1)
	assert.Equal(t, validate.KindFetchFailed, unreachable.Discrepancies[0].Kind)
	assert.Equal(t, "$", unreachable.Discrepancies[0].Path.String())
	assert.Contains(t, unreachable.Discrepancies[0].Actual, "connection refused")
	assert.Nil(t, unreachable.Raw)

	assert.False(t, drifted.Success)
	assert.False(t, drifted.Errored())
	require.Len(t, drifted.Discrepancies, 1)
	assert.Equal(t, validate.KindTypeMismatch, drifted.Discrepancies[0].Kind)
	assert.NotNil(t, drifted.Raw)
}

func TestRunnerSubsetKeepsRegistryOrder(t *testing.T) {
	registry := registryOf(t, "a", "b", "c", "d")

	fetcher := &fakeFetcher{payloads: map[string]interface{}{
		"get/a": goodItem(),
		"get/b": goodItem(),
		"get/c": goodItem(),
		"get/d": goodItem(),
	}}

	r := NewRunner(newTestLogger(), RunnerConfig{
		Registry:  registry,
		Fetcher:   fetcher,
		Validator: validate.NewValidator(),
	})

	// Names are given out of order; results still follow registration order.
	results, err := r.Run(context.Background(), []string{"d", "a", "c"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "a", results[0].Endpoint.Name)
	assert.Equal(t, "c", results[1].Endpoint.Name)
	assert.Equal(t, "d", results[2].Endpoint.Name)
}

func TestRunnerUnknownNameFailsBeforeFetching(t *testing.T) {
	registry := registryOf(t, "a")
	fetcher := &fakeFetcher{payloads: map[string]interface{}{"get/a": goodItem()}}

	r := NewRunner(newTestLogger(), RunnerConfig{
		Registry:  registry,
		Fetcher:   fetcher,
		Validator: validate.NewValidator(),
	})

	_, err := r.Run(context.Background(), []string{"a", "ghost"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownEndpoint)
	assert.Zero(t, fetcher.calls)
}

func TestRunnerListEndpoint(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(Endpoint{
		Name:   "items",
		Method: "get/items",
		Expect: itemSchema(),
		List:   true,
	}))
	require.NoError(t, registry.Freeze())

	fetcher := &fakeFetcher{payloads: map[string]interface{}{
		"get/items": []interface{}{goodItem(), map[string]interface{}{}},
	}}

	r := NewRunner(newTestLogger(), RunnerConfig{
		Registry:  registry,
		Fetcher:   fetcher,
		Validator: validate.NewValidator(),
	})

	results, err := r.RunAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.Len(t, results[0].Discrepancies, 1)
	assert.Equal(t, "1.id", results[0].Discrepancies[0].Path.String())
}

func TestRunnerHonoursContextCancellation(t *testing.T) {
	registry := registryOf(t, "slow")

	fetcher := &fakeFetcher{
		payloads: map[string]interface{}{"get/slow": goodItem()},
		delays:   map[string]time.Duration{"get/slow": 5 * time.Second},
	}

	r := NewRunner(newTestLogger(), RunnerConfig{
		Registry:  registry,
		Fetcher:   fetcher,
		Validator: validate.NewValidator(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	results, err := r.RunAll(ctx)

	// A cancelled fetch surfaces as a fetch failure on the result rather
	// than an aborted run; the runner itself only fails when the whole
	// group is torn down before work completes.
	if err == nil {
		require.Len(t, results, 1)
		assert.True(t, results[0].Errored())
	}
}

func TestSummarize(t *testing.T) {
	ep := Endpoint{Name: "e"}

	results := []Result{
		{Endpoint: ep, Success: true},
		{Endpoint: ep, Success: true},
		{Endpoint: ep, Discrepancies: []validate.Discrepancy{{Kind: validate.KindMissingField}}},
		{Endpoint: ep, Discrepancies: []validate.Discrepancy{{Kind: validate.KindFetchFailed}}},
	}

	s := Summarize(results, 1500*time.Millisecond)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Errored)
	assert.Equal(t, 1500*time.Millisecond, s.Duration)
	assert.False(t, s.Clean())

	assert.True(t, Summarize(nil, 0).Clean())
	assert.True(t, Summarize([]Result{{Success: true}}, time.Second).Clean())
}
