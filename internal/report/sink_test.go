package report

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotools/velocheck/internal/probe"
	"github.com/velotools/velocheck/internal/validate"
)

func newTestLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	log.SetOutput(os.Stderr)

	return log
}

// sampleRun returns one passing, one failing and one errored result, plus
// the summary derived from them.
func sampleRun() ([]probe.Result, probe.Summary) {
	results := []probe.Result{
		{
			Endpoint: probe.Endpoint{Name: "enterprise", Method: "enterprise/getEnterprise"},
			Success:  true,
			Raw:      map[string]interface{}{"id": float64(1)},
			Duration: 120 * time.Millisecond,
		},
		{
			Endpoint: probe.Endpoint{Name: "enterprise_edges", Method: "enterprise/getEnterpriseEdges"},
			Success:  false,
			Discrepancies: []validate.Discrepancy{
				{
					Path:     validate.FieldPath{"0", "logicalId"},
					Kind:     validate.KindMissingField,
					Expected: "uuid",
				},
				{
					Path:     validate.FieldPath{"0", "edgeState"},
					Kind:     validate.KindTypeMismatch,
					Expected: "one of [OFFLINE CONNECTED]",
					Actual:   `string "SLEEPING"`,
				},
			},
			Raw:      []interface{}{map[string]interface{}{"edgeState": "SLEEPING"}},
			Duration: 340 * time.Millisecond,
		},
		{
			Endpoint: probe.Endpoint{Name: "ws_hello", Method: "ws/hello"},
			Success:  false,
			Discrepancies: []validate.Discrepancy{
				{
					Kind:     validate.KindFetchFailed,
					Expected: "payload",
					Actual:   "dialing websocket: connection refused",
				},
			},
			Duration: 2 * time.Second,
		},
	}

	return results, probe.Summarize(results, 3*time.Second)
}

type recordingSink struct {
	calls int
	err   error
}

func (s *recordingSink) Write([]probe.Result, probe.Summary) error {
	s.calls++

	return s.err
}

func TestMultiFansOutToEverySink(t *testing.T) {
	results, summary := sampleRun()

	first := &recordingSink{}
	second := &recordingSink{}

	require.NoError(t, Multi{first, second}.Write(results, summary))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestMultiKeepsGoingPastFailures(t *testing.T) {
	results, summary := sampleRun()

	boom := errors.New("disk full")
	failing := &recordingSink{err: boom}
	last := &recordingSink{}

	err := Multi{failing, last}.Write(results, summary)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, last.calls, "sink after a failing one must still run")
}

func TestStatusOf(t *testing.T) {
	results, _ := sampleRun()

	assert.Equal(t, "pass", statusOf(results[0]))
	assert.Equal(t, "fail", statusOf(results[1]))
	assert.Equal(t, "error", statusOf(results[2]))
}
