package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/velotools/velocheck/internal/probe"
)

// jsonReport is the wire shape of a machine-readable run report.
type jsonReport struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Summary     jsonSummary  `json:"summary"`
	Results     []jsonResult `json:"results"`
}

type jsonSummary struct {
	Total      int   `json:"total"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	Errored    int   `json:"errored"`
	DurationMS int64 `json:"duration_ms"`
}

type jsonResult struct {
	Endpoint      string            `json:"endpoint"`
	Method        string            `json:"method"`
	Status        string            `json:"status"`
	DurationMS    int64             `json:"duration_ms"`
	Discrepancies []jsonDiscrepancy `json:"discrepancies,omitempty"`

	// Raw carries the payload of failing endpoints only, so a clean run
	// stays small.
	Raw interface{} `json:"raw,omitempty"`
}

type jsonDiscrepancy struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// JSON writes a machine-readable report to an io.Writer.
type JSON struct {
	log logrus.FieldLogger
	out io.Writer
}

// NewJSON creates a JSON sink writing to out.
func NewJSON(log logrus.FieldLogger, out io.Writer) *JSON {
	return &JSON{
		log: log.WithField("component", "report.json"),
		out: out,
	}
}

var _ Sink = (*JSON)(nil)

func (j *JSON) Write(results []probe.Result, summary probe.Summary) error {
	doc := jsonReport{
		GeneratedAt: time.Now().UTC(),
		Summary: jsonSummary{
			Total:      summary.Total,
			Passed:     summary.Passed,
			Failed:     summary.Failed,
			Errored:    summary.Errored,
			DurationMS: summary.Duration.Milliseconds(),
		},
		Results: make([]jsonResult, 0, len(results)),
	}

	for _, r := range results {
		jr := jsonResult{
			Endpoint:   r.Endpoint.Name,
			Method:     r.Endpoint.Method,
			Status:     statusOf(r),
			DurationMS: r.Duration.Milliseconds(),
		}

		for _, d := range r.Discrepancies {
			jr.Discrepancies = append(jr.Discrepancies, jsonDiscrepancy{
				Path:     d.Path.String(),
				Kind:     string(d.Kind),
				Expected: d.Expected,
				Actual:   d.Actual,
			})
		}

		if !r.Success {
			jr.Raw = r.Raw
		}

		doc.Results = append(doc.Results, jr)
	}

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return nil
}
