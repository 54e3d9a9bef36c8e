package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/velotools/velocheck/internal/probe"
)

// Console renders a run as colored tables for a terminal.
type Console struct {
	log     logrus.FieldLogger
	out     io.Writer
	verbose bool
}

// NewConsole creates a console sink writing to out. Verbose adds the raw
// payload of every failing endpoint to the details section.
func NewConsole(log logrus.FieldLogger, out io.Writer, verbose bool) *Console {
	return &Console{
		log:     log.WithField("component", "report.console"),
		out:     out,
		verbose: verbose,
	}
}

var _ Sink = (*Console)(nil)

func (c *Console) Write(results []probe.Result, summary probe.Summary) error {
	if len(results) == 0 {
		if _, err := fmt.Fprintln(c.out, "No endpoints probed"); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}

		return nil
	}

	var builder strings.Builder

	builder.WriteString(formatResults(results))

	if failed := failingResults(results); len(failed) > 0 {
		builder.WriteString(c.formatFailureDetails(failed))
	}

	builder.WriteString(formatSummary(summary))
	builder.WriteString("\n")

	if _, err := io.WriteString(c.out, builder.String()); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

func failingResults(results []probe.Result) []probe.Result {
	failed := make([]probe.Result, 0)

	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}

	return failed
}

func formatStatus(r probe.Result) string {
	switch {
	case r.Errored():
		return colorWarning("! ERROR")
	case r.Success:
		return colorSuccess("✓ PASS")
	default:
		return colorFailure("✗ FAIL")
	}
}

// formatResults renders the per-endpoint results table.
func formatResults(results []probe.Result) string {
	headers := []string{"Endpoint", "Status", "Discrepancies", "Duration", "Details"}
	rows := make([][]string, 0, len(results))

	for _, r := range results {
		count := fmt.Sprintf("%d", len(r.Discrepancies))
		if r.Success {
			count = colorSuccess(count)
		} else {
			count = colorFailure(count)
		}

		var details string
		if !r.Success && len(r.Discrepancies) > 0 {
			// The table shows only the first disagreement; the details
			// section below carries the rest.
			details = r.Discrepancies[0].String()
			if len(details) > 50 {
				details = details[:47] + "..."
			}

			details = colorMuted(details)
		}

		rows = append(rows, []string{
			r.Endpoint.Name,
			formatStatus(r),
			count,
			formatDuration(r.Duration),
			details,
		})
	}

	return "\n" + colorHeader("▸ Endpoint Results") + "\n\n" + TableString(headers, rows)
}

// formatFailureDetails lists every discrepancy of every failing endpoint.
func (c *Console) formatFailureDetails(failed []probe.Result) string {
	var builder strings.Builder

	builder.WriteString("\n" + colorHeader("▸ Discrepancy Details") + "\n\n")

	for i, r := range failed {
		if i > 0 {
			builder.WriteString("\n")
		}

		builder.WriteString(fmt.Sprintf("%s (%s)\n", colorBold(r.Endpoint.Name), formatDuration(r.Duration)))

		for _, d := range r.Discrepancies {
			builder.WriteString(fmt.Sprintf("  %s %s: %s\n",
				colorFailure("✗"),
				colorBold(d.Path.String()),
				string(d.Kind),
			))

			if d.Expected != "" {
				builder.WriteString(fmt.Sprintf("    %s: %s\n", colorInfo("Expected"), d.Expected))
			}

			if d.Actual != "" {
				builder.WriteString(fmt.Sprintf("    %s: %s\n", colorWarning("Actual"), d.Actual))
			}
		}

		if c.verbose && r.Raw != nil {
			c.writeRawPayload(&builder, r.Raw)
		}
	}

	return builder.String()
}

func (c *Console) writeRawPayload(builder *strings.Builder, raw interface{}) {
	pretty, err := json.MarshalIndent(raw, "  ", "  ")
	if err != nil {
		c.log.WithError(err).Debug("payload not serializable")
		return
	}

	builder.WriteString(fmt.Sprintf("  %s:\n  %s\n", colorInfo("Payload"), pretty))
}

// formatSummary renders the run totals table.
func formatSummary(s probe.Summary) string {
	rate := func(n int) float64 {
		if s.Total == 0 {
			return 0
		}

		return float64(n) / float64(s.Total) * 100.0
	}

	passedValue := fmt.Sprintf("%d (%.1f%%)", s.Passed, rate(s.Passed))
	if s.Passed == s.Total && s.Total > 0 {
		passedValue = colorSuccess(passedValue)
	}

	failedValue := fmt.Sprintf("%d (%.1f%%)", s.Failed, rate(s.Failed))
	if s.Failed > 0 {
		failedValue = colorFailure(failedValue)
	} else {
		failedValue = colorSuccess(failedValue)
	}

	erroredValue := fmt.Sprintf("%d (%.1f%%)", s.Errored, rate(s.Errored))
	if s.Errored > 0 {
		erroredValue = colorWarning(erroredValue)
	} else {
		erroredValue = colorSuccess(erroredValue)
	}

	headers := []string{"Metric", "Value"}
	rows := [][]string{
		{"Endpoints", colorBold(fmt.Sprintf("%d", s.Total))},
		{"Passed", passedValue},
		{"Failed", failedValue},
		{"Errored", erroredValue},
		{"Duration", formatDuration(s.Duration)},
	}

	return "\n" + colorHeader("▸ Summary") + "\n\n" + TableString(headers, rows)
}
