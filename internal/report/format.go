package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// formatDuration formats a duration for human-readable output. Handles
// microseconds, milliseconds, seconds, and minutes.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.0fµs", float64(d.Microseconds()))
	}

	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d.Milliseconds()))
	}

	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	return fmt.Sprintf("%.1fm", d.Minutes())
}

// TableString renders headers and rows into an aligned table string.
func TableString(headers []string, rows [][]string) string {
	buf := &bytes.Buffer{}

	table := tablewriter.NewWriter(buf)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("│")
	table.SetRowSeparator("─")
	table.SetHeaderLine(true)
	table.SetBorder(true)
	table.SetTablePadding(" ")
	table.SetNoWhiteSpace(false)

	table.AppendBulk(rows)
	table.Render()

	return buf.String()
}

// Color helpers. Colors are enabled only when outputting to a terminal.
var colorEnabled = !color.NoColor

func colorSuccess(text string) string {
	if !colorEnabled {
		return text
	}

	return color.GreenString(text)
}

func colorFailure(text string) string {
	if !colorEnabled {
		return text
	}

	return color.RedString(text)
}

func colorWarning(text string) string {
	if !colorEnabled {
		return text
	}

	return color.YellowString(text)
}

func colorInfo(text string) string {
	if !colorEnabled {
		return text
	}

	return color.CyanString(text)
}

func colorMuted(text string) string {
	if !colorEnabled {
		return text
	}

	return color.New(color.FgHiBlack).Sprint(text)
}

func colorBold(text string) string {
	if !colorEnabled {
		return text
	}

	return color.New(color.Bold).Sprint(text)
}

func colorHeader(text string) string {
	if !colorEnabled {
		return text
	}

	return color.New(color.FgCyan, color.Bold).Sprint(text)
}
