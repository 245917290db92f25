package output

import (
	"fmt"
	"io"
	"time"

	"github.com/buemura/rock/pkg/types"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter renders the report as colored terminal tables.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, report *types.Report) error {
	fmt.Fprintf(w, "\n[%s] %s: %d modules x %d URLs in %s\n",
		report.Category, report.Target, len(report.Modules), len(report.URLs), report.Duration().Round(time.Millisecond))

	if len(report.Findings) == 0 {
		fmt.Fprintln(w, "  No findings.")
	} else {
		table := newTable(w, []string{"Severity", "Module", "URL", "Title"})
		for _, finding := range sortedFindings(report) {
			table.Append([]string{colorSeverity(finding.Severity), finding.Module, finding.URL, finding.Title})
		}
		table.Render()
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\n%s\n", color.RedString("%d tasks failed", len(report.Failures)))
		table := newTable(w, []string{"Module", "URL", "Stage", "Cause"})
		for _, failure := range report.Failures {
			table.Append([]string{failure.Module, failure.URL, string(failure.Stage), failure.Cause})
		}
		table.Render()
	}

	fmt.Fprintf(w, "  Summary: %s\n", summary(report))
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")
	return table
}

func colorSeverity(s types.Severity) string {
	switch s {
	case types.SeverityCritical:
		return color.RedString("CRITICAL")
	case types.SeverityHigh:
		return color.RedString("HIGH")
	case types.SeverityMedium:
		return color.YellowString("MEDIUM")
	case types.SeverityLow:
		return color.CyanString("LOW")
	case types.SeverityInfo:
		return color.WhiteString("INFO")
	default:
		return string(s)
	}
}
