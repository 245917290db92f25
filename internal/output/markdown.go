package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/buemura/rock/pkg/types"
)

// MarkdownFormatter renders the report as Markdown suitable for issues or
// pull-request descriptions.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, report *types.Report) error {
	fmt.Fprintf(w, "# Scan report: %s\n\n", escapeMarkdown(report.Target))
	fmt.Fprintf(w, "- Run: `%s`\n- Category: %s\n- Modules: %s\n- URLs scanned: %d\n\n",
		report.ID, report.Category, strings.Join(report.Modules, ", "), len(report.URLs))

	fmt.Fprintln(w, "## Findings")
	fmt.Fprintln(w)
	if len(report.Findings) == 0 {
		fmt.Fprintln(w, "_No findings._")
	} else {
		fmt.Fprintln(w, "| Severity | Module | URL | Title |")
		fmt.Fprintln(w, "|----------|--------|-----|-------|")
		for _, finding := range sortedFindings(report) {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				severityBadge(finding.Severity),
				escapeMarkdown(finding.Module),
				escapeMarkdown(finding.URL),
				escapeMarkdown(finding.Title))
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "## Failed tasks")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "| Module | URL | Stage | Cause |")
		fmt.Fprintln(w, "|--------|-----|-------|-------|")
		for _, failure := range report.Failures {
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				escapeMarkdown(failure.Module),
				escapeMarkdown(failure.URL),
				failure.Stage,
				escapeMarkdown(failure.Cause))
		}
	}

	fmt.Fprintf(w, "\n**Summary:** %s\n", summary(report))
	return nil
}

// severityBadge returns a bold, uppercased severity label for Markdown.
func severityBadge(s types.Severity) string {
	return fmt.Sprintf("**%s**", string(s))
}

// escapeMarkdown escapes pipe characters that would break Markdown tables.
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
