package output

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/buemura/rock/pkg/types"
)

// Formatter renders a scan report to a writer.
type Formatter interface {
	Format(w io.Writer, report *types.Report) error
}

// Formats lists the supported format names.
var Formats = []string{"table", "json", "markdown", "html"}

// GetFormatter returns the appropriate formatter for the given format string.
func GetFormatter(format string) (Formatter, error) {
	switch format {
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: table, json, markdown, html)", format)
	}
}

// sortedFindings returns the findings most severe first, then by module and URL.
// The report itself is left untouched.
func sortedFindings(r *types.Report) []types.Finding {
	out := slices.Clone(r.Findings)
	slices.SortStableFunc(out, func(a, b types.Finding) int {
		return cmp.Or(
			cmp.Compare(types.SeverityRank(a.Severity), types.SeverityRank(b.Severity)),
			cmp.Compare(a.Module, b.Module),
			cmp.Compare(a.URL, b.URL),
		)
	})
	return out
}

func summary(r *types.Report) string {
	counts := r.CountBySeverity()
	return fmt.Sprintf("%d findings (%d critical, %d high, %d medium, %d low, %d info)",
		len(r.Findings),
		counts[types.SeverityCritical],
		counts[types.SeverityHigh],
		counts[types.SeverityMedium],
		counts[types.SeverityLow],
		counts[types.SeverityInfo],
	)
}
