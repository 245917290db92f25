package output

import (
	"encoding/json"
	"io"

	"github.com/buemura/rock/pkg/types"
)

// JSONFormatter renders the report as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(w io.Writer, report *types.Report) error {
	out := *report
	out.Findings = sortedFindings(report)
	if out.Findings == nil {
		out.Findings = []types.Finding{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
