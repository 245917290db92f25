package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/buemura/rock/pkg/types"
)

// HTMLFormatter renders the report as a self-contained HTML page with
// styled severity badges and expandable finding details.
type HTMLFormatter struct{}

func (f *HTMLFormatter) Format(w io.Writer, report *types.Report) error {
	return htmlTpl.Execute(w, templateData{
		Report:   report,
		Findings: sortedFindings(report),
		Counts:   report.CountBySeverity(),
	})
}

type templateData struct {
	Report   *types.Report
	Findings []types.Finding
	Counts   map[types.Severity]int
}

// severityClass maps a Severity to a CSS class name.
func severityClass(s types.Severity) string {
	switch s {
	case types.SeverityCritical:
		return "critical"
	case types.SeverityHigh:
		return "high"
	case types.SeverityMedium:
		return "medium"
	case types.SeverityLow:
		return "low"
	default:
		return "info"
	}
}

var funcMap = template.FuncMap{
	"severityClass": severityClass,
	"count": func(counts map[types.Severity]int, sev string) int {
		return counts[types.Severity(sev)]
	},
}

var htmlTpl = template.Must(template.New("report").Funcs(funcMap).Parse(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Rock Scan Report - {{.Report.Target}}</title>
<style>%s</style>
</head>
<body>
<div class="container">
  <h1>Rock Scan Report</h1>
  <p class="meta">{{.Report.Target}} &middot; {{.Report.Category}} &middot; run {{.Report.ID}} &middot; {{len .Report.URLs}} URLs &middot; {{len .Report.Modules}} modules</p>

  <div class="summary-bar">
    <span class="badge critical">{{count .Counts "CRITICAL"}} Critical</span>
    <span class="badge high">{{count .Counts "HIGH"}} High</span>
    <span class="badge medium">{{count .Counts "MEDIUM"}} Medium</span>
    <span class="badge low">{{count .Counts "LOW"}} Low</span>
    <span class="badge info">{{count .Counts "INFO"}} Info</span>
    <span class="total">{{len .Findings}} total findings</span>
  </div>

  <section class="scanner-section">
    <h2>Findings</h2>
    {{if not .Findings}}
      <p class="no-findings">No findings.</p>
    {{else}}
      <table>
        <thead>
          <tr><th>Severity</th><th>Module</th><th>URL</th><th>Title</th></tr>
        </thead>
        <tbody>
          {{range .Findings}}
          <tr>
            <td><span class="badge {{severityClass .Severity}}">{{.Severity}}</span></td>
            <td>{{.Module}}</td>
            <td><code>{{.URL}}</code></td>
            <td>
              {{.Title}}
              {{if or .Description .Evidence .Remediation}}
              <details>
                <summary>Details</summary>
                {{if .Description}}<p>{{.Description}}</p>{{end}}
                {{if .Evidence}}<p><strong>Evidence:</strong> {{.Evidence}}</p>{{end}}
                {{if .Remediation}}<p><strong>Remediation:</strong> {{.Remediation}}</p>{{end}}
              </details>
              {{end}}
            </td>
          </tr>
          {{end}}
        </tbody>
      </table>
    {{end}}
  </section>

  {{with .Report.Failures}}
  <section class="scanner-section">
    <h2>Failed tasks</h2>
    {{range .}}
    <div class="error-box"><strong>{{.Module}}</strong> on <code>{{.URL}}</code> ({{.Stage}}): {{.Cause}}</div>
    {{end}}
  </section>
  {{end}}
</div>
</body>
</html>`, cssStyles)))

const cssStyles = `
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,Helvetica,Arial,sans-serif;
     line-height:1.6;color:#1a1a2e;background:#f5f5fa;padding:2rem}
.container{max-width:960px;margin:0 auto}
h1{margin-bottom:.25rem;font-size:1.8rem}
.meta{color:#666;margin-bottom:1rem}
code{font-size:.85rem;word-break:break-all}
h2{margin:1.5rem 0 .75rem;font-size:1.3rem;border-bottom:2px solid #e0e0e0;padding-bottom:.3rem}
.summary-bar{display:flex;gap:.5rem;flex-wrap:wrap;align-items:center;margin-bottom:1.5rem}
.total{margin-left:.5rem;font-weight:600}
.badge{display:inline-block;padding:2px 10px;border-radius:12px;font-size:.8rem;font-weight:700;color:#fff;text-transform:uppercase}
.badge.critical{background:#d32f2f}
.badge.high{background:#e53935}
.badge.medium{background:#f9a825;color:#333}
.badge.low{background:#0288d1}
.badge.info{background:#757575}
table{width:100%;border-collapse:collapse;margin-bottom:1rem}
th,td{text-align:left;padding:.5rem .75rem;border-bottom:1px solid #e0e0e0}
th{background:#eaeaea;font-weight:600}
tr:hover{background:#f0f0ff}
details{margin-top:.4rem}
summary{cursor:pointer;color:#1565c0;font-size:.85rem}
.error-box{background:#ffebee;color:#c62828;padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}
.no-findings{color:#666;font-style:italic}
.scanner-section{margin-bottom:2rem}
`
