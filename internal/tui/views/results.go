package views

import (
	"cmp"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/buemura/rock/internal/output"
	"github.com/buemura/rock/internal/tui/styles"
	"github.com/buemura/rock/pkg/types"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultExportPath is where e writes the JSON report.
const DefaultExportPath = "rock-report.json"

// ResultsModel is a scrollable list of a report's findings.
type ResultsModel struct {
	report     *types.Report
	findings   []types.Finding
	cursor     int
	offset     int
	maxRows    int
	exportPath string
	exported   bool
	exportErr  string
}

// NewResultsModel shows report with the most severe findings first.
func NewResultsModel(report *types.Report) ResultsModel {
	if report == nil {
		report = &types.Report{}
	}
	findings := slices.Clone(report.Findings)
	slices.SortStableFunc(findings, func(a, b types.Finding) int {
		return cmp.Or(
			cmp.Compare(types.SeverityRank(a.Severity), types.SeverityRank(b.Severity)),
			cmp.Compare(a.Module, b.Module),
		)
	})
	return ResultsModel{
		report:     report,
		findings:   findings,
		maxRows:    15,
		exportPath: DefaultExportPath,
	}
}

// SetExportPath changes the file written by e.
func (m *ResultsModel) SetExportPath(path string) { m.exportPath = path }

func (m ResultsModel) Init() tea.Cmd { return nil }

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.findings)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.maxRows {
					m.offset = m.cursor - m.maxRows + 1
				}
			}
		case "e":
			m.export()
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ResultsModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title("Scan Results"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s  %d modules x %d URLs in %s\n\n",
		m.report.Target, len(m.report.Modules), len(m.report.URLs), m.report.Duration().Round(time.Millisecond))

	if len(m.findings) == 0 {
		b.WriteString("No findings discovered.\n")
	} else {
		b.WriteString(m.summaryLine())
		b.WriteString("\n\n")
		b.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("  %-10s %-50s %s", "SEVERITY", "TITLE", "MODULE")))
		b.WriteString("\n")

		end := min(m.offset+m.maxRows, len(m.findings))
		for i := m.offset; i < end; i++ {
			f := m.findings[i]
			cursor := "  "
			if i == m.cursor {
				cursor = styles.CursorStyle.Render("> ")
			}
			severity := styles.SeverityStyle(f.Severity).Render(fmt.Sprintf("%-10s", f.Severity))
			fmt.Fprintf(&b, "%s%s %-50s %s\n", cursor, severity, truncate(f.Title, 50), styles.HelpStyle.Render(f.Module))
		}
		if len(m.findings) > m.maxRows {
			fmt.Fprintf(&b, "\n  Showing %d-%d of %d findings\n", m.offset+1, end, len(m.findings))
		}
		b.WriteString("\n")
		b.WriteString(m.detailView(m.findings[m.cursor]))
		b.WriteString("\n")
	}

	if n := len(m.report.Failures); n > 0 {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("%d tasks failed", n)))
		b.WriteString("\n")
	}
	if m.exported {
		b.WriteString("\n")
		b.WriteString(styles.SelectedStyle.Render("Report exported to " + m.exportPath))
	}
	if m.exportErr != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.exportErr))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("up/down scroll • e export JSON • esc back • q quit"))
	return b.String()
}

func (m ResultsModel) summaryLine() string {
	counts := m.report.CountBySeverity()
	var parts []string
	for _, sev := range []types.Severity{
		types.SeverityCritical, types.SeverityHigh,
		types.SeverityMedium, types.SeverityLow, types.SeverityInfo,
	} {
		if c := counts[sev]; c > 0 {
			parts = append(parts, styles.SeverityStyle(sev).Render(fmt.Sprintf("%s: %d", sev, c)))
		}
	}
	return fmt.Sprintf("Total: %d findings  [%s]", len(m.findings), strings.Join(parts, "  "))
}

func (m ResultsModel) detailView(f types.Finding) string {
	lines := []string{
		"Title: " + f.Title,
		"Severity: " + string(f.Severity),
		"URL: " + f.URL,
	}
	if f.Description != "" {
		lines = append(lines, "Description: "+f.Description)
	}
	if f.Evidence != "" {
		lines = append(lines, "Evidence: "+f.Evidence)
	}
	if f.Remediation != "" {
		lines = append(lines, "Remediation: "+f.Remediation)
	}
	return styles.BorderStyle.Render(strings.Join(lines, "\n"))
}

func (m *ResultsModel) export() {
	file, err := os.Create(m.exportPath)
	if err != nil {
		m.exportErr = fmt.Sprintf("export failed: %v", err)
		return
	}
	defer file.Close()

	if err := (&output.JSONFormatter{}).Format(file, m.report); err != nil {
		m.exportErr = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.exported = true
	m.exportErr = ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
