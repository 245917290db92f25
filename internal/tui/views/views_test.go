package views

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/buemura/rock/pkg/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestMenuModelNavigation(t *testing.T) {
	m := NewMenuModel([]CategoryItem{
		{Name: "api", Modules: []string{"ratelimit"}},
		{Name: "general", Modules: []string{"headers", "xss"}},
	})
	assert.Equal(t, 0, m.Cursor())

	updated, _ := m.Update(runes("k"))
	m = updated.(MenuModel)
	assert.Equal(t, 0, m.Cursor())

	for range 3 {
		updated, _ = m.Update(runes("j"))
		m = updated.(MenuModel)
	}
	assert.Equal(t, 1, m.Cursor())
	assert.Equal(t, "general", m.Selected().Name)
}

func TestMenuModelView(t *testing.T) {
	view := NewMenuModel([]CategoryItem{{Name: "general", Modules: []string{"headers", "xss"}}}).View()
	assert.Contains(t, view, "general")
	assert.Contains(t, view, "2 modules: headers, xss")
}

func TestMenuModelEmpty(t *testing.T) {
	m := NewMenuModel(nil)
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "no modules registered")

	_, cmd := m.Update(runes("q"))
	assert.NotNil(t, cmd)
}

func TestTargetModel(t *testing.T) {
	m := NewTargetModel()
	m.SetCategory("general")
	assert.Equal(t, "general", m.Category())
	assert.NotNil(t, m.Init())

	_, err := m.ValidatedTarget()
	assert.Error(t, err)

	m.SetValue("example.com")
	target, err := m.ValidatedTarget()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)

	view := m.View()
	assert.Contains(t, view, "Category: general")
	assert.Contains(t, view, "esc back")
}

func TestTargetModelSetError(t *testing.T) {
	m := NewTargetModel()
	m.SetError(errors.New("unknown category"))
	assert.Contains(t, m.View(), "unknown category")
}

type runnerFunc func(ctx context.Context) (*types.Report, error)

func (f runnerFunc) Start(ctx context.Context) (*types.Report, error) { return f(ctx) }

func TestScanModelRunsRunner(t *testing.T) {
	report := &types.Report{Target: "https://example.com"}
	m := NewScanModel(runnerFunc(func(ctx context.Context) (*types.Report, error) {
		return report, nil
	}), "general", "https://example.com", 3)

	assert.Contains(t, m.View(), "Running")
	assert.Contains(t, m.View(), "https://example.com")

	msg := m.runScan()()
	assert.Equal(t, ScanCompleteMsg{Report: report}, msg)
}

func TestScanModelCancel(t *testing.T) {
	m := NewScanModel(runnerFunc(func(ctx context.Context) (*types.Report, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), "general", "https://example.com", 1)

	cmd := m.runScan()
	m.Cancel()
	m.Cancel()

	msg, ok := cmd().(ScanErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, context.Canceled)

	updated, _ := m.Update(msg)
	m = updated.(ScanModel)
	assert.True(t, m.Failed())
	assert.Contains(t, m.View(), "Scan failed")
}

func sampleReport() *types.Report {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &types.Report{
		ID:      "r1",
		Target:  "https://example.com",
		Modules: []string{"headers", "xss"},
		URLs:    []string{"https://example.com"},
		Findings: []types.Finding{
			{Module: "headers", URL: "https://example.com", Title: "Missing headers", Severity: types.SeverityLow},
			{Module: "xss", URL: "https://example.com/?q=1", Title: "Reflected cross-site scripting", Severity: types.SeverityHigh, Evidence: "q"},
		},
		Failures:    []types.TaskFailure{{Module: "cors", URL: "https://example.com", Stage: types.StageRun, Cause: "boom"}},
		StartedAt:   start,
		CompletedAt: start.Add(1500 * time.Millisecond),
	}
}

func TestResultsModelView(t *testing.T) {
	m := NewResultsModel(sampleReport())
	view := m.View()

	assert.Contains(t, view, "Scan Results")
	assert.Contains(t, view, "2 modules x 1 URLs in 1.5s")
	assert.Contains(t, view, "Total: 2 findings")
	assert.Contains(t, view, "1 tasks failed")
	// Most severe first, so the detail box shows the xss finding.
	assert.Equal(t, "xss", m.findings[0].Module)
	assert.Contains(t, view, "Evidence: q")
}

func TestResultsModelNavigate(t *testing.T) {
	m := NewResultsModel(sampleReport())

	updated, _ := m.Update(runes("j"))
	m = updated.(ResultsModel)
	assert.Equal(t, 1, m.cursor)

	updated, _ = m.Update(runes("j"))
	m = updated.(ResultsModel)
	assert.Equal(t, 1, m.cursor)

	updated, _ = m.Update(runes("k"))
	m = updated.(ResultsModel)
	assert.Equal(t, 0, m.cursor)
}

func TestResultsModelScrolls(t *testing.T) {
	report := &types.Report{}
	for i := range 30 {
		report.Findings = append(report.Findings, types.Finding{Title: fmt.Sprintf("f%d", i), Severity: types.SeverityInfo})
	}
	m := NewResultsModel(report)
	for range 20 {
		updated, _ := m.Update(runes("j"))
		m = updated.(ResultsModel)
	}
	assert.Equal(t, 20, m.cursor)
	assert.Equal(t, 6, m.offset)
	assert.Contains(t, m.View(), "Showing 7-21 of 30 findings")
}

func TestResultsModelEmpty(t *testing.T) {
	m := NewResultsModel(nil)
	assert.Contains(t, m.View(), "No findings discovered")
}

func TestResultsModelExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	m := NewResultsModel(sampleReport())
	m.SetExportPath(path)

	updated, _ := m.Update(runes("e"))
	m = updated.(ResultsModel)
	assert.Contains(t, m.View(), "Report exported to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got types.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "r1", got.ID)
	assert.Len(t, got.Findings, 2)
}

func TestResultsModelExportError(t *testing.T) {
	m := NewResultsModel(sampleReport())
	m.SetExportPath(filepath.Join(t.TempDir(), "missing", "report.json"))

	updated, _ := m.Update(runes("e"))
	assert.Contains(t, updated.(ResultsModel).View(), "export failed")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
