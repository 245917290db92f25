package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/buemura/rock/internal/tui/styles"
	"github.com/buemura/rock/pkg/types"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Runner executes one scan. *scan.Executor satisfies it.
type Runner interface {
	Start(ctx context.Context) (*types.Report, error)
}

// ScanCompleteMsg carries the report of a finished scan.
type ScanCompleteMsg struct {
	Report *types.Report
}

// ScanErrorMsg reports a scan that failed before producing a report.
type ScanErrorMsg struct {
	Err error
}

// ScanModel shows a spinner while the runner works.
type ScanModel struct {
	spinner  spinner.Model
	runner   Runner
	target   string
	category string
	modules  int
	ctx      context.Context
	cancel   context.CancelFunc
	err      string
}

// NewScanModel prepares a scan of target. The scan starts in Init and is
// stopped by Cancel.
func NewScanModel(r Runner, category, target string, modules int) ScanModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.ColorAccent)

	ctx, cancel := context.WithCancel(context.Background())
	return ScanModel{
		spinner:  sp,
		runner:   r,
		target:   target,
		category: category,
		modules:  modules,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runScan())
}

func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ScanErrorMsg:
		m.err = msg.Err.Error()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ScanModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title("Interactive Mode"))
	b.WriteString("\n\n")

	if m.err != "" {
		b.WriteString(styles.ErrorStyle.Render("Scan failed: " + m.err))
		b.WriteString("\n")
		b.WriteString(styles.HelpStyle.Render("esc back • ctrl+c quit"))
		return b.String()
	}

	fmt.Fprintf(&b, "%s Running %s modules (%s)...\n",
		m.spinner.View(), styles.SelectedStyle.Render(fmt.Sprint(m.modules)), m.category)
	fmt.Fprintf(&b, "  Target: %s\n", m.target)
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("esc cancel • ctrl+c quit"))
	return b.String()
}

// Failed reports whether the scan ended with an error.
func (m ScanModel) Failed() bool { return m.err != "" }

// Cancel stops a running scan. It is safe to call more than once.
func (m ScanModel) Cancel() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m ScanModel) runScan() tea.Cmd {
	r, ctx, cancel := m.runner, m.ctx, m.cancel
	return func() tea.Msg {
		defer cancel()
		report, err := r.Start(ctx)
		if err != nil {
			return ScanErrorMsg{Err: err}
		}
		return ScanCompleteMsg{Report: report}
	}
}
