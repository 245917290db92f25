// Package tui is the interactive terminal front end: pick a category, enter
// a target, watch the scan, browse the report.
package tui

import (
	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	"github.com/buemura/rock/internal/tui/views"
	tea "github.com/charmbracelet/bubbletea"
)

type appState int

const (
	stateMenu appState = iota
	stateTarget
	stateScan
	stateResults
)

// Model is the root bubbletea model. It owns the view transitions and builds
// one executor per scan from the base configuration.
type Model struct {
	state    appState
	registry *scan.Registry
	cfg      config.Config
	opts     []scan.Option
	width    int
	height   int

	menu    views.MenuModel
	target  views.TargetModel
	scan    views.ScanModel
	results views.ResultsModel
}

// NewModel lists every category of reg. Each scan copies cfg and replaces
// its target.
func NewModel(reg *scan.Registry, cfg config.Config, opts ...scan.Option) Model {
	excluded := cfg.GetExcludedModules()
	var items []views.CategoryItem
	for _, c := range reg.Categories() {
		ds, err := reg.Discover(c, excluded)
		if err != nil || len(ds) == 0 {
			continue
		}
		items = append(items, views.CategoryItem{Name: string(c), Modules: scan.Names(ds)})
	}

	return Model{
		state:    stateMenu,
		registry: reg,
		cfg:      cfg,
		opts:     opts,
		menu:     views.NewMenuModel(items),
		target:   views.NewTargetModel(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.target.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.scan.Cancel()
			return m, tea.Quit
		case "esc":
			return m.handleBack()
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	switch m.state {
	case stateMenu:
		return m.updateMenu(msg)
	case stateTarget:
		return m.updateTarget(msg)
	case stateScan:
		return m.updateScan(msg)
	case stateResults:
		return m.updateResults(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateMenu:
		return m.menu.View()
	case stateTarget:
		return m.target.View()
	case stateScan:
		return m.scan.View()
	case stateResults:
		return m.results.View()
	}
	return ""
}

func (m Model) handleBack() (tea.Model, tea.Cmd) {
	switch m.state {
	case stateTarget, stateResults:
		m.state = stateMenu
	case stateScan:
		m.scan.Cancel()
		m.state = stateTarget
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		if selected := m.menu.Selected(); selected != nil {
			m.target = views.NewTargetModel()
			m.target.SetCategory(selected.Name)
			m.state = stateTarget
			return m, m.target.Init()
		}
	}

	updated, cmd := m.menu.Update(msg)
	m.menu = updated.(views.MenuModel)
	return m, cmd
}

func (m Model) updateTarget(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		target, err := m.target.ValidatedTarget()
		if err == nil {
			cfg := m.cfg
			cfg.Target = target
			category := m.target.Category()
			exec, err := scan.NewExecutor(&cfg, m.registry, scan.Category(category), m.opts...)
			if err != nil {
				m.target.SetError(err)
				return m, nil
			}
			m.scan = views.NewScanModel(exec, category, target, len(exec.Modules()))
			m.state = stateScan
			return m, m.scan.Init()
		}
	}

	updated, cmd := m.target.Update(msg)
	m.target = updated.(views.TargetModel)
	return m, cmd
}

func (m Model) updateScan(msg tea.Msg) (tea.Model, tea.Cmd) {
	if done, ok := msg.(views.ScanCompleteMsg); ok {
		m.results = views.NewResultsModel(done.Report)
		m.state = stateResults
		return m, nil
	}

	updated, cmd := m.scan.Update(msg)
	m.scan = updated.(views.ScanModel)
	return m, cmd
}

func (m Model) updateResults(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.results.Update(msg)
	m.results = updated.(views.ResultsModel)
	return m, cmd
}
