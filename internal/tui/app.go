package tui

import (
	"fmt"

	"github.com/buemura/rock/internal/config"
	"github.com/buemura/rock/internal/scan"
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive mode and blocks until the user quits.
func Run(reg *scan.Registry, cfg config.Config, opts ...scan.Option) error {
	p := tea.NewProgram(NewModel(reg, cfg, opts...), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
