// Package styles holds the lipgloss palette shared by the interactive views.
package styles

import (
	"github.com/buemura/rock/pkg/types"
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorCritical = lipgloss.Color("#FF0000")
	ColorHigh     = lipgloss.Color("#FF6600")
	ColorMedium   = lipgloss.Color("#FFCC00")
	ColorLow      = lipgloss.Color("#00CC00")
	ColorInfo     = lipgloss.Color("#0099FF")
	ColorMuted    = lipgloss.Color("#666666")
	ColorAccent   = lipgloss.Color("#2E8B57")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(ColorAccent).
			Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			MarginBottom(1)

	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	CursorStyle   = lipgloss.NewStyle().Foreground(ColorAccent)
	HelpStyle     = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorCritical)
)

var severityStyles = map[types.Severity]lipgloss.Style{
	types.SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(ColorCritical),
	types.SeverityHigh:     lipgloss.NewStyle().Bold(true).Foreground(ColorHigh),
	types.SeverityMedium:   lipgloss.NewStyle().Bold(true).Foreground(ColorMedium),
	types.SeverityLow:      lipgloss.NewStyle().Foreground(ColorLow),
	types.SeverityInfo:     lipgloss.NewStyle().Foreground(ColorInfo),
}

// SeverityStyle returns the style for a severity; unknown values are unstyled.
func SeverityStyle(s types.Severity) lipgloss.Style {
	if style, ok := severityStyles[s]; ok {
		return style
	}
	return lipgloss.NewStyle()
}

// Title renders the banner shown at the top of every view.
func Title(subtitle string) string {
	return TitleStyle.Render("rock - " + subtitle)
}
