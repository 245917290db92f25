package views

import (
	"fmt"
	"strings"

	"github.com/buemura/rock/internal/tui/styles"
	"github.com/buemura/rock/pkg/types"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// TargetModel reads the target URL for the chosen category.
type TargetModel struct {
	textInput textinput.Model
	category  string
	err       string
}

func NewTargetModel() TargetModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. https://example.com/search?q=1"
	ti.Focus()
	ti.CharLimit = 2048
	ti.Width = 60
	ti.PromptStyle = styles.CursorStyle
	ti.TextStyle = styles.SelectedStyle

	return TargetModel{textInput: ti}
}

func (m *TargetModel) SetCategory(name string) { m.category = name }

func (m TargetModel) Category() string { return m.category }

// SetError shows err under the input until the next keystroke.
func (m *TargetModel) SetError(err error) {
	if err != nil {
		m.err = err.Error()
	}
}

func (m TargetModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m TargetModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "enter" {
		if _, err := m.ValidatedTarget(); err != nil {
			m.err = err.Error()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	m.err = ""
	return m, cmd
}

func (m TargetModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title("Interactive Mode"))
	b.WriteString("\n\n")
	b.WriteString(styles.HeaderStyle.Render(fmt.Sprintf("Category: %s", m.category)))
	b.WriteString("\n")
	b.WriteString("Enter target URL:\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n")

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.err))
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("enter scan • esc back"))
	return b.String()
}

// ValidatedTarget returns the normalized target URL.
func (m TargetModel) ValidatedTarget() (string, error) {
	value := strings.TrimSpace(m.textInput.Value())
	if value == "" {
		return "", fmt.Errorf("target is required")
	}
	return types.NormalizeTarget(value)
}

// SetValue replaces the input text.
func (m *TargetModel) SetValue(v string) { m.textInput.SetValue(v) }
