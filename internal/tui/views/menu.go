// Package views holds the bubbletea sub-models of the interactive mode.
package views

import (
	"fmt"
	"strings"

	"github.com/buemura/rock/internal/tui/styles"
	tea "github.com/charmbracelet/bubbletea"
)

// CategoryItem is one selectable module category.
type CategoryItem struct {
	Name    string
	Modules []string
}

// MenuModel lists the registered categories.
type MenuModel struct {
	items  []CategoryItem
	cursor int
}

// NewMenuModel creates a menu over items.
func NewMenuModel(items []CategoryItem) MenuModel {
	return MenuModel{items: items}
}

func (m MenuModel) Init() tea.Cmd { return nil }

// Update moves the cursor; q quits.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m MenuModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title("Interactive Mode"))
	b.WriteString("\n\n")
	b.WriteString(styles.HeaderStyle.Render("Select a module category:"))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(styles.ErrorStyle.Render("no modules registered"))
		b.WriteString("\n")
	}
	for i, item := range m.items {
		cursor := "  "
		nameStyle := styles.HelpStyle
		if i == m.cursor {
			cursor = styles.CursorStyle.Render("> ")
			nameStyle = styles.SelectedStyle
		}
		fmt.Fprintf(&b, "%s%s  %s\n",
			cursor,
			nameStyle.Render(item.Name),
			styles.HelpStyle.Render(fmt.Sprintf("%d modules: %s", len(item.Modules), strings.Join(item.Modules, ", "))),
		)
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("up/down navigate • enter select • q quit"))
	return b.String()
}

// Selected returns the highlighted category, or nil when the menu is empty.
func (m MenuModel) Selected() *CategoryItem {
	if len(m.items) == 0 {
		return nil
	}
	return &m.items[m.cursor]
}

func (m MenuModel) Cursor() int { return m.cursor }

func (m MenuModel) Items() []CategoryItem { return m.items }
