package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// menuItem is one entry of the main menu. An empty table means Exit.
type menuItem struct {
	title string
	table string
}

// MainMenuModel lists every table plus Exit.
type MainMenuModel struct {
	items  []menuItem
	cursor int
}

// NewMainMenuModel creates the main menu for schemas, in order.
func NewMainMenuModel(schemas []*types.EntitySchema) *MainMenuModel {
	items := make([]menuItem, 0, len(schemas)+1)
	for _, s := range schemas {
		items = append(items, menuItem{title: "Manage " + s.Title, table: s.Table})
	}
	items = append(items, menuItem{title: "Exit"})
	return &MainMenuModel{items: items}
}

// Update moves the cursor and opens the chosen table.
func (m *MainMenuModel) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter", " ":
		item := m.items[m.cursor]
		if item.table == "" {
			return tea.Quit
		}
		return send(NavigateMsg{Table: item.table})
	}
	return nil
}

// View renders the menu.
func (m *MainMenuModel) View() string {
	s := "\n"
	for i, item := range m.items {
		if i == m.cursor {
			s += selectedItemStyle.Render("> "+item.title) + "\n"
			continue
		}
		s += normalItemStyle.Render("  "+item.title) + "\n"
	}
	return s
}
