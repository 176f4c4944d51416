package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/storeadmin/internal/browser"
	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// maxColumnWidth caps the width of one grid column.
const maxColumnWidth = 28

// BrowseModel shows one table as a grid with a search box and a delete
// confirmation prompt.
type BrowseModel struct {
	br        *browser.Browser
	grid      table.Model
	search    textinput.Model
	searching bool
	confirm   string
}

// NewBrowseModel wraps br. The caller renders br first.
func NewBrowseModel(br *browser.Browser, height int) *BrowseModel {
	search := textinput.New()
	search.Placeholder = "search"
	search.Prompt = "/ "
	search.CharLimit = 100

	grid := table.New(table.WithFocused(true), table.WithHeight(gridHeight(height)))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	grid.SetStyles(styles)

	m := &BrowseModel{br: br, grid: grid, search: search}
	m.refresh()
	return m
}

// Title returns the browsed table's title.
func (m *BrowseModel) Title() string { return m.br.Schema().Title }

// Update handles keys for the grid, the search box and the delete prompt.
func (m *BrowseModel) Update(ctx context.Context, msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return cmd
	}

	if m.confirm != "" {
		return m.answer(ctx, key.String())
	}

	if m.searching {
		switch key.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			m.grid.Focus()
			if err := m.br.ApplySearch(ctx, m.search.Value()); err != nil {
				return send(errorStatus(err))
			}
			m.refresh()
			return send(infoStatus(fmt.Sprintf("%d matching record(s)", m.br.Page().Len())))
		case "esc":
			m.searching = false
			m.search.Blur()
			m.grid.Focus()
			return nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return cmd
	}

	switch key.String() {
	case "esc", "q":
		return send(NavigateMsg{})

	case "/":
		if !m.br.Searchable() {
			return send(infoStatus(m.Title() + " has no searchable columns"))
		}
		m.searching = true
		m.grid.Blur()
		return m.search.Focus()

	case "r":
		m.search.SetValue("")
		if err := m.br.Reset(ctx); err != nil {
			return send(errorStatus(err))
		}
		m.refresh()
		return nil

	case "a":
		f, err := m.br.Add(ctx)
		if err != nil {
			return send(errorStatus(err))
		}
		return send(OpenFormMsg{Form: f})

	case "e", "enter":
		if err := m.selectCursor(); err != nil {
			return send(errorStatus(err))
		}
		f, err := m.br.Edit(ctx)
		if err != nil {
			if errors.Is(err, types.ErrNotFound) {
				m.refresh()
			}
			return send(errorStatus(err))
		}
		return send(OpenFormMsg{Form: f})

	case "d":
		if err := m.selectCursor(); err != nil {
			return send(errorStatus(err))
		}
		prompt, _ := m.br.DeletePrompt()
		m.confirm = prompt
		return nil
	}

	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return cmd
}

// answer resolves the delete prompt.
func (m *BrowseModel) answer(ctx context.Context, key string) tea.Cmd {
	switch key {
	case "y", "Y":
		m.confirm = ""
		err := m.br.Remove(ctx, func(string) bool { return true })
		m.refresh()
		if err != nil {
			return send(errorStatus(err))
		}
		return send(infoStatus("Record deleted"))
	case "n", "N", "esc":
		m.confirm = ""
		m.br.ClearSelection()
		return nil
	}
	return nil
}

// Complete hands a finished form to the browser and redraws.
func (m *BrowseModel) Complete(ctx context.Context, res form.Result) tea.Cmd {
	if err := m.br.Complete(ctx, res); err != nil {
		return send(errorStatus(err))
	}
	m.refresh()
	switch {
	case res.Cancelled:
		return nil
	case res.Mode == form.EditMode:
		return send(infoStatus("Record updated"))
	default:
		return send(infoStatus("Record added"))
	}
}

// Resize adapts the grid to the window height.
func (m *BrowseModel) Resize(height int) {
	m.grid.SetHeight(gridHeight(height))
}

// selectCursor selects the row under the grid cursor.
func (m *BrowseModel) selectCursor() error {
	page := m.br.Page()
	cursor := m.grid.Cursor()
	if page.Len() == 0 || cursor < 0 || cursor >= page.Len() {
		return types.ErrNoSelection
	}
	return m.br.Select(page.Keys[cursor])
}

// refresh copies the browser's page into the grid.
func (m *BrowseModel) refresh() {
	page := m.br.Page()
	widths := make([]int, len(page.Headers))
	for i, h := range page.Headers {
		widths[i] = lipgloss.Width(h)
	}
	rows := make([]table.Row, len(page.Cells))
	for i, cells := range page.Cells {
		for j, c := range cells {
			widths[j] = max(widths[j], lipgloss.Width(c))
		}
		rows[i] = table.Row(cells)
	}
	cols := make([]table.Column, len(page.Headers))
	for i, h := range page.Headers {
		cols[i] = table.Column{Title: h, Width: min(widths[i], maxColumnWidth)}
	}
	m.grid.SetRows(nil)
	m.grid.SetColumns(cols)
	m.grid.SetRows(rows)
	if c := m.grid.Cursor(); c >= len(rows) {
		m.grid.SetCursor(max(len(rows)-1, 0))
	}
}

// View renders the grid, search box and prompt.
func (m *BrowseModel) View() string {
	s := "\n"
	if m.searching || m.br.Page().Term != "" {
		s += m.search.View() + "\n\n"
	}
	if m.br.Page().Len() == 0 {
		s += noItemsStyle.Render("No records.") + "\n"
	} else {
		s += m.grid.View() + "\n"
	}
	if m.confirm != "" {
		s += "\n" + promptStyle.Render(m.confirm+" (y/n)") + "\n"
	}
	return s
}

// Help returns the key help for the current mode.
func (m *BrowseModel) Help() string {
	switch {
	case m.confirm != "":
		return "y: delete • n: keep"
	case m.searching:
		return "enter: search • esc: cancel"
	default:
		return "↑/↓: navigate • a: add • e: edit • d: delete • /: search • r: reset • esc: back"
	}
}

func gridHeight(window int) int {
	if window <= 0 {
		return 15
	}
	return max(window-10, 3)
}
