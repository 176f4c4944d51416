// Package tui is the interactive shell: a main menu of tables, a browser
// per table, and modal add/edit forms, built on bubbletea.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/storeadmin/internal/browser"
	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/internal/logging"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// ViewState is the screen currently shown.
type ViewState int

const (
	MainMenuView ViewState = iota
	BrowseView
	FormView
)

// Model is the root bubbletea model.
type Model struct {
	ctx     context.Context
	deps    form.Deps
	schemas map[string]*types.EntitySchema
	title   string

	currentView ViewState
	width       int
	height      int
	status      StatusMsg

	mainMenu *MainMenuModel
	browse   *BrowseModel
	formView *FormModel

	log *slog.Logger
}

// NewModel creates the shell over schemas, in menu order. title heads
// every screen.
func NewModel(ctx context.Context, deps form.Deps, schemas []*types.EntitySchema, title string) *Model {
	byName := make(map[string]*types.EntitySchema, len(schemas))
	for _, s := range schemas {
		byName[s.Table] = s
	}
	return &Model{
		ctx:         ctx,
		deps:        deps,
		schemas:     byName,
		title:       title,
		currentView: MainMenuView,
		mainMenu:    NewMainMenuModel(schemas),
		log:         logging.For("tui"),
	}
}

// Init returns initial commands for the application.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update routes messages to the active view.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.browse != nil {
			m.browse.Resize(msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.currentView == MainMenuView && msg.String() == "q" {
			return m, tea.Quit
		}
		m.status = StatusMsg{}

	case StatusMsg:
		m.status = msg
		if msg.Error {
			m.log.WarnContext(m.actionContext(), "action failed", "view", m.currentView, "error", msg.Text)
		}
		return m, nil

	case NavigateMsg:
		return m, m.navigate(msg.Table)

	case OpenFormMsg:
		m.formView = NewFormModel(msg.Form)
		m.currentView = FormView
		return m, nil

	case FormDoneMsg:
		m.formView = nil
		m.currentView = BrowseView
		if m.browse == nil {
			return m, nil
		}
		return m, m.browse.Complete(m.actionContext(), msg.Result)
	}

	switch m.currentView {
	case MainMenuView:
		return m, m.mainMenu.Update(msg)
	case BrowseView:
		return m, m.browse.Update(m.actionContext(), msg)
	case FormView:
		return m, m.formView.Update(m.actionContext(), msg)
	}
	return m, nil
}

// navigate opens the browser of table, or the main menu.
func (m *Model) navigate(table string) tea.Cmd {
	m.status = StatusMsg{}
	if table == "" {
		m.browse = nil
		m.currentView = MainMenuView
		return nil
	}
	s, ok := m.schemas[table]
	if !ok {
		return send(errorStatus(types.ErrTableNotFound))
	}
	br := browser.New(m.deps, s)
	if err := br.Render(m.actionContext()); err != nil {
		return send(errorStatus(err))
	}
	m.browse = NewBrowseModel(br, m.height)
	m.currentView = BrowseView
	return nil
}

// actionContext tags one user action with a fresh action id.
func (m *Model) actionContext() context.Context {
	return logging.WithActionID(m.ctx, logging.NewActionID())
}

// View renders the current view.
func (m *Model) View() string {
	var content, subtitle, help string
	switch m.currentView {
	case MainMenuView:
		subtitle = "Main Menu"
		content = m.mainMenu.View()
		help = "↑/↓: navigate • enter: select • q: quit"
	case BrowseView:
		subtitle = m.browse.Title()
		content = m.browse.View()
		help = m.browse.Help()
	case FormView:
		subtitle = m.formView.Title()
		content = m.formView.View()
		help = m.formView.Help()
	}

	header := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(m.title), subtitleStyle.Render(subtitle))

	if m.status.Text != "" {
		if m.status.Error {
			content += "\n" + errorStyle.Render("Error: "+m.status.Text)
		} else {
			content += "\n" + infoStyle.Render(m.status.Text)
		}
	}

	return header + "\n" + content + "\n" + helpStyle.Render(help)
}

// CurrentView reports the screen shown.
func (m *Model) CurrentView() ViewState { return m.currentView }

// Run starts the shell on the terminal and blocks until the user exits.
func Run(ctx context.Context, deps form.Deps, schemas []*types.EntitySchema, title string) error {
	p := tea.NewProgram(NewModel(ctx, deps, schemas, title), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
