package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/storeadmin/internal/form"
)

// NavigateMsg switches to the browser of Table, or to the main menu when
// Table is empty.
type NavigateMsg struct {
	Table string
}

// OpenFormMsg shows a record form.
type OpenFormMsg struct {
	Form *form.Form
}

// FormDoneMsg reports a saved or cancelled form to the browser.
type FormDoneMsg struct {
	Result form.Result
}

// StatusMsg sets the status line.
type StatusMsg struct {
	Text  string
	Error bool
}

func errorStatus(err error) StatusMsg {
	return StatusMsg{Text: err.Error(), Error: true}
}

func infoStatus(text string) StatusMsg {
	return StatusMsg{Text: text}
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
