package tui

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mesh-intelligence/storeadmin/internal/form"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

// FormModel edits one record form with a text input per field. Choice
// fields cycle through their options with left and right; space toggles a
// flag.
type FormModel struct {
	form   *form.Form
	fields []form.Field
	inputs []textinput.Model
	focus  int
}

// NewFormModel builds inputs for every field of f.
func NewFormModel(f *form.Form) *FormModel {
	fields := f.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, fld := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 255
		ti.Width = 40
		ti.SetValue(fld.Value)
		if fld.Column.Kind == types.MaskedSecret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		if len(fld.Options) > 0 {
			ti.Placeholder = "←/→ to choose"
		}
		inputs[i] = ti
	}
	m := &FormModel{form: f, fields: fields, inputs: inputs}
	if len(inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

// Title returns the form heading.
func (m *FormModel) Title() string {
	verb := "Add"
	if m.form.Mode() == form.EditMode {
		verb = "Edit"
	}
	title := verb + " " + m.form.Schema().Title
	if k := m.form.Key(); k != nil {
		title += " " + k.String()
	}
	return title
}

// Update handles field navigation, choice cycling, save and cancel.
func (m *FormModel) Update(ctx context.Context, msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "esc":
		return send(FormDoneMsg{Result: m.form.Cancel()})
	case "ctrl+s":
		return m.save(ctx)
	case "enter":
		if m.focus == len(m.inputs)-1 {
			return m.save(ctx)
		}
		return m.move(1)
	case "tab", "down":
		return m.move(1)
	case "shift+tab", "up":
		return m.move(-1)
	case " ":
		if len(m.inputs) > 0 && m.fields[m.focus].Column.Kind == types.BooleanFlag {
			m.cycle(1)
			return nil
		}
	case "left", "right":
		if len(m.inputs) > 0 && len(m.fields[m.focus].Options) > 0 {
			step := 1
			if key.String() == "left" {
				step = -1
			}
			m.cycle(step)
			return nil
		}
	}

	if len(m.inputs) == 0 {
		return nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *FormModel) move(step int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + step + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

// cycle replaces the focused entry with the next or previous option.
func (m *FormModel) cycle(step int) {
	opts := m.fields[m.focus].Options
	i := slices.Index(opts, m.inputs[m.focus].Value())
	if i < 0 {
		i = 0
		if step < 0 {
			i = len(opts) - 1
		}
	} else {
		i = (i + step + len(opts)) % len(opts)
	}
	m.inputs[m.focus].SetValue(opts[i])
	m.inputs[m.focus].CursorEnd()
}

// save copies the inputs into the form and saves it. On failure the form
// stays open with the entries intact.
func (m *FormModel) save(ctx context.Context) tea.Cmd {
	for i, fld := range m.fields {
		if err := m.form.Set(fld.Column.Name, m.inputs[i].Value()); err != nil {
			return send(errorStatus(err))
		}
	}
	res, err := m.form.Save(ctx)
	if err != nil {
		return send(errorStatus(err))
	}
	return send(FormDoneMsg{Result: res})
}

// View renders one line per field.
func (m *FormModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	for i, fld := range m.fields {
		label := fld.Column.Header()
		if fld.Required {
			label += requiredMarkStyle.Render(" *")
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(m.inputs[i].View())
		if i == m.focus && len(fld.Options) > 0 {
			b.WriteString("  " + optionsStyle.Render(optionSummary(fld.Options)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Help returns the key help.
func (m *FormModel) Help() string {
	return "tab: next field • ←/→: choose • space: toggle • enter on last field or ctrl+s: save • esc: cancel"
}

func optionSummary(opts []string) string {
	shown := make([]string, 0, len(opts))
	for _, o := range opts {
		if o == "" {
			o = "(none)"
		}
		shown = append(shown, o)
	}
	if len(shown) > 6 {
		shown = append(shown[:6], "…")
	}
	return strings.Join(shown, " | ")
}
