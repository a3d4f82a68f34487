package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// formKeyMap holds the bindings of the add/edit dialog
type formKeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	ChoiceNext key.Binding
	ChoicePrev key.Binding
	Submit     key.Binding
	Cancel     key.Binding
	AddLine    key.Binding
	RemoveLine key.Binding
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.ChoiceNext, k.AddLine, k.RemoveLine, k.Submit, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var formKeys = formKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down", "enter"),
		key.WithHelp("tab/↓", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab/↑", "previous field"),
	),
	ChoiceNext: key.NewBinding(
		key.WithKeys("right", "ctrl+n"),
		key.WithHelp("←/→", "change option"),
	),
	ChoicePrev: key.NewBinding(
		key.WithKeys("left", "ctrl+p"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	AddLine: key.NewBinding(
		key.WithKeys("ctrl+a"),
		key.WithHelp("ctrl+a", "add line"),
	),
	RemoveLine: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "remove line"),
	),
}

// formLines lets a form add and remove repeated line groups
type formLines interface {
	AddLine() error
	RemoveLine(field string) error
}

// formSubmittedMsg reports the outcome of a dialog submit
type formSubmittedMsg struct {
	route   services.Route
	success string
	err     error
}

// formModal renders a form session as a dialog and edits it
type formModal struct {
	title   string
	success string
	route   services.Route
	form    formDriver
	lines   formLines
	fields  []services.FieldView
	cursor  int
	input   textinput.Model
	keys    formKeyMap
	err     string
	busy    bool
}

func newFormModal(title, success string, route services.Route, form formDriver, lines formLines) formModal {
	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 40

	keys := formKeys
	keys.AddLine.SetEnabled(lines != nil)
	keys.RemoveLine.SetEnabled(lines != nil)

	m := formModal{
		title:   title,
		success: success,
		route:   route,
		form:    form,
		lines:   lines,
		input:   ti,
		keys:    keys,
	}
	m.fields = form.Fields()
	m.cursor = m.nextEditable(-1, 1)
	m.loadInput()
	return m
}

// current returns the field under the cursor
func (m formModal) current() (services.FieldView, bool) {
	if m.cursor < 0 || m.cursor >= len(m.fields) {
		return services.FieldView{}, false
	}
	return m.fields[m.cursor], true
}

// nextEditable finds the next unlocked field from i in direction dir
func (m formModal) nextEditable(i, dir int) int {
	for j := i + dir; j >= 0 && j < len(m.fields); j += dir {
		if !m.fields[j].Locked {
			return j
		}
	}
	if i < 0 {
		return 0
	}
	return i
}

// loadInput points the text input at the current field
func (m *formModal) loadInput() {
	field, ok := m.current()
	if !ok || field.Locked || field.Kind == services.FieldSelect {
		m.input.Blur()
		return
	}
	m.input.SetValue(field.Value)
	m.input.CursorEnd()
	m.input.Placeholder = ""
	if field.Kind == services.FieldDate {
		m.input.Placeholder = "YYYY-MM-DD"
	}
	m.input.Focus()
}

// commit writes the text input back into the form
func (m *formModal) commit() bool {
	field, ok := m.current()
	if !ok || field.Locked || field.Kind == services.FieldSelect {
		return true
	}
	if m.input.Value() == field.Value {
		return true
	}
	if err := m.form.SetField(field.Name, strings.TrimSpace(m.input.Value())); err != nil {
		m.err = err.Error()
		return false
	}
	m.err = ""
	m.fields = m.form.Fields()
	return true
}

// cycleChoice moves a select field to the next or previous option
func (m *formModal) cycleChoice(dir int) {
	field, ok := m.current()
	if !ok || field.Locked || field.Kind != services.FieldSelect || len(field.Choices) == 0 {
		return
	}
	idx := -1
	for i, c := range field.Choices {
		if c.Value == field.Value {
			idx = i
			break
		}
	}
	idx = (idx + dir + len(field.Choices)) % len(field.Choices)
	if err := m.form.SetField(field.Name, field.Choices[idx].Value); err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
	m.fields = m.form.Fields()
}

func (m formModal) move(dir int) formModal {
	if !m.commit() {
		return m
	}
	m.cursor = m.nextEditable(m.cursor, dir)
	m.loadInput()
	return m
}

// submitCmd sends the form in the background
func (m formModal) submitCmd() tea.Cmd {
	form, route, success := m.form, m.route, m.success
	ctx := getContext()
	return func() tea.Msg {
		return formSubmittedMsg{route: route, success: success, err: form.Submit(ctx)}
	}
}

func (m formModal) update(msg tea.Msg) (formModal, tea.Cmd) {
	switch msg := msg.(type) {
	case formSubmittedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err.Error()
			m.fields = m.form.Fields()
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Submit):
			if !m.commit() {
				return m, nil
			}
			m.busy = true
			m.err = ""
			return m, m.submitCmd()

		case key.Matches(msg, m.keys.Next):
			return m.move(1), nil

		case key.Matches(msg, m.keys.Prev):
			return m.move(-1), nil

		case key.Matches(msg, m.keys.AddLine):
			if !m.commit() {
				return m, nil
			}
			if err := m.lines.AddLine(); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.fields = m.form.Fields()
			return m, nil

		case key.Matches(msg, m.keys.RemoveLine):
			field, ok := m.current()
			if !ok {
				return m, nil
			}
			if err := m.lines.RemoveLine(field.Name); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.err = ""
			m.fields = m.form.Fields()
			if m.cursor >= len(m.fields) {
				m.cursor = len(m.fields) - 1
			}
			m.loadInput()
			return m, nil
		}

		field, ok := m.current()
		if ok && field.Kind == services.FieldSelect {
			switch {
			case key.Matches(msg, m.keys.ChoiceNext):
				m.cycleChoice(1)
			case key.Matches(msg, m.keys.ChoicePrev):
				m.cycleChoice(-1)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m formModal) view(width int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(min(width-4, 72))

	labelStyle := lipgloss.NewStyle().Width(22)

	var s strings.Builder
	s.WriteString(ui.StyleTitle.Render(m.title))
	s.WriteString("\n\n")

	for i, field := range m.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}

		cursor := "  "
		style := lipgloss.NewStyle().Foreground(ui.ColorDefault)
		if i == m.cursor {
			cursor = ui.StylePrimary.Render("▶ ")
			style = ui.StylePrimary.Bold(true)
		}

		var value string
		switch {
		case field.Locked:
			value = ui.StyleMuted.Render(choiceLabel(field) + " " + ui.IconLock)
		case field.Kind == services.FieldSelect:
			value = choiceLabel(field)
			if i == m.cursor {
				value = "◀ " + value + " ▶"
			}
		case i == m.cursor:
			value = m.input.View()
		default:
			value = field.Value
		}
		if value == "" {
			value = ui.StyleMuted.Render("-")
		}

		s.WriteString(cursor)
		s.WriteString(labelStyle.Render(style.Render(label)))
		s.WriteString(value)
		s.WriteString("\n")
	}

	if m.err != "" {
		s.WriteString("\n")
		s.WriteString(ui.FormatError(m.err))
		s.WriteString("\n")
	}
	if m.busy {
		s.WriteString("\n")
		s.WriteString(ui.StyleMuted.Render("Saving..."))
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

// choiceLabel shows the label of the selected option
func choiceLabel(field services.FieldView) string {
	for _, c := range field.Choices {
		if c.Value == field.Value {
			return c.Label
		}
	}
	return field.Value
}

// transferLines adds and removes the asset lines of a transfer draft
type transferLines struct {
	form *services.FormSession[domain.Transfer, services.TransferDraft]
}

func (l transferLines) AddLine() error {
	return l.form.Edit(func(d *services.TransferDraft) error {
		d.AddLine()
		return nil
	})
}

func (l transferLines) RemoveLine(field string) error {
	var i int
	if _, err := fmt.Sscanf(field, "lines.%d.", &i); err != nil {
		return fmt.Errorf("move to an asset line to remove it")
	}
	return l.form.Edit(func(d *services.TransferDraft) error {
		return d.RemoveLine(i)
	})
}
