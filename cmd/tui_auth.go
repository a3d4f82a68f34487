package cmd

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// authKeyMap holds the bindings of the login and register pages
type authKeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	ChoiceNext key.Binding
	ChoicePrev key.Binding
	Submit     key.Binding
	Switch     key.Binding
}

func (k authKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.ChoiceNext, k.Submit, k.Switch}
}

func (k authKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var authKeys = authKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	ChoiceNext: key.NewBinding(
		key.WithKeys("right"),
		key.WithHelp("←/→", "change base"),
	),
	ChoicePrev: key.NewBinding(
		key.WithKeys("left"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Switch: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "login/register"),
	),
}

// authResultMsg reports the outcome of a login or registration
type authResultMsg struct {
	route services.Route
	sess  *domain.Session
	err   error
}

// navigateMsg asks the shell to show another page
type navigateMsg struct {
	route services.Route
}

// auth form field indexes
const (
	authEmail = iota
	authPassword
	authFullName
	authPhone
)

// authPage is the login page, or the register page when register is set
type authPage struct {
	shell    *services.Shell
	register bool
	inputs   []textinput.Model
	labels   []string
	bases    []string
	base     int
	focus    int
	keys     authKeyMap
	err      string
	busy     bool
}

func newAuthPage(shell *services.Shell, register bool, bases []string) *authPage {
	labels := []string{"Email", "Password"}
	if register {
		labels = append(labels, "Full Name", "Phone")
	}

	inputs := make([]textinput.Model, len(labels))
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 100
		ti.Width = 36
		inputs[i] = ti
	}
	inputs[authPassword].EchoMode = textinput.EchoPassword
	inputs[authPassword].EchoCharacter = '•'

	if len(bases) == 0 {
		bases = domain.DefaultBases
	}

	keys := authKeys
	keys.ChoiceNext.SetEnabled(register)
	keys.ChoicePrev.SetEnabled(register)

	return &authPage{
		shell:    shell,
		register: register,
		inputs:   inputs,
		labels:   labels,
		bases:    bases,
		keys:     keys,
	}
}

func (p *authPage) Route() services.Route {
	if p.register {
		return services.RouteRegister
	}
	return services.RouteLogin
}

func (p *authPage) Title() string {
	if p.register {
		return "Register"
	}
	return "Login"
}

func (p *authPage) Capturing() bool { return true }

func (p *authPage) Help() help.KeyMap { return p.keys }

// fieldCount includes the base picker of the register page
func (p *authPage) fieldCount() int {
	if p.register {
		return len(p.inputs) + 1
	}
	return len(p.inputs)
}

func (p *authPage) onBase() bool {
	return p.register && p.focus == len(p.inputs)
}

func (p *authPage) Activate() tea.Cmd {
	p.err = ""
	p.busy = false
	p.focusField(0)
	return textinput.Blink
}

// Deactivate forgets what was typed, the password included
func (p *authPage) Deactivate() {
	for i := range p.inputs {
		p.inputs[i].SetValue("")
		p.inputs[i].Blur()
	}
	p.err = ""
}

func (p *authPage) focusField(i int) {
	p.focus = i
	for j := range p.inputs {
		if j == i {
			p.inputs[j].Focus()
		} else {
			p.inputs[j].Blur()
		}
	}
}

func (p *authPage) value(i int) string {
	return strings.TrimSpace(p.inputs[i].Value())
}

// submit validates the fields and starts the request
func (p *authPage) submit() tea.Cmd {
	required := []int{authEmail, authPassword}
	if p.register {
		required = append(required, authFullName)
	}
	for _, i := range required {
		if p.value(i) == "" {
			p.err = p.labels[i] + " is required"
			p.focusField(i)
			return nil
		}
	}

	p.err = ""
	p.busy = true
	shell, route := p.shell, p.Route()
	ctx := getContext()

	if !p.register {
		creds := domain.Credentials{Email: p.value(authEmail), Password: p.inputs[authPassword].Value()}
		return func() tea.Msg {
			sess, err := shell.Login(ctx, creds)
			return authResultMsg{route: route, sess: sess, err: err}
		}
	}

	reg := domain.Registration{
		FullName: p.value(authFullName),
		Email:    p.value(authEmail),
		Password: p.inputs[authPassword].Value(),
		Phone:    p.value(authPhone),
		Base:     p.bases[p.base],
	}
	return func() tea.Msg {
		sess, err := shell.Register(ctx, reg)
		return authResultMsg{route: route, sess: sess, err: err}
	}
}

func (p *authPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case authResultMsg:
		if msg.route != p.Route() {
			return nil
		}
		p.busy = false
		if msg.err != nil {
			p.err = describeError(msg.err)
			p.inputs[authPassword].SetValue("")
			return nil
		}
		p.Deactivate()
		return tea.Batch(
			navigateCmd(services.RouteDashboard),
			statusCmd(ui.IconSuccess+" Welcome, "+msg.sess.User.FullName, ui.StyleSuccess),
		)

	case tea.KeyMsg:
		if p.busy {
			return nil
		}
		switch {
		case key.Matches(msg, p.keys.Submit):
			return p.submit()

		case key.Matches(msg, p.keys.Next):
			p.focusField((p.focus + 1) % p.fieldCount())
			return nil

		case key.Matches(msg, p.keys.Prev):
			p.focusField((p.focus - 1 + p.fieldCount()) % p.fieldCount())
			return nil

		case key.Matches(msg, p.keys.Switch):
			if p.register {
				return navigateCmd(services.RouteLogin)
			}
			return navigateCmd(services.RouteRegister)
		}

		if p.onBase() {
			switch {
			case key.Matches(msg, p.keys.ChoiceNext):
				p.base = (p.base + 1) % len(p.bases)
			case key.Matches(msg, p.keys.ChoicePrev):
				p.base = (p.base - 1 + len(p.bases)) % len(p.bases)
			}
			return nil
		}
	}

	if p.focus < len(p.inputs) {
		var cmd tea.Cmd
		p.inputs[p.focus], cmd = p.inputs[p.focus].Update(msg)
		return cmd
	}
	return nil
}

func (p *authPage) View(width, height int) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 3).
		Width(56)

	labelStyle := lipgloss.NewStyle().Width(12)

	var s strings.Builder
	if p.register {
		s.WriteString(ui.StyleTitle.Render("Create an account"))
	} else {
		s.WriteString(ui.StyleTitle.Render("Log in"))
	}
	s.WriteString("\n\n")

	for i, input := range p.inputs {
		label := labelStyle.Render(p.labels[i])
		if i == p.focus {
			label = labelStyle.Render(ui.StylePrimary.Render(p.labels[i]))
		}
		s.WriteString(label)
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	if p.register {
		label := labelStyle.Render("Base")
		base := p.bases[p.base]
		if p.onBase() {
			label = labelStyle.Render(ui.StylePrimary.Render("Base"))
			base = "◀ " + base + " ▶"
		}
		s.WriteString(label)
		s.WriteString(base)
		s.WriteString("\n")
	}

	if p.err != "" {
		s.WriteString("\n")
		s.WriteString(ui.FormatError(p.err))
		s.WriteString("\n")
	}
	if p.busy {
		s.WriteString("\n")
		s.WriteString(ui.StyleMuted.Render("Contacting backend..."))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	if p.register {
		s.WriteString(ui.StyleMuted.Render("Already have an account? Press ctrl+r to log in."))
	} else {
		s.WriteString(ui.StyleMuted.Render("No account yet? Press ctrl+r to register."))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(s.String()))
}
