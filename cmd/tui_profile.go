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

type profileKeyMap struct {
	Edit key.Binding
}

func (k profileKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit}
}

func (k profileKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var profileKeys = profileKeyMap{
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit profile"),
	),
}

// profilePage shows the acting user and edits it in a dialog
type profilePage struct {
	shell   *services.Shell
	newForm func() *services.FormSession[domain.User, services.ProfileDraft]
	keys    profileKeyMap
	form    *services.FormSession[domain.User, services.ProfileDraft]
	modal   formModal
	editing bool
}

func newProfilePage(shell *services.Shell, newForm func() *services.FormSession[domain.User, services.ProfileDraft]) *profilePage {
	return &profilePage{shell: shell, newForm: newForm, keys: profileKeys}
}

func (p *profilePage) Route() services.Route { return services.RouteProfile }

func (p *profilePage) Title() string { return "Profile" }

func (p *profilePage) Capturing() bool { return p.editing }

func (p *profilePage) Help() help.KeyMap {
	if p.editing {
		return p.modal.keys
	}
	return p.keys
}

func (p *profilePage) Activate() tea.Cmd {
	p.keys.Edit.SetEnabled(p.shell.Can(services.ResourceProfile, services.ActionUpdate))
	return nil
}

func (p *profilePage) Deactivate() {
	p.close()
}

func (p *profilePage) close() {
	if p.form != nil {
		p.form.Close()
		p.form = nil
	}
	p.editing = false
}

func (p *profilePage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case formSubmittedMsg:
		if msg.route != services.RouteProfile || !p.editing {
			return nil
		}
		if msg.err != nil {
			var cmd tea.Cmd
			p.modal, cmd = p.modal.update(msg)
			return cmd
		}
		p.form = nil
		p.editing = false
		return statusCmd(ui.IconSuccess+" "+msg.success, ui.StyleSuccess)

	case tea.KeyMsg:
		if p.editing {
			if key.Matches(msg, p.modal.keys.Cancel) && !p.modal.busy {
				p.close()
				return statusCmd("Cancelled.", ui.StyleMuted)
			}
			var cmd tea.Cmd
			p.modal, cmd = p.modal.update(msg)
			return cmd
		}
		if key.Matches(msg, p.keys.Edit) {
			return p.openForm()
		}
		return nil
	}

	if p.editing {
		var cmd tea.Cmd
		p.modal, cmd = p.modal.update(msg)
		return cmd
	}
	return nil
}

func (p *profilePage) openForm() tea.Cmd {
	user := p.shell.User()
	if user == nil {
		return nil
	}
	form := p.newForm()
	if err := form.Open(getContext(), user); err != nil {
		return statusCmd(describeError(err), ui.StyleError)
	}
	p.form = form
	p.modal = newFormModal("Edit Profile", "Profile updated", services.RouteProfile, form, nil)
	p.editing = true
	return textinput.Blink
}

func (p *profilePage) View(width, height int) string {
	if p.editing {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, p.modal.view(width))
	}

	user := p.shell.User()
	if user == nil {
		return ""
	}

	avatarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 2)

	var s strings.Builder
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		avatarStyle.Render(user.Initial()),
		"  ",
		ui.StyleTitle.Render(user.FullName),
	))
	s.WriteString("\n\n")
	s.WriteString(ui.RenderKeyValue("Email", user.Email))
	s.WriteString("\n")
	s.WriteString(ui.RenderKeyValue("Phone", orDash(user.Phone)))
	s.WriteString("\n")
	s.WriteString(ui.RenderKeyValue("Role", orDash(user.Role)))
	s.WriteString("\n")
	base := orDash(user.Base)
	if !p.shell.Can(services.ResourceProfileBase, services.ActionUpdate) {
		base += " " + ui.IconLock
	}
	s.WriteString(ui.RenderKeyValue("Base", base))
	s.WriteString("\n")
	s.WriteString(ui.RenderKeyValue("Session", sessionExpiry(p.shell.Session(), appClock.Now())))
	return s.String()
}
