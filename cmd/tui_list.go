package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/assetctl/internal/core/ports"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// List page modes
type listMode int

const (
	listBrowse listMode = iota
	listSearch
	listForm
	listConfirmDelete
)

// listKeyMap holds the bindings of a list page
type listKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Search   key.Binding
	Filter   key.Binding
	PageSize key.Binding
	Refresh  key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Copy     key.Binding
	Escape   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func (k listKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.PrevPage, k.NextPage, k.Search, k.Filter, k.New, k.Edit, k.Delete}
}

func (k listKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PrevPage, k.NextPage},
		{k.Search, k.Filter, k.PageSize, k.Refresh},
		{k.New, k.Edit, k.Delete, k.Copy},
	}
}

var listKeys = listKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "move down"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("left", "h", "pgup"),
		key.WithHelp("←/h", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("right", "l", "pgdown"),
		key.WithHelp("→/l", "next page"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "status filter"),
	),
	PageSize: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "page size"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy id"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// listLoadedMsg carries the result of a list fetch
type listLoadedMsg[T any] struct {
	route services.Route
	seq   uint64
	items []T
	err   error
}

// deletedMsg reports the outcome of a confirmed delete
type deletedMsg struct {
	route services.Route
	label string
	err   error
}

// listPage is a searchable, filterable, paged table of one entity type
// with add, edit and delete dialogs
type listPage[T any, D any] struct {
	route   services.Route
	title   string
	ctrl    *services.ListController[T]
	newForm func() *services.FormSession[T, D]
	lines   func(*services.FormSession[T, D]) formLines
	table   entityTable[T]
	preview func(T) string
	copyID  func(T) string
	can     func(services.Resource, services.Action) bool
	keys    listKeyMap
	mode    listMode
	cursor  int
	search  textinput.Model
	modal   formModal
	form    *services.FormSession[T, D]
	target  *T
}

func newListPage[T any, D any](route services.Route, title string, ctrl *services.ListController[T], newForm func() *services.FormSession[T, D], table entityTable[T], preview func(T) string, can func(services.Resource, services.Action) bool) *listPage[T, D] {
	ti := textinput.New()
	ti.Placeholder = "Search " + table.noun + "..."
	ti.CharLimit = 100
	ti.Width = 50

	p := &listPage[T, D]{
		route:   route,
		title:   title,
		ctrl:    ctrl,
		newForm: newForm,
		table:   table,
		preview: preview,
		can:     can,
		keys:    listKeys,
		search:  ti,
	}
	p.syncKeys()
	return p
}

func (p *listPage[T, D]) Route() services.Route { return p.route }

func (p *listPage[T, D]) Title() string { return p.title }

// Capturing reports whether the page consumes every key, such as while typing
func (p *listPage[T, D]) Capturing() bool {
	return p.mode != listBrowse
}

// syncKeys enables only the actions the acting role may perform
func (p *listPage[T, D]) syncKeys() {
	res := p.ctrl.Descriptor().Resource
	allowed := func(a services.Action) bool {
		return p.can != nil && p.can(res, a)
	}
	p.keys.New.SetEnabled(allowed(services.ActionCreate))
	p.keys.Edit.SetEnabled(allowed(services.ActionUpdate))
	p.keys.Delete.SetEnabled(allowed(services.ActionDelete))
	p.keys.Copy.SetEnabled(p.copyID != nil)
}

// Activate refetches the collection whenever the page is shown
func (p *listPage[T, D]) Activate() tea.Cmd {
	p.syncKeys()
	p.mode = listBrowse
	return p.fetch()
}

func (p *listPage[T, D]) Deactivate() {
	if p.form != nil {
		p.form.Close()
		p.form = nil
	}
	p.target = nil
	p.mode = listBrowse
}

func (p *listPage[T, D]) fetch() tea.Cmd {
	seq := p.ctrl.BeginFetch()
	ctrl, route := p.ctrl, p.route
	ctx := getContext()
	return func() tea.Msg {
		items, err := ctrl.Fetch(ctx)
		return listLoadedMsg[T]{route: route, seq: seq, items: items, err: err}
	}
}

func (p *listPage[T, D]) selected() (T, bool) {
	items := p.ctrl.Page()
	if p.cursor < 0 || p.cursor >= len(items) {
		var zero T
		return zero, false
	}
	return items[p.cursor], true
}

func (p *listPage[T, D]) clampCursor() {
	n := len(p.ctrl.Page())
	if p.cursor >= n {
		p.cursor = n - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
}

func (p *listPage[T, D]) Help() help.KeyMap {
	if p.mode == listForm {
		return p.modal.keys
	}
	return p.keys
}

func (p *listPage[T, D]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case listLoadedMsg[T]:
		if msg.route == p.route && p.ctrl.Apply(msg.seq, msg.items, msg.err) {
			p.clampCursor()
			if msg.err != nil {
				return statusCmd("Failed to load "+p.table.noun+": "+describeError(msg.err), ui.StyleError)
			}
		}
		return nil

	case formSubmittedMsg:
		if msg.route != p.route || p.mode != listForm {
			return nil
		}
		if msg.err != nil {
			var cmd tea.Cmd
			p.modal, cmd = p.modal.update(msg)
			return cmd
		}
		p.form = nil
		p.mode = listBrowse
		p.clampCursor()
		return statusCmd(ui.IconSuccess+" "+msg.success, ui.StyleSuccess)

	case deletedMsg:
		if msg.route != p.route {
			return nil
		}
		p.clampCursor()
		if msg.err != nil {
			return statusCmd("Failed to delete "+msg.label+": "+describeError(msg.err), ui.StyleError)
		}
		return statusCmd(ui.IconSuccess+" Deleted "+msg.label, ui.StyleSuccess)

	case tea.KeyMsg:
		switch p.mode {
		case listSearch:
			return p.updateSearch(msg)
		case listForm:
			return p.updateForm(msg)
		case listConfirmDelete:
			return p.updateConfirmDelete(msg)
		default:
			return p.updateBrowse(msg)
		}
	}

	if p.mode == listForm {
		var cmd tea.Cmd
		p.modal, cmd = p.modal.update(msg)
		return cmd
	}
	return nil
}

func (p *listPage[T, D]) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}

	case key.Matches(msg, p.keys.Down):
		if p.cursor < len(p.ctrl.Page())-1 {
			p.cursor++
		}

	case key.Matches(msg, p.keys.PrevPage):
		p.ctrl.SetPage(p.ctrl.View().Page - 1)
		p.cursor = 0

	case key.Matches(msg, p.keys.NextPage):
		p.ctrl.SetPage(p.ctrl.View().Page + 1)
		p.cursor = 0

	case key.Matches(msg, p.keys.Search):
		p.mode = listSearch
		p.search.Focus()
		return textinput.Blink

	case key.Matches(msg, p.keys.Filter):
		status := p.ctrl.CycleStatusFilter()
		p.cursor = 0
		if status == "" {
			status = "all"
		}
		return statusCmd("Status: "+status, ui.StyleInfo)

	case key.Matches(msg, p.keys.PageSize):
		size := p.ctrl.CyclePageSize()
		p.cursor = 0
		return statusCmd(fmt.Sprintf("Page size: %d", size), ui.StyleInfo)

	case key.Matches(msg, p.keys.Refresh):
		return p.fetch()

	case key.Matches(msg, p.keys.New):
		return p.openForm(nil)

	case key.Matches(msg, p.keys.Edit):
		if item, ok := p.selected(); ok {
			return p.openForm(&item)
		}

	case key.Matches(msg, p.keys.Delete):
		if item, ok := p.selected(); ok {
			p.target = &item
			p.mode = listConfirmDelete
		}

	case key.Matches(msg, p.keys.Copy):
		if item, ok := p.selected(); ok {
			return copyCmd(p.copyID(item))
		}
	}
	return nil
}

func (p *listPage[T, D]) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Escape):
		p.mode = listBrowse
		p.search.Blur()
		p.search.SetValue("")
		p.ctrl.SetSearchTerm("")
		p.cursor = 0
		return nil

	case msg.Type == tea.KeyEnter:
		p.mode = listBrowse
		p.search.Blur()
		return nil

	case msg.Type == tea.KeyUp:
		if p.cursor > 0 {
			p.cursor--
		}
		return nil

	case msg.Type == tea.KeyDown:
		if p.cursor < len(p.ctrl.Page())-1 {
			p.cursor++
		}
		return nil
	}

	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	if p.search.Value() != p.ctrl.View().Search {
		p.ctrl.SetSearchTerm(p.search.Value())
		p.cursor = 0
	}
	return cmd
}

// openForm opens the add dialog, or the edit dialog for existing
func (p *listPage[T, D]) openForm(existing *T) tea.Cmd {
	form := p.newForm()
	if err := form.Open(getContext(), existing); err != nil {
		return statusCmd(describeError(err), ui.StyleError)
	}

	title := "New " + singular(p.table.noun)
	success := capitalize(singular(p.table.noun)) + " created"
	var lines formLines
	if existing != nil {
		title = "Edit " + p.ctrl.Descriptor().Label(*existing)
		success = capitalize(singular(p.table.noun)) + " updated"
	} else if p.lines != nil {
		lines = p.lines(form)
	}

	p.form = form
	p.modal = newFormModal(title, success, p.route, form, lines)
	p.mode = listForm
	return textinput.Blink
}

func (p *listPage[T, D]) updateForm(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, p.modal.keys.Cancel) && !p.modal.busy {
		p.form.Close()
		p.form = nil
		p.mode = listBrowse
		return statusCmd("Cancelled.", ui.StyleMuted)
	}
	var cmd tea.Cmd
	p.modal, cmd = p.modal.update(msg)
	return cmd
}

func (p *listPage[T, D]) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, p.keys.Confirm):
		target := p.target
		p.target = nil
		p.mode = listBrowse
		if target == nil {
			return nil
		}
		return p.deleteCmd(*target)

	case key.Matches(msg, p.keys.Cancel):
		p.target = nil
		p.mode = listBrowse
	}
	return nil
}

// deleteCmd deletes item; the dialog already asked, so the controller
// gets a confirmer that agrees
func (p *listPage[T, D]) deleteCmd(item T) tea.Cmd {
	desc := p.ctrl.Descriptor()
	ctrl, route := p.ctrl, p.route
	id, label := desc.ID(item), desc.Label(item)
	ctx := getContext()
	return func() tea.Msg {
		return deletedMsg{route: route, label: label, err: ctrl.Delete(ctx, id, ports.Confirmed)}
	}
}

func (p *listPage[T, D]) View(width, height int) string {
	switch p.mode {
	case listForm:
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, p.modal.view(width))
	case listConfirmDelete:
		return p.viewConfirmDelete(width, height)
	}

	view := p.ctrl.View()
	var s strings.Builder

	s.WriteString(p.renderSearchBar(width))
	s.WriteString("\n")
	s.WriteString(p.renderFilterLine(view))
	s.WriteString("\n\n")

	switch {
	case !view.Loaded && view.Loading:
		s.WriteString(ui.StyleMuted.Render("  Loading " + p.table.noun + "..."))
		return s.String()
	case !view.Loaded && view.Err != nil:
		s.WriteString(ui.FormatError("Failed to load " + p.table.noun))
		s.WriteString("\n")
		s.WriteString(ui.StyleMuted.Render("  Press r to retry"))
		return s.String()
	case len(view.Items) == 0:
		emptyStyle := lipgloss.NewStyle().
			Foreground(ui.ColorMuted).
			Italic(true).
			Padding(1, 2)
		switch {
		case view.Search != "" || view.Status != "":
			s.WriteString(emptyStyle.Render("No " + p.table.noun + " match your filters."))
		case p.keys.New.Enabled():
			s.WriteString(emptyStyle.Render("No " + p.table.noun + " found. Press n to add one."))
		default:
			s.WriteString(emptyStyle.Render("No " + p.table.noun + " found."))
		}
		return s.String()
	}

	listWidth := width
	previewWidth := 0
	if width >= 110 && p.preview != nil {
		previewWidth = 36
		listWidth = width - previewWidth - 2
	}

	table := ui.NewTable(p.table.columns)
	for _, item := range view.Items {
		table.AddRow(p.table.row(item))
	}
	rows := strings.Split(strings.TrimRight(table.Render(), "\n"), "\n")

	// Header and separator come first; rows follow in page order
	const headerLines = 2
	for i := range rows {
		if i-headerLines == p.cursor {
			rows[i] = ui.StylePrimary.Render("▶") + rows[i]
		} else {
			rows[i] = " " + rows[i]
		}
	}
	list := lipgloss.NewStyle().MaxWidth(listWidth).Render(strings.Join(rows, "\n"))

	if previewWidth > 0 {
		if item, ok := p.selected(); ok {
			previewStyle := lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ui.ColorMuted).
				Padding(0, 1).
				Width(previewWidth - 2)
			list = lipgloss.JoinHorizontal(lipgloss.Top, list, "  ", previewStyle.Render(p.preview(item)))
		}
	}
	s.WriteString(list)
	return s.String()
}

func (p *listPage[T, D]) renderSearchBar(width int) string {
	borderColor := ui.ColorMuted
	if p.mode == listSearch {
		borderColor = ui.ColorPrimary
	}

	searchStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width - 4)

	prompt := ui.StyleMuted.Render("🔍 ")
	if p.mode == listSearch {
		prompt = ui.StylePrimary.Render("🔍 ")
	}

	content := prompt + p.search.View()
	if p.mode != listSearch && p.search.Value() == "" {
		content = prompt + ui.StyleMuted.Render("Press / to search...")
	}

	return searchStyle.Render(content)
}

func (p *listPage[T, D]) renderFilterLine(view services.ListView[T]) string {
	status := view.Status
	if status == "" {
		status = "all"
	}
	parts := []string{
		fmt.Sprintf("%d %s", view.Total, p.table.noun),
		"status: " + status,
		fmt.Sprintf("page %d/%d", view.Page+1, view.PageCount),
		fmt.Sprintf("%d per page", view.PageSize),
	}
	line := ui.StyleMuted.Render("  " + strings.Join(parts, "  •  "))
	if view.Loading {
		line += ui.StyleInfo.Render("  refreshing...")
	}
	return line
}

func (p *listPage[T, D]) viewConfirmDelete(width, height int) string {
	if p.target == nil {
		return ""
	}
	desc := p.ctrl.Descriptor()

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(60).
		Align(lipgloss.Center)

	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorWarning).
		Bold(true)

	nameStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true)

	promptStyle := lipgloss.NewStyle().
		Foreground(ui.ColorDefault).
		MarginTop(1)

	content := fmt.Sprintf("%s\n\n%s\n%s\n\n%s",
		titleStyle.Render(ui.IconWarning+"  Delete "+singular(p.table.noun)+"?"),
		nameStyle.Render(desc.Label(*p.target)),
		ui.StyleMuted.Render(desc.ID(*p.target)),
		promptStyle.Render("Press 'y' to confirm, 'n' or ESC to cancel"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, boxStyle.Render(content))
}

// copyCmd puts text on the system clipboard
func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg{message: "Could not copy to clipboard: " + err.Error(), style: ui.StyleWarning}
		}
		return statusMsg{message: ui.IconSuccess + " Copied " + text, style: ui.StyleSuccess}
	}
}

// capitalize upper-cases the first letter of s
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// singular drops the plural s of a noun
func singular(noun string) string {
	return strings.TrimSuffix(noun, "s")
}
