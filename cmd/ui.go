package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/adapters/session"
	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var uiMetricsAddr string

// uiCmd launches the full-screen shell
var uiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui", "shell"},
	Short:   "Launch the interactive shell",
	Long: `Launch a full-screen interactive shell with the dashboard, the asset,
transfer and assignment lists and your profile.

Without a session the shell opens on the login page. Logging in or out in
another terminal is picked up while the shell runs.

Keyboard Shortcuts:
  Pages:
    1-5         Dashboard, Assets, Transfers, Assignments, Profile
    tab         Next page
    L           Log out

  Lists:
    ↑/k ↓/j     Move
    ←/h →/l     Previous / next page
    /           Search
    f           Cycle status filter
    s           Cycle page size
    n e d       New, edit, delete (when your role allows it)
    c           Copy the asset id
    r           Refresh

  General:
    ?           Toggle help
    q           Quit
    Ctrl+C      Force quit`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationPublic: "true"},
	RunE:        runUI,
}

func init() {
	uiCmd.Flags().StringVar(&uiMetricsAddr, "metrics-addr", "", "Serve client metrics for Prometheus on this address, e.g. :9464")
}

func runUI(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(getContext())
	defer cancel()

	if uiMetricsAddr != "" {
		stop, err := serveMetrics(uiMetricsAddr)
		if err != nil {
			return err
		}
		defer stop()
	}

	changes, err := session.Watch(ctx, sessionStore, session.DefaultDebounce, appLogger)
	if err != nil {
		// The shell still works without live session updates
		appLogger.WithError(err).Warn("session watcher unavailable")
		changes = nil
	}

	m := newShellModel(appShell, buildPages(appShell), changes, appClock)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running shell: %w", err)
	}
	return nil
}

// serveMetrics exposes the gateway metrics until stop is called
func serveMetrics(addr string) (stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Error("metrics server stopped")
		}
	}()
	appLogger.WithField("addr", ln.Addr().String()).Info("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// buildPages wires every page to the backend
func buildPages(shell *services.Shell) []page {
	assets := services.NewListController(services.AssetList, services.AssetSource(backend), pageSize(), appLogger)
	transfers := services.NewListController(services.TransferList, services.TransferSource(backend), pageSize(), appLogger)
	assignments := services.NewListController(services.AssignmentList, services.AssignmentSource(backend), pageSize(), appLogger)

	assetPage := newListPage(services.RouteAssets, "Assets", assets,
		func() *services.FormSession[domain.Asset, services.AssetDraft] {
			return services.NewFormSession(services.NewAssetForm(backend), shell, formOptions(services.OnSaved(assets.Refresh))...)
		},
		assetTable, assetPreview, shell.Can)
	assetPage.copyID = func(a domain.Asset) string { return a.ID }

	transferPage := newListPage(services.RouteTransfers, "Transfers", transfers,
		func() *services.FormSession[domain.Transfer, services.TransferDraft] {
			return services.NewFormSession(services.NewTransferForm(backend, backend), shell, formOptions(services.OnSaved(transfers.Refresh))...)
		},
		transferTable, transferPreview, shell.Can)
	transferPage.lines = func(f *services.FormSession[domain.Transfer, services.TransferDraft]) formLines {
		return transferLines{form: f}
	}

	assignmentPage := newListPage(services.RouteAssignments, "Assignments", assignments,
		func() *services.FormSession[domain.Assignment, services.AssignmentDraft] {
			return services.NewFormSession(services.NewAssignmentForm(backend, backend, backend), shell, formOptions(services.OnSaved(assignments.Refresh))...)
		},
		assignmentTable, assignmentPreview, shell.Can)

	poller := services.NewMetricsPoller(backend, appClock,
		time.Duration(appConfig.PollIntervalSeconds)*time.Second, appLogger)

	return []page{
		newAuthPage(shell, false, bases()),
		newAuthPage(shell, true, bases()),
		newDashboardPage(poller, appVault.GetExportPath("status.html")),
		assetPage,
		transferPage,
		assignmentPage,
		newProfilePage(shell, func() *services.FormSession[domain.User, services.ProfileDraft] {
			return services.NewFormSession(services.NewProfileForm(backend, shell.UpdateUser), shell, formOptions()...)
		}),
	}
}

// page is one screen of the shell
type page interface {
	Route() services.Route
	Title() string

	// Activate is called when the page is shown, Deactivate when it is left
	Activate() tea.Cmd
	Deactivate()

	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
	Help() help.KeyMap

	// Capturing pages receive every key, so the shell's own keys are off
	Capturing() bool
}

// shellKeyMap holds the bindings available on every page
type shellKeyMap struct {
	Pages     []key.Binding
	Tab       key.Binding
	Logout    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func newShellKeys() shellKeyMap {
	k := shellKeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next page"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
	}
	for i, route := range services.ProtectedRoutes {
		n := fmt.Sprintf("%d", i+1)
		k.Pages = append(k.Pages, key.NewBinding(
			key.WithKeys(n),
			key.WithHelp(n, string(route)),
		))
	}
	return k
}

func (k shellKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Logout, k.Help, k.Quit}
}

func (k shellKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.Pages, k.ShortHelp()}
}

// Shell messages
type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

// sessionChangedMsg carries a session change made by another process
type sessionChangedMsg struct {
	change session.Change
	ok     bool
}

func statusCmd(message string, style lipgloss.Style) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{message: message, style: style}
	}
}

func navigateCmd(route services.Route) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{route: route}
	}
}

func waitForSession(changes <-chan session.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-changes
		return sessionChangedMsg{change: change, ok: ok}
	}
}

// shellModel is the root model: it routes between pages and guards the
// protected ones
type shellModel struct {
	shell         *services.Shell
	pages         map[services.Route]page
	route         services.Route
	changes       <-chan session.Change
	clock         clockwork.Clock
	keys          shellKeyMap
	help          help.Model
	showHelp      bool
	width         int
	height        int
	ready         bool
	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time
}

func newShellModel(shell *services.Shell, pages []page, changes <-chan session.Change, clock clockwork.Clock) shellModel {
	byRoute := make(map[services.Route]page, len(pages))
	for _, p := range pages {
		byRoute[p.Route()] = p
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return shellModel{
		shell:   shell,
		pages:   byRoute,
		changes: changes,
		clock:   clock,
		keys:    newShellKeys(),
		help:    help.New(),
	}
}

func (m shellModel) Init() tea.Cmd {
	return tea.Batch(
		navigateCmd(services.RouteDashboard),
		waitForSession(m.changes),
	)
}

// navigate switches to route, or to login when route needs a session
func (m *shellModel) navigate(route services.Route) tea.Cmd {
	route = m.shell.Guard(route)
	if _, ok := m.pages[route]; !ok {
		return nil
	}
	if route == m.route {
		return nil
	}
	if current, ok := m.pages[m.route]; ok {
		current.Deactivate()
	}
	m.route = route
	m.showHelp = false
	return m.pages[route].Activate()
}

func (m shellModel) current() page {
	return m.pages[m.route]
}

func (m shellModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case navigateMsg:
		return m, m.navigate(msg.route)

	case statusMsg:
		m.message = msg.message
		m.messageStyle = msg.style
		m.messageExpiry = m.clock.Now().Add(3 * time.Second)
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg { return clearMessageMsg{} })

	case clearMessageMsg:
		if !m.clock.Now().Before(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case sessionChangedMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(m.applySession(msg.change), waitForSession(m.changes))

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	// Everything else goes to every page; each drops what is not its own
	var cmds []tea.Cmd
	for _, p := range m.pages {
		cmds = append(cmds, p.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

// applySession adopts a session written by another process
func (m *shellModel) applySession(change session.Change) tea.Cmd {
	if change.Err != nil {
		return statusCmd("Could not read session: "+change.Err.Error(), ui.StyleWarning)
	}

	before := m.shell.Session()
	m.shell.Apply(change.Session)
	after := m.shell.Session()
	wasAuthenticated, authenticated := before != nil, after != nil

	switch {
	case wasAuthenticated && !authenticated:
		return tea.Batch(m.navigate(services.RouteLogin), statusCmd("Logged out", ui.StyleWarning))
	case !wasAuthenticated && authenticated:
		return tea.Batch(m.navigate(services.RouteDashboard), statusCmd("Logged in", ui.StyleSuccess))
	case authenticated && before.Token != after.Token:
		// Another user or role may have logged in: rebuild the page
		if p := m.current(); p != nil {
			p.Deactivate()
			return p.Activate()
		}
	}
	return nil
}

func (m shellModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}

	p := m.current()
	if p == nil {
		return m, nil
	}
	if p.Capturing() {
		return m, p.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		if err := m.shell.Logout(); err != nil {
			return m, statusCmd("Logout failed: "+err.Error(), ui.StyleError)
		}
		return m, tea.Batch(m.navigate(services.RouteLogin), statusCmd("Logged out", ui.StyleSuccess))

	case key.Matches(msg, m.keys.Tab):
		next := services.ProtectedRoutes[0]
		for i, route := range services.ProtectedRoutes {
			if route == m.route {
				next = services.ProtectedRoutes[(i+1)%len(services.ProtectedRoutes)]
				break
			}
		}
		return m, m.navigate(next)
	}

	for i, binding := range m.keys.Pages {
		if key.Matches(msg, binding) {
			return m, m.navigate(services.ProtectedRoutes[i])
		}
	}

	return m, p.Update(msg)
}

func (m shellModel) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	p := m.current()
	if p == nil {
		return "\n  Loading..."
	}

	header := m.renderHeader()
	footer := m.renderFooter(p)
	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer) - 1
	if bodyHeight < 5 {
		bodyHeight = 5
	}

	body := p.View(m.width, bodyHeight)
	body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m shellModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorPrimary).
		Bold(true).
		Padding(0, 1)

	userStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		Align(lipgloss.Right)

	title := titleStyle.Render("🛡 assetctl")

	var tabs []string
	if m.shell.State() == services.Authenticated {
		for i, route := range services.ProtectedRoutes {
			p, ok := m.pages[route]
			if !ok {
				continue
			}
			label := fmt.Sprintf("%d %s", i+1, p.Title())
			if route == m.route {
				tabs = append(tabs, ui.StylePrimary.Bold(true).Underline(true).Render(label))
			} else {
				tabs = append(tabs, ui.StyleMuted.Render(label))
			}
		}
	}

	userInfo := ""
	if user := m.shell.User(); user != nil {
		userInfo = userStyle.Render(fmt.Sprintf("%s %s (%s)  %s", ui.IconPerson, user.FullName, orDash(user.Role), orDash(user.Base)))
	}

	left := title + "  " + strings.Join(tabs, "  ")
	spacer := m.width - lipgloss.Width(left) - lipgloss.Width(userInfo)
	if spacer < 1 {
		spacer = 1
	}

	line := lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", spacer), userInfo)
	rule := ui.StyleMuted.Render(strings.Repeat("─", max(m.width, 1)))
	return line + "\n" + rule
}

func (m shellModel) renderFooter(p page) string {
	var statusLine string
	if m.message != "" && m.clock.Now().Before(m.messageExpiry) {
		statusLine = m.messageStyle.Render(m.message)
	} else {
		statusLine = ui.StyleMuted.Render("Ready")
	}

	h := m.help
	h.ShowAll = m.showHelp
	lines := []string{statusLine, h.View(p.Help())}
	if !p.Capturing() {
		lines = append(lines, h.View(m.keys))
	}

	footerStyle := lipgloss.NewStyle().
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 1)

	return footerStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
