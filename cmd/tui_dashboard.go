package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/assetctl/internal/adapters/chart"
	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

// dashboardKeyMap holds the bindings of the dashboard page
type dashboardKeyMap struct {
	Refresh key.Binding
	Chart   key.Binding
}

func (k dashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Chart}
}

func (k dashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var dashboardKeys = dashboardKeyMap{
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Chart: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "open chart"),
	),
}

// metricsMsg carries one poll result. gen ties it to one activation of the
// page so results of an earlier visit are dropped.
type metricsMsg struct {
	gen    int
	res    services.MetricsResult
	ok     bool
	manual bool
}

// dashboardPage shows the metrics cards and the status chart, polling
// while the page is visible
type dashboardPage struct {
	poller    *services.MetricsPoller
	chartPath string
	keys      dashboardKeyMap
	gen       int
	cancel    context.CancelFunc
	results   <-chan services.MetricsResult
	metrics   *domain.Metrics
	at        time.Time
	err       error
	loading   bool
}

func newDashboardPage(poller *services.MetricsPoller, chartPath string) *dashboardPage {
	keys := dashboardKeys
	keys.Chart.SetEnabled(chartPath != "")
	return &dashboardPage{poller: poller, chartPath: chartPath, keys: keys}
}

func (p *dashboardPage) Route() services.Route { return services.RouteDashboard }

func (p *dashboardPage) Title() string { return "Dashboard" }

func (p *dashboardPage) Capturing() bool { return false }

func (p *dashboardPage) Help() help.KeyMap { return p.keys }

// Activate starts polling; every visit is a new generation
func (p *dashboardPage) Activate() tea.Cmd {
	p.stop()
	p.gen++
	ctx, cancel := context.WithCancel(getContext())
	p.cancel = cancel
	p.results = p.poller.Start(ctx)
	p.loading = true
	return waitForMetrics(p.results, p.gen)
}

// Deactivate stops polling; no fetch starts after this returns
func (p *dashboardPage) Deactivate() {
	p.stop()
	p.gen++
}

func (p *dashboardPage) stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func waitForMetrics(results <-chan services.MetricsResult, gen int) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-results
		return metricsMsg{gen: gen, res: res, ok: ok}
	}
}

func (p *dashboardPage) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case metricsMsg:
		if msg.gen != p.gen || !msg.ok {
			return nil
		}
		p.loading = false
		p.err = msg.res.Err
		if msg.res.Err == nil {
			p.metrics = msg.res.Metrics
			p.at = msg.res.At
		}
		if msg.manual {
			return nil
		}
		return waitForMetrics(p.results, p.gen)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Refresh):
			p.loading = true
			poller, gen := p.poller, p.gen
			ctx := getContext()
			return func() tea.Msg {
				return metricsMsg{gen: gen, res: poller.Fetch(ctx), ok: true, manual: true}
			}

		case key.Matches(msg, p.keys.Chart):
			if p.metrics == nil {
				return statusCmd("No metrics loaded yet", ui.StyleWarning)
			}
			points, at, path := services.Series(p.metrics), p.at, p.chartPath
			return func() tea.Msg {
				if err := chart.WriteFile(path, points, at); err != nil {
					return statusMsg{message: "Failed to write chart: " + err.Error(), style: ui.StyleError}
				}
				if err := OpenFile(path, ""); err != nil {
					return statusMsg{message: err.Error(), style: ui.StyleError}
				}
				return statusMsg{message: "Opened " + path, style: ui.StyleSuccess}
			}
		}
	}
	return nil
}

func (p *dashboardPage) View(width, height int) string {
	if p.metrics == nil {
		switch {
		case p.err != nil:
			return ui.FormatError("Failed to load metrics: "+describeError(p.err)) + "\n" +
				ui.StyleMuted.Render("  Press r to retry")
		default:
			return ui.StyleMuted.Render("  Loading metrics...")
		}
	}

	var s strings.Builder

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorMuted).
		Padding(0, 2).
		Width(22)

	cards := make([]string, 0, 4)
	for _, card := range metricCards(p.metrics) {
		cards = append(cards, cardStyle.Render(
			ui.StyleMuted.Render(card.label)+"\n"+
				ui.StyleTitle.Render(fmt.Sprintf("%d", card.value))))
	}
	if width >= 4*26 {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	} else {
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1]))
		s.WriteString("\n")
		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[2], cards[3]))
	}
	s.WriteString("\n\n")

	s.WriteString(ui.StyleHeader.Render(ui.IconChart + " Assets by Status"))
	s.WriteString("\n")
	if points := services.Series(p.metrics); len(points) > 0 {
		barWidth := 30
		if width < 70 {
			barWidth = 15
		}
		s.WriteString(renderStatusBars(points, barWidth))
	} else {
		s.WriteString(ui.StyleMuted.Render("No status data"))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	updated := fmt.Sprintf("Updated %s  •  refreshes every %s", p.at.Local().Format("15:04:05"), p.poller.Interval())
	if p.loading {
		updated += "  •  refreshing..."
	}
	s.WriteString(ui.StyleMuted.Render(updated))
	if p.err != nil {
		s.WriteString("\n")
		s.WriteString(ui.FormatWarning("Last refresh failed: " + describeError(p.err)))
	}
	return s.String()
}
