package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/assetctl/internal/adapters/chart"
	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/services"
	"github.com/kamal-hamza/assetctl/pkg/ui"
)

var (
	metricsWatch bool
	metricsChart string
	metricsOpen  bool
)

var metricsCmd = &cobra.Command{
	Use:     "metrics",
	Aliases: []string{"stats"},
	Short:   "Show the dashboard metrics",
	Long: `Show the dashboard snapshot: asset totals, pending transfers, active
assignments and the distribution of assets by status.

With --watch the snapshot is refreshed every poll_interval_seconds until
interrupted. With --chart the status distribution is also written as an
HTML bar chart.

Examples:
  assetctl metrics
  assetctl metrics --watch
  assetctl metrics --chart --open`,
	Args: cobra.NoArgs,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().BoolVarP(&metricsWatch, "watch", "w", false, "Refresh until interrupted")
	metricsCmd.Flags().StringVar(&metricsChart, "chart", "", "Write the status chart to this HTML file")
	metricsCmd.Flags().Lookup("chart").NoOptDefVal = "status.html"
	metricsCmd.Flags().BoolVar(&metricsOpen, "open", false, "Open the chart after writing it")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if err := appShell.Require(services.ResourceDashboard, services.ActionView); err != nil {
		return err
	}

	poller := services.NewMetricsPoller(backend, appClock,
		time.Duration(appConfig.PollIntervalSeconds)*time.Second, appLogger)

	if !metricsWatch {
		res := poller.Fetch(getContext())
		if res.Err != nil {
			fmt.Fprintln(stdout, ui.FormatError("Failed to load metrics"))
			return res.Err
		}
		printMetrics(res)
		return writeMetricsChart(res)
	}

	fmt.Fprintln(stdout, ui.FormatInfo(fmt.Sprintf("Refreshing every %s. Press Ctrl+C to stop.", poller.Interval())))
	for res := range poller.Start(getContext()) {
		fmt.Fprintln(stdout)
		if res.Err != nil {
			fmt.Fprintln(stdout, ui.FormatWarning("Refresh failed: "+describeError(res.Err)))
			continue
		}
		printMetrics(res)
		if err := writeMetricsChart(res); err != nil {
			return err
		}
	}
	return nil
}

func printMetrics(res services.MetricsResult) {
	fmt.Fprintln(stdout, ui.FormatTitle(ui.IconChart+" Dashboard"))
	fmt.Fprintln(stdout, ui.FormatMuted("as of "+res.At.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintln(stdout)

	w := tabwriter.NewWriter(stdout, 0, 0, 4, ' ', 0)
	for _, card := range metricCards(res.Metrics) {
		fmt.Fprintf(w, "%s\t%d\n", ui.StyleBold.Render(card.label+":"), card.value)
	}
	w.Flush()
	fmt.Fprintln(stdout)

	points := services.Series(res.Metrics)
	if len(points) == 0 {
		fmt.Fprintln(stdout, ui.FormatMuted("No status data"))
		return
	}
	fmt.Fprintln(stdout, ui.StyleHeader.Render("Assets by Status"))
	fmt.Fprint(stdout, renderStatusBars(points, 20))
}

// metricCard is one number of the dashboard
type metricCard struct {
	label string
	value int
}

func metricCards(m *domain.Metrics) []metricCard {
	if m == nil {
		m = &domain.Metrics{}
	}
	return []metricCard{
		{"Total Assets", m.TotalAssets},
		{"Active Assets", m.ActiveAssets},
		{"Pending Transfers", m.PendingTransfers},
		{"Active Assignments", m.ActiveAssignments},
	}
}

// renderStatusBars draws a horizontal bar per status, in backend order
func renderStatusBars(points []services.SeriesPoint, barWidth int) string {
	maxCount := 0
	for _, p := range points {
		if p.Value > maxCount {
			maxCount = p.Value
		}
	}

	var b strings.Builder
	for _, p := range points {
		length := 0
		if maxCount > 0 {
			length = int(math.Ceil(float64(p.Value) / float64(maxCount) * float64(barWidth)))
		}
		bar := strings.Repeat("█", length) + strings.Repeat(" ", barWidth-length)

		fmt.Fprintf(&b, "%s %-15s %s\n",
			ui.StatusStyle(p.Label).Render(bar),
			p.Label,
			ui.StyleMuted.Render(fmt.Sprintf("%d", p.Value)),
		)
	}
	return b.String()
}

// writeMetricsChart writes the HTML chart when --chart was given
func writeMetricsChart(res services.MetricsResult) error {
	if metricsChart == "" {
		return nil
	}
	path := metricsChart
	if !strings.ContainsRune(path, os.PathSeparator) {
		path = appVault.GetExportPath(path)
	}
	if err := chart.WriteFile(path, services.Series(res.Metrics), res.At); err != nil {
		return err
	}
	fmt.Fprintln(stdout, ui.FormatSuccess("Chart written to "+path))

	if metricsOpen {
		// Only the first snapshot of a watch opens a viewer
		metricsOpen = false
		return OpenFile(path, "")
	}
	return nil
}
