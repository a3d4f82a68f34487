package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kamal-hamza/assetctl/internal/core/services"
)

// StatusChart builds the "assets by status" bar chart of the dashboard
func StatusChart(points []services.SeriesPoint, at time.Time) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Asset Status Distribution"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Asset Status Distribution",
			Subtitle: "as of " + at.Format(time.RFC1123),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)

	labels := make([]string, 0, len(points))
	data := make([]opts.BarData, 0, len(points))
	for _, p := range points {
		labels = append(labels, p.Label)
		data = append(data, opts.BarData{Name: p.Label, Value: p.Value})
	}

	bar.SetXAxis(labels).AddSeries("Assets", data)
	return bar
}

// Render writes the chart as a standalone HTML page
func Render(w io.Writer, points []services.SeriesPoint, at time.Time) error {
	if err := StatusChart(points, at).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// WriteFile renders the chart to path, creating parent directories
func WriteFile(path string, points []services.SeriesPoint, at time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return Render(f, points, at)
}
