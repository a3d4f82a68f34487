package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// DefaultPollInterval is the dashboard refresh period
const DefaultPollInterval = 30 * time.Second

// MetricsResult is one poll outcome
type MetricsResult struct {
	Metrics *domain.Metrics
	Err     error
	At      time.Time
}

// SeriesPoint is one bar of the status chart
type SeriesPoint struct {
	Label string
	Value int
}

// Series reshapes a status distribution into chart points, keeping the
// order the backend sent
func Series(m *domain.Metrics) []SeriesPoint {
	if m == nil {
		return nil
	}
	out := make([]SeriesPoint, 0, len(m.StatusDistribution))
	for _, sc := range m.StatusDistribution {
		out = append(out, SeriesPoint{Label: sc.Status, Value: sc.Count})
	}
	return out
}

// MetricsPoller fetches the dashboard snapshot on a fixed interval
type MetricsPoller struct {
	source   ports.MetricsGateway
	clock    clockwork.Clock
	interval time.Duration
	logger   *logrus.Entry
}

// NewMetricsPoller creates a poller; a zero interval means DefaultPollInterval
func NewMetricsPoller(source ports.MetricsGateway, clock clockwork.Clock, interval time.Duration, logger *logrus.Logger) *MetricsPoller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithField("component", "metrics-poller")
	} else {
		entry = logrus.WithField("component", "metrics-poller")
	}
	return &MetricsPoller{source: source, clock: clock, interval: interval, logger: entry}
}

// Interval returns the poll period
func (p *MetricsPoller) Interval() time.Duration {
	return p.interval
}

// Fetch performs a single poll
func (p *MetricsPoller) Fetch(ctx context.Context) MetricsResult {
	m, err := p.source.Metrics(ctx)
	if err != nil {
		p.logger.WithError(err).Warn("failed to fetch metrics")
	}
	return MetricsResult{Metrics: m, Err: err, At: p.clock.Now()}
}

// Start polls immediately and then every interval until ctx is cancelled.
// After cancellation no further fetch starts and the channel is closed.
func (p *MetricsPoller) Start(ctx context.Context) <-chan MetricsResult {
	out := make(chan MetricsResult)
	ticker := p.clock.NewTicker(p.interval)

	go func() {
		defer close(out)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil {
				return
			}
			res := p.Fetch(ctx)
			if ctx.Err() != nil {
				return
			}
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.Chan():
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
