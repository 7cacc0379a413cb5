package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the report pipeline's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	Runs          *prometheus.CounterVec
	Notices       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movers",
			Name:      "report_runs_total",
			Help:      "Report runs by outcome.",
		}, []string{"outcome"}),
		Notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "movers",
			Name:      "report_notices_total",
			Help:      "Non-fatal notices raised during report runs.",
		}, []string{"kind"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "movers",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of price history fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
	}
	reg.MustRegister(m.Runs, m.Notices, m.FetchDuration)
	return m
}

func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveNotice(kind string) {
	if m == nil {
		return
	}
	m.Notices.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveFetch(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}
