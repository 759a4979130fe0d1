package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/david-garcia-garcia/traefik-with-plugins/internal/models"
)

const namespace = "dashboard_e2e"

// Metrics holds the per-run collectors written to a node_exporter textfile.
type Metrics struct {
	registry    *prometheus.Registry
	scenarios   *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastRun     prometheus.Gauge
	lastSuccess prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Scenarios executed in the last run by group and outcome",
		}, []string{"group", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Scenario wall time",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"group"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 when no scenario failed in the last run",
		}),
	}
	m.registry.MustRegister(m.scenarios, m.duration, m.lastRun, m.lastSuccess)
	return m
}

func (m *Metrics) Observe(run models.RunSummary) {
	for _, r := range run.Results {
		m.scenarios.WithLabelValues(r.Group, string(r.Outcome)).Inc()
		if r.Outcome != models.OutcomeSkipped {
			m.duration.WithLabelValues(r.Group).Observe(r.Duration.Seconds())
		}
	}
	m.lastRun.Set(float64(run.FinishedAt.Unix()))
	if run.Passed() {
		m.lastSuccess.Set(1)
	} else {
		m.lastSuccess.Set(0)
	}
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile atomically replaces path with the text exposition of m.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
