package hooks

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects hook invocation statistics on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	results     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the hook collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgm",
			Subsystem: "hooks",
			Name:      "invocations_total",
			Help:      "Hook invocations that had at least one handler.",
		}, []string{"hook", "mode"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pkgm",
			Subsystem: "hooks",
			Name:      "results_total",
			Help:      "Handler results by hook and outcome.",
		}, []string{"hook", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pkgm",
			Subsystem: "hooks",
			Name:      "handler_duration_seconds",
			Help:      "Handler execution time.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"hook"}),
	}
	m.registry.MustRegister(m.invocations, m.results, m.duration)
	return m
}

// Gatherer exposes the collected metrics.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// WriteTextfile writes the metrics in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) observeInvocation(name Name, mode Mode) {
	if m == nil {
		return
	}
	m.invocations.WithLabelValues(string(name), mode.String()).Inc()
}

func (m *Metrics) observeResult(r Result) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(string(r.Hook), string(r.Outcome)).Inc()
	m.duration.WithLabelValues(string(r.Hook)).Observe(r.Duration.Seconds())
}
