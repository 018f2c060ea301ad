package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	DefaultNamespace = "dreadroot"
	DefaultSubsystem = "pipeline"
)

// MetricsConfig names the metric family prefix.
type MetricsConfig struct {
	Namespace string
	Subsystem string
}

// Metrics counts what the mutation pipeline does. Counters live in a private
// registry so several hosts can run in one process.
//
// Metrics:
//   - dreadroot_pipeline_runs_total{trigger}
//   - dreadroot_pipeline_skips_total{reason}
//   - dreadroot_pipeline_replacements_total{trigger}
//   - dreadroot_pipeline_mutations_total{kind}
//   - dreadroot_pipeline_config_refreshes_total
type Metrics struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	skips        *prometheus.CounterVec
	replacements *prometheus.CounterVec
	mutations    *prometheus.CounterVec
	refreshes    prometheus.Counter
}

// NewMetrics registers the pipeline counters. A nil registry gets a fresh
// one.
func NewMetrics(cfg MetricsConfig, registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = DefaultSubsystem
	}
	counterVec := func(name, help, label string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      name,
			Help:      help,
		}, []string{label})
	}
	m := &Metrics{
		registry:     registry,
		runs:         counterVec("runs_total", "Pipeline runs by triggering event", "trigger"),
		skips:        counterVec("skips_total", "Pipeline short-circuits by reason", "reason"),
		replacements: counterVec("replacements_total", "Entities replaced by a recreated instance", "trigger"),
		mutations:    counterVec("mutations_total", "Property mutations applied by kind", "kind"),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "config_refreshes_total",
			Help:      "Option snapshots reloaded on the refresh cadence",
		}),
	}
	registry.MustRegister(m.runs, m.skips, m.replacements, m.mutations, m.refreshes)
	return m
}

func (m *Metrics) PipelineRun(trigger string) { m.runs.WithLabelValues(trigger).Inc() }
func (m *Metrics) PipelineSkip(reason string) { m.skips.WithLabelValues(reason).Inc() }
func (m *Metrics) Replacement(trigger string) { m.replacements.WithLabelValues(trigger).Inc() }
func (m *Metrics) Mutation(kind string)       { m.mutations.WithLabelValues(kind).Inc() }
func (m *Metrics) ConfigRefresh()             { m.refreshes.Inc() }

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
