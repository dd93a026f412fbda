package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the planner. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	storeFallbacks    *prometheus.CounterVec
	durableProbes     *prometheus.CounterVec
	localProjects     prometheus.Gauge
	providerFallbacks *prometheus.CounterVec
	providerLatency   *prometheus.HistogramVec
	analyses          *prometheus.CounterVec
	analysisLatency   prometheus.Histogram
	indexFailures     prometheus.Counter
	embedFallbacks    prometheus.Counter
	exports           *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg. A nil reg
// creates unregistered collectors, which keeps tests independent.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		storeFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_store_fallbacks_total",
				Help: "Project operations answered from the local cache because the durable store failed",
			},
			[]string{"operation"},
		),
		durableProbes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_durable_probes_total",
				Help: "Durable store reachability probes by result",
			},
			[]string{"result"},
		),
		localProjects: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "planner_local_cache_projects",
				Help: "Number of projects held by the local cache",
			},
		),
		providerFallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_provider_fallbacks_total",
				Help: "Generation calls answered with fallback data",
			},
			[]string{"facet"},
		),
		providerLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planner_facet_duration_seconds",
				Help:    "Latency of facet generation",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"facet"},
		),
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_analyses_total",
				Help: "Project analyses by result",
			},
			[]string{"result"},
		),
		analysisLatency: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "planner_analysis_duration_seconds",
				Help:    "End-to-end latency of a project analysis",
				Buckets: []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
			},
		),
		indexFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_index_failures_total",
				Help: "Best-effort indexing runs that failed",
			},
		),
		embedFallbacks: f.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_embedding_fallbacks_total",
				Help: "Embedding calls answered with a mock vector",
			},
		),
		exports: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_exports_total",
				Help: "Plan exports by result",
			},
			[]string{"result"},
		),
	}
}

// RecordStoreFallback counts an operation served by the local tier.
func (m *Metrics) RecordStoreFallback(operation string) {
	if m == nil {
		return
	}
	m.storeFallbacks.WithLabelValues(operation).Inc()
}

// RecordDurableProbe counts a reachability probe.
func (m *Metrics) RecordDurableProbe(ok bool) {
	if m == nil {
		return
	}
	m.durableProbes.WithLabelValues(result(ok)).Inc()
}

// SetLocalProjects sets the number of locally cached projects.
func (m *Metrics) SetLocalProjects(n int) {
	if m == nil {
		return
	}
	m.localProjects.Set(float64(n))
}

// RecordProviderFallback counts a facet served by fallback data.
func (m *Metrics) RecordProviderFallback(facet string) {
	if m == nil {
		return
	}
	m.providerFallbacks.WithLabelValues(facet).Inc()
}

// ObserveFacet records the latency of one facet generation.
func (m *Metrics) ObserveFacet(facet string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerLatency.WithLabelValues(facet).Observe(d.Seconds())
}

// RecordAnalysis counts a finished analysis and its duration.
func (m *Metrics) RecordAnalysis(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(result(ok)).Inc()
	m.analysisLatency.Observe(d.Seconds())
}

func (m *Metrics) RecordIndexFailure() {
	if m == nil {
		return
	}
	m.indexFailures.Inc()
}

func (m *Metrics) RecordEmbeddingFallback() {
	if m == nil {
		return
	}
	m.embedFallbacks.Inc()
}

func (m *Metrics) RecordExport(ok bool) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(result(ok)).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
