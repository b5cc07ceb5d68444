// Package metrics exposes Prometheus collectors for the analytics engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Calculation outcome labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder owns the engine's collectors and the registry they are exposed from.
type Recorder struct {
	registry *prometheus.Registry

	calculationSeconds *prometheus.HistogramVec
	calculationsTotal  *prometheus.CounterVec
	batchAgents        prometheus.Histogram
	digestRuns         *prometheus.CounterVec
}

// NewRecorder creates a Recorder with its own registry, pre-populated with the
// Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calculationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_calculation_seconds",
			Help:    "Time spent computing one analytics component.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"component"}),
		calculationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_calculations_total",
			Help: "Analytics calculations by component and outcome.",
		}, []string{"component", "status"}),
		batchAgents: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_batch_agents",
			Help:    "Number of agents submitted per batch run.",
			Buckets: prometheus.LinearBuckets(1, 10, 10),
		}),
		digestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_digest_runs_total",
			Help: "Scheduled report digest runs by outcome.",
		}, []string{"status"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.calculationSeconds,
		r.calculationsTotal,
		r.batchAgents,
		r.digestRuns,
	)
	return r
}

// ObserveCalculation records the duration and outcome of one component run.
func (r *Recorder) ObserveCalculation(component string, took time.Duration, err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.calculationSeconds.WithLabelValues(component).Observe(took.Seconds())
	r.calculationsTotal.WithLabelValues(component, status).Inc()
}

// ObserveBatch records the size of a batch run.
func (r *Recorder) ObserveBatch(agents int) {
	if r == nil {
		return
	}
	r.batchAgents.Observe(float64(agents))
}

// ObserveDigest records one scheduled digest run.
func (r *Recorder) ObserveDigest(err error) {
	if r == nil {
		return
	}
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.digestRuns.WithLabelValues(status).Inc()
}

// Registry returns the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
