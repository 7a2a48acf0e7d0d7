// Package metrics exposes sync and propagation counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "flux"

// Recorder implements orchestrator.Recorder.
type Recorder struct {
	registry     *prometheus.Registry
	syncs        *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
	propagations *prometheus.CounterVec
}

// New registers the flux collectors, plus the Go and process collectors, on
// a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_cycles_total",
			Help:      "Sync cycles by adapter and result.",
		}, []string{"adapter", "result"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync cycles that reached the remote.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"adapter"}),
		propagations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "propagations_total",
			Help:      "Single-record pushes on create by adapter and result.",
		}, []string{"adapter", "result"}),
	}

	r.registry.MustRegister(
		r.syncs,
		r.syncDuration,
		r.propagations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

func (r *Recorder) ObserveSync(adapter, result string, elapsed time.Duration) {
	r.syncs.WithLabelValues(adapter, result).Inc()

	if elapsed > 0 {
		r.syncDuration.WithLabelValues(adapter).Observe(elapsed.Seconds())
	}
}

func (r *Recorder) ObservePropagation(adapter, result string) {
	r.propagations.WithLabelValues(adapter, result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
