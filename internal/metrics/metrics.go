// Package metrics exposes engine counters and gauges for prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	actions        *prometheus.CounterVec
	cash           *prometheus.GaugeVec
	season         prometheus.Gauge
	storageCorrupt prometheus.Counter
}

// New creates a recorder with go and process collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "glassfist_actions_total",
				Help: "Franchise actions by kind and outcome",
			},
			[]string{"action", "outcome"},
		),
		cash: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "glassfist_cash",
				Help: "Current cash per franchise",
			},
			[]string{"franchise"},
		),
		season: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "glassfist_season",
			Help: "Current season of the two-franchise game",
		}),
		storageCorrupt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "glassfist_storage_corrupt_total",
			Help: "Persisted blobs discarded as corrupt and reseeded",
		}),
	}
	r.registry.MustRegister(
		r.actions, r.cash, r.season, r.storageCorrupt,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Action counts one action attempt.
func (r *Recorder) Action(kind, outcome string) {
	if r == nil {
		return
	}
	r.actions.WithLabelValues(kind, outcome).Inc()
}

// Cash sets the cash gauge of a franchise.
func (r *Recorder) Cash(franchiseID string, cash int) {
	if r == nil {
		return
	}
	r.cash.WithLabelValues(franchiseID).Set(float64(cash))
}

// Season sets the season gauge.
func (r *Recorder) Season(season int) {
	if r == nil {
		return
	}
	r.season.Set(float64(season))
}

// StorageCorrupt counts one discarded blob.
func (r *Recorder) StorageCorrupt() {
	if r == nil {
		return
	}
	r.storageCorrupt.Inc()
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
