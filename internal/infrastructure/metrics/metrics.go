package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the Prometheus collectors for the counter engine. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
type Metrics struct {
	Toggles         *prometheus.CounterVec   // domain, action ∈ {like, unlike}
	Views           *prometheus.CounterVec   // domain, outcome ∈ {counted, deduped}
	FlushedEntities *prometheus.CounterVec   // domain, kind ∈ {view, like}
	FlushErrors     *prometheus.CounterVec   // domain
	EventsApplied   *prometheus.CounterVec   // outcome ∈ {applied, dropped}
	JobDuration     *prometheus.HistogramVec // job, domain
}

// New creates and registers the collectors.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Toggles: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counter_like_toggles_total",
			Help: "Like toggles processed, by domain and resulting action.",
		}, []string{"domain", "action"}),
		Views: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counter_views_total",
			Help: "View registrations, by domain and dedup outcome.",
		}, []string{"domain", "outcome"}),
		FlushedEntities: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counter_flushed_entities_total",
			Help: "Entities reconciled into the durable store by the write-back job.",
		}, []string{"domain", "kind"}),
		FlushErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counter_flush_errors_total",
			Help: "Per-entity errors skipped during write-back runs.",
		}, []string{"domain"}),
		EventsApplied: f.NewCounterVec(prometheus.CounterOpts{
			Name: "counter_toggle_events_total",
			Help: "Toggle events applied to the durable like rows.",
		}, []string{"outcome"}),
		JobDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "counter_job_duration_seconds",
			Help:    "Background job run duration.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job", "domain"}),
	}
}
