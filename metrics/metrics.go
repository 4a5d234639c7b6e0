package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "interaction"

// Metrics groups the service's Prometheus collectors.
type Metrics struct {
	Taps            *prometheus.CounterVec
	LikeToggles     *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	CommentsAdded   prometheus.Counter
	OpenSessions    prometheus.Gauge
	CacheWrites     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Taps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taps_total",
			Help:      "Taps received, by classified action.",
		}, []string{"action"}),
		LikeToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "like_toggles_total",
			Help:      "Optimistic like toggles, by source.",
		}, []string{"source"}),
		PersistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Record store writes that failed after an optimistic update.",
		}, []string{"operation"}),
		CommentsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_added_total",
			Help:      "Comments accepted into a feed session.",
		}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_feed_sessions",
			Help:      "Feed sessions currently held in memory.",
		}),
		CacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_cache_writes_total",
			Help:      "Counter cache writes from events, by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.Taps, m.LikeToggles, m.PersistFailures, m.CommentsAdded, m.OpenSessions, m.CacheWrites)
	return m
}

// NewNop returns collectors registered nowhere, for tests and tools.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
