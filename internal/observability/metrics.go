package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the aggregation and search
// paths.
type Metrics struct {
	RecordsFetched  *prometheus.CounterVec // labels: source
	SourceFailures  *prometheus.CounterVec // labels: source
	Refreshes       *prometheus.CounterVec // labels: outcome={completed,skipped,failed}
	RefreshDuration prometheus.Histogram
	CacheSize       prometheus.Gauge

	SearchRequests prometheus.Counter
	SearchDuration prometheus.Histogram
}

// NewMetrics creates and registers all collectors with the default registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_monitor",
			Name:      "records_fetched_total",
			Help:      "Records returned by each source adapter.",
		}, []string{"source"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_monitor",
			Name:      "source_failures_total",
			Help:      "Fetch failures per source adapter.",
		}, []string{"source"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crisis_monitor",
			Name:      "refreshes_total",
			Help:      "Cache refresh cycles by outcome.",
		}, []string{"outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crisis_monitor",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete collect-merge-persist cycle.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		CacheSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crisis_monitor",
			Name:      "cache_records",
			Help:      "Records currently held in the cache snapshot.",
		}),
		SearchRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crisis_monitor",
			Name:      "search_requests_total",
			Help:      "Search queries served.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crisis_monitor",
			Name:      "search_duration_seconds",
			Help:      "Duration of scoring a query against the cached corpus.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}

	prometheus.MustRegister(
		m.RecordsFetched,
		m.SourceFailures,
		m.Refreshes,
		m.RefreshDuration,
		m.CacheSize,
		m.SearchRequests,
		m.SearchDuration,
	)

	return m
}
