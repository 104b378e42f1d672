// Package metrics holds the Prometheus collectors shared across the dashboard.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FetchesTotal counts backend fetches by outcome
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evdash_fetches_total",
			Help: "Total number of backend fetches by status",
		},
		[]string{"status"},
	)

	// FetchDuration tracks backend fetch latency
	FetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evdash_fetch_duration_seconds",
			Help:    "Backend fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CacheHits counts lookups served from a fresh cache entry
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evdash_cache_hits_total",
			Help: "Lookups served from a fresh cache entry without a network call",
		},
	)

	// CacheMisses counts lookups that required a fetch
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evdash_cache_misses_total",
			Help: "Lookups that required a backend fetch",
		},
	)

	// StaleDiscards counts superseded fetch results dropped at resolution
	StaleDiscards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evdash_stale_results_discarded_total",
			Help: "Fetch results discarded because the view had moved to a newer key",
		},
	)

	// PollCycles counts automatic refresh ticks
	PollCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "evdash_poll_cycles_total",
			Help: "Automatic poll cycles executed",
		},
	)

	// OpportunitiesShown tracks the number of cards in the current view
	OpportunitiesShown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "evdash_opportunities_shown",
			Help: "Number of opportunities in the currently rendered response",
		},
	)
)

var registerOnce sync.Once

// Register installs all collectors into the default registry. Safe to call
// more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			FetchesTotal,
			FetchDuration,
			CacheHits,
			CacheMisses,
			StaleDiscards,
			PollCycles,
			OpportunitiesShown,
		)
	})
}
