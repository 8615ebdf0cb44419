package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the nightly report service

var (
	// Scrape metrics
	ScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhl_scrapes_total",
			Help: "Total number of live-scoring page scrapes",
		},
		[]string{"status"},
	)

	ScrapeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fhl_scrape_duration_seconds",
			Help:    "Duration of live-scoring scrapes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	UnresolvedTeamNames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fhl_unresolved_team_names_total",
			Help: "Total number of scraped team names that failed to resolve",
		},
	)

	// Archive metrics
	ArchiveFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhl_archive_fetches_total",
			Help: "Total number of historical-archive fetch attempts",
		},
		[]string{"status"},
	)

	ArchiveTierUnavailable = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fhl_archive_tier_unavailable_total",
			Help: "Times the archive detector tier degraded to no candidates",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fhl_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fhl_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhl_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// Analysis metrics
	AnalysisRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhl_analysis_runs_total",
			Help: "Total number of nightly analysis runs",
		},
		[]string{"status"},
	)

	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fhl_analysis_duration_seconds",
			Help:    "Duration of nightly analysis runs in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	NarrativesSelected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhl_narratives_selected_total",
			Help: "Total narratives selected, by source tier",
		},
		[]string{"tier"},
	)

	// Delivery metrics
	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fhl_deliveries_total",
			Help: "Total number of report deliveries",
		},
		[]string{"status"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fhl_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fhl_last_successful_run_timestamp",
			Help: "Timestamp of the last successful nightly run",
		},
	)
)

// RecordScrape records a scrape attempt
func RecordScrape(status string, duration float64) {
	ScrapesTotal.WithLabelValues(status).Inc()
	ScrapeDuration.Observe(duration)
}

// RecordArchiveFetch records an archive fetch attempt
func RecordArchiveFetch(status string) {
	ArchiveFetchesTotal.WithLabelValues(status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordAnalysisRun records a nightly analysis run
func RecordAnalysisRun(status string, duration float64) {
	AnalysisRunsTotal.WithLabelValues(status).Inc()
	AnalysisDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordNarrative records a selected narrative by source tier
func RecordNarrative(tier string) {
	NarrativesSelected.WithLabelValues(tier).Inc()
}

// RecordDelivery records a report delivery attempt
func RecordDelivery(status string) {
	DeliveriesTotal.WithLabelValues(status).Inc()
}
