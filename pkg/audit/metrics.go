package audit

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for the search and reporting engine
type Metrics struct {
	QueriesTotal     *prometheus.CounterVec
	QueryDuration    prometheus.Histogram
	ExportsTotal     *prometheus.CounterVec
	LinesScanned     prometheus.Counter
	LinesMalformed   prometheus.Counter
	FilesSkipped     prometheus.Counter
	ParseCacheHits   prometheus.Counter
	ParseCacheMisses prometheus.Counter
}

// NewMetrics creates and registers engine metrics on the given registerer
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audittrail_queries_total",
				Help: "Total number of audit trail queries",
			},
			[]string{"outcome"},
		),
		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "audittrail_query_duration_seconds",
				Help:    "Audit trail query duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audittrail_exports_total",
				Help: "Total number of CSV report exports",
			},
			[]string{"outcome"},
		),
		LinesScanned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audittrail_log_lines_scanned_total",
				Help: "Total number of audit log lines read",
			},
		),
		LinesMalformed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audittrail_log_lines_malformed_total",
				Help: "Total number of audit log lines dropped as unparseable",
			},
		),
		FilesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audittrail_log_files_skipped_total",
				Help: "Total number of audit log files skipped as unreadable",
			},
		),
		ParseCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audittrail_parse_cache_hits_total",
				Help: "Total number of per-file parse cache hits",
			},
		),
		ParseCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audittrail_parse_cache_misses_total",
				Help: "Total number of per-file parse cache misses",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.QueriesTotal,
			m.QueryDuration,
			m.ExportsTotal,
			m.LinesScanned,
			m.LinesMalformed,
			m.FilesSkipped,
			m.ParseCacheHits,
			m.ParseCacheMisses,
		)
	}

	return m
}
