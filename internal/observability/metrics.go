package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for feed searches.
type Metrics struct {
	FilesScanned   prometheus.Counter
	FilesSkipped   prometheus.Counter
	EntriesScanned prometheus.Counter
	EntriesSkipped *prometheus.CounterVec // labels: field
	EntriesMatched prometheus.Counter
	ReportsWritten prometheus.Counter

	SearchDuration prometheus.Histogram
	MatchesPerRun  prometheus.Histogram

	// Parse cache metrics.
	ParseCache *prometheus.CounterVec // labels: result={hit,miss}

	// Sink metrics.
	MatchesPublished prometheus.Counter
}

const namespace = "quake_search"

// NewMetrics creates and registers all search metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsFor(prometheus.DefaultRegisterer)
}

// NewMetricsFor creates the metrics and registers them with reg. One-shot CLI
// runs use a private registry so the textfile export holds only search metrics.
func NewMetricsFor(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_scanned_total",
			Help:      "Feed files read and parsed.",
		}),
		FilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_skipped_total",
			Help:      "Feed files skipped because they could not be parsed.",
		}),
		EntriesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_scanned_total",
			Help:      "Feed entries extracted into event records.",
		}),
		EntriesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_skipped_total",
			Help:      "Feed entries skipped because a required field was missing.",
		}, []string{"field"}),
		EntriesMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_matched_total",
			Help:      "Event records that satisfied a search query.",
		}),
		ReportsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_written_total",
			Help:      "Result reports written to disk.",
		}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of a complete scan of the feed directory.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		}),
		MatchesPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matches_per_search",
			Help:      "Number of matching records per search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		}),
		ParseCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_cache_total",
			Help:      "Parsed-document cache lookups by result.",
		}, []string{"result"}),
		MatchesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_published_total",
			Help:      "Matching records written to the Kafka topic.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FilesScanned,
		m.FilesSkipped,
		m.EntriesScanned,
		m.EntriesSkipped,
		m.EntriesMatched,
		m.ReportsWritten,
		m.SearchDuration,
		m.MatchesPerRun,
		m.ParseCache,
		m.MatchesPublished,
	}
}
