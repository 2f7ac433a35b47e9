package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "portfolio_scraper"

var (
	// ScrapesTotal counts finished profile scrapes by outcome (ok, empty, partial, failed, cached).
	ScrapesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scrapes_total",
		Help:      "Profile scrapes by outcome.",
	}, []string{"outcome"})

	// ScrapeDuration observes the wall time of a scrape, session open to close.
	ScrapeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Duration of profile scrapes.",
		Buckets:   []float64{1, 5, 10, 20, 30, 60, 120, 300},
	})

	// ChainsExtracted counts chains that made it into a snapshot.
	ChainsExtracted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chains_extracted_total",
		Help:      "Chains extracted into snapshots.",
	})

	// UnitFailures counts dropped extraction units by granularity.
	UnitFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unit_failures_total",
		Help:      "Extraction units dropped because of a failure.",
	}, []string{"unit"})

	// ReadinessTimeouts counts page readiness waits that expired.
	ReadinessTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "readiness_timeouts_total",
		Help:      "Readiness waits that timed out.",
	})

	// ActiveSessions is the number of page sessions currently open.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Open page sessions.",
	})
)

var registerOnce sync.Once

// MustRegisterMetrics registers every collector with the default registry. Safe to call repeatedly.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ScrapesTotal,
			ScrapeDuration,
			ChainsExtracted,
			UnitFailures,
			ReadinessTimeouts,
			ActiveSessions,
		)
	})
}
