package hunt

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the hunt lifecycle.
type Metrics struct {
	Registry            *prometheus.Registry
	SearchDuration      *prometheus.HistogramVec
	OffersTotal         *prometheus.CounterVec
	SearchErrorsTotal   *prometheus.CounterVec
	CommitAttemptsTotal *prometheus.CounterVec
	CommitsTotal        *prometheus.CounterVec
	RunsTotal           prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealhound_search_duration_seconds",
			Help:    "Per-platform search phase latency, initialization included.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)
	offers := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealhound_offers_total",
			Help: "Total offers collected, by platform.",
		},
		[]string{"platform"},
	)
	searchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealhound_search_errors_total",
			Help: "Total search phase errors by platform and category.",
		},
		[]string{"platform", "category"},
	)
	commitAttempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealhound_commit_attempts_total",
			Help: "Total cart commit attempts, by platform.",
		},
		[]string{"platform"},
	)
	commits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealhound_commits_total",
			Help: "Completed commit cycles by platform and outcome.",
		},
		[]string{"platform", "outcome"},
	)
	runs := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dealhound_runs_total",
			Help: "Total hunt runs started.",
		},
	)

	registry.MustRegister(searchDuration, offers, searchErrors, commitAttempts, commits, runs)

	return &Metrics{
		Registry:            registry,
		SearchDuration:      searchDuration,
		OffersTotal:         offers,
		SearchErrorsTotal:   searchErrors,
		CommitAttemptsTotal: commitAttempts,
		CommitsTotal:        commits,
		RunsTotal:           runs,
	}
}

// ObserveSearch records one platform's search phase duration.
func (m *Metrics) ObserveSearch(platform string, d time.Duration) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues(platform).Observe(d.Seconds())
}

// AddOffers adds to the collected offer counter for a platform.
func (m *Metrics) AddOffers(platform string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.OffersTotal.WithLabelValues(platform).Add(float64(n))
}

// IncSearchError increments the search error counter for a category label.
func (m *Metrics) IncSearchError(platform, category string) {
	if m == nil {
		return
	}
	m.SearchErrorsTotal.WithLabelValues(platform, category).Inc()
}

// IncCommitAttempt increments the commit attempt counter.
func (m *Metrics) IncCommitAttempt(platform string) {
	if m == nil {
		return
	}
	m.CommitAttemptsTotal.WithLabelValues(platform).Inc()
}

// IncCommit records a finished commit cycle with its outcome label.
func (m *Metrics) IncCommit(platform, outcome string) {
	if m == nil {
		return
	}
	m.CommitsTotal.WithLabelValues(platform, outcome).Inc()
}

// IncRun increments the run counter.
func (m *Metrics) IncRun() {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
}
