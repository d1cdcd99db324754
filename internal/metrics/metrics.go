// file: internal/metrics/metrics.go
// version: 2.0.0
// guid: 9f8e7d6c-5b4a-3210-9fed-cba876543210

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	reportsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petmatch",
		Name:      "reports_created_total",
		Help:      "Total number of reports submitted by kind",
	}, []string{"kind"})
	reportsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "petmatch",
		Name:      "reports_rejected_total",
		Help:      "Total number of report submissions rejected by validation, by field",
	}, []string{"field"})
	matchesFound = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "petmatch",
		Name:      "matches_found_total",
		Help:      "Total number of potential matches reported to users",
	})
	matchScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "petmatch",
		Name:      "match_score",
		Help:      "Distribution of scores of reported matches",
		Buckets:   prometheus.LinearBuckets(60, 5, 9), // threshold up to 100
	})
	matchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "petmatch",
		Name:      "match_duration_seconds",
		Help:      "Time spent scoring a report against its reference set",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs up to ~1.6s
	})

	reportsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "petmatch",
		Name:      "reports_total",
		Help:      "Current number of stored reports by kind",
	}, []string{"kind"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(reportsCreated, reportsRejected, matchesFound, matchScore, matchDuration, reportsGauge)
	})
}

// Report lifecycle helpers
func IncReportCreated(kind string)   { reportsCreated.WithLabelValues(kind).Inc() }
func IncReportRejected(field string) { reportsRejected.WithLabelValues(field).Inc() }

// ObserveMatches records one scoring pass and the scores it reported
func ObserveMatches(d time.Duration, scores []float64) {
	matchDuration.Observe(d.Seconds())
	matchesFound.Add(float64(len(scores)))
	for _, s := range scores {
		matchScore.Observe(s)
	}
}

// Gauges
func SetReports(kind string, n int) { reportsGauge.WithLabelValues(kind).Set(float64(n)) }
