// Package metrics provides Prometheus instrumentation for the moderation
// service: verdict and issue counters, score and latency histograms, and
// risk classification counts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// VerdictsTotal counts moderation verdicts by outcome: "approved",
	// "flagged", "review" or "auto_rejected".
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_verdicts_total",
		Help: "Total number of moderation verdicts",
	}, []string{"outcome"})

	// IssuesTotal counts detector findings by field and issue type.
	IssuesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_issues_total",
		Help: "Total number of moderation issues raised",
	}, []string{"field", "type"})

	// ModerationScore records the clamped display score of each verdict.
	ModerationScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "moderation_score",
		Help:    "Distribution of moderation scores (clamped to 0-100)",
		Buckets: []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// ModerationLatency records end-to-end review latency in seconds,
	// including the risk lookup and persistence.
	ModerationLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "moderation_latency_seconds",
		Help:    "Moderation request latency in seconds",
		Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})

	// RiskAssessmentsTotal counts donor risk assessments by level.
	RiskAssessmentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moderation_risk_assessments_total",
		Help: "Total number of donor risk assessments",
	}, []string{"level"})

	// RateLimitedTotal counts moderation requests rejected by the rate limiter.
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_rate_limited_total",
		Help: "Total number of rate limited moderation requests",
	})

	// PersistFailuresTotal counts verdicts that could not be written to the
	// listing store.
	PersistFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_persist_failures_total",
		Help: "Total number of failed verdict writes",
	})
)

func init() {
	prometheus.MustRegister(
		VerdictsTotal,
		IssuesTotal,
		ModerationScore,
		ModerationLatency,
		RiskAssessmentsTotal,
		RateLimitedTotal,
		PersistFailuresTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
