// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TestsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_tests_started_total",
			Help: "Total number of test sessions started",
		},
		[]string{"test_type"},
	)

	TestsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_tests_submitted_total",
			Help: "Total number of test submissions aggregated",
		},
		[]string{"test_type"},
	)

	AccessDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_access_denied_total",
			Help: "Total number of rejected test starts",
		},
		[]string{"reason"},
	)

	CollaboratorCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_collaborator_call_duration_seconds",
			Help: "Duration of backend collaborator calls in seconds",
		},
		[]string{"service", "status"},
	)

	AnalysisDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_analysis_degraded_total",
			Help: "Submissions served without AI enrichment",
		},
	)
)
