package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionVerifications records token verification outcomes (valid|invalid|logged_out).
	SessionVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamforge_session_verifications_total",
			Help: "Total number of session token verifications",
		},
		[]string{"result"},
	)

	// SessionsIssued counts issued session tokens by role.
	SessionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamforge_sessions_issued_total",
			Help: "Total number of issued session tokens",
		},
		[]string{"role"},
	)

	// MembershipTransitions counts invitation/join request/teardown outcomes.
	MembershipTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamforge_membership_transitions_total",
			Help: "Total number of membership state transitions",
		},
		[]string{"operation", "result"},
	)

	// MatchesCreated counts newly materialised mutual matches.
	MatchesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teamforge_matches_created_total",
			Help: "Total number of mutual matches created",
		},
	)

	// UnitOfWork counts plan executions by mode (atomic|sequential) and result.
	UnitOfWork = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "teamforge_unit_of_work_total",
			Help: "Total number of write plan executions",
		},
		[]string{"plan", "mode", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "teamforge_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
