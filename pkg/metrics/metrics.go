package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apartguide_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// InvitationsIssued counts team member invitations created.
	InvitationsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apartguide_invitations_issued_total",
			Help: "Total number of team member invitations issued",
		},
	)

	// InvitationsActivated counts successful invitation activations.
	InvitationsActivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "apartguide_invitations_activated_total",
			Help: "Total number of invitations converted into accounts",
		},
	)

	// EmailsSent counts outbound template emails by template and delivery status (sent|failed).
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apartguide_emails_total",
			Help: "Total number of template emails dispatched",
		},
		[]string{"template", "status"},
	)

	// ActiveSessions tracks the number of live refresh-token sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apartguide_active_sessions",
			Help: "Number of active login sessions",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apartguide_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
