// Package metrics defines the custom Prometheus metrics for the gatekeeper
// service. It is the single source of truth for metric names, labels, and
// help strings; promauto registers everything with the default registry at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gatekeeper"

// LoginAttemptsTotal counts authentication attempts.
// Label:
//   - result: "success", "failure", or "throttled"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthzDecisionsTotal counts path authorization decisions.
// Label:
//   - decision: "allowed" or "denied"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of path authorization decisions, by outcome.",
	},
	[]string{"decision"},
)

// SessionsEstablishedTotal counts sessions created on successful login.
var SessionsEstablishedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_established_total",
		Help:      "Total number of login sessions established.",
	},
)

// SessionsClearedTotal counts sessions removed on logout.
var SessionsClearedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_cleared_total",
		Help:      "Total number of login sessions cleared.",
	},
)

// AuthenticationDuration measures how long one credential check takes,
// covering the user lookup plus the hash derivation. Useful for tuning the
// iteration count against login latency.
var AuthenticationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "authentication_duration_seconds",
		Help:      "Duration of credential verification, including the credential store lookup.",
		Buckets:   prometheus.DefBuckets,
	},
)
