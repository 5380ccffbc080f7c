// Package metrics defines and registers the custom Prometheus metrics of the
// authentication gate. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry through promauto when
// the package is loaded.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authgate"

// ── Login metrics ─────────────────────────────────────────────────────────────

// LoginsTotal counts login decisions.
// Labels:
//   - result: "accepted" or "rejected"
//   - method: "session", "bootstrap", "credentials", or "none" when rejected
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login decisions, by result and method.",
	},
	[]string{"result", "method"},
)

// RequestAuthFailuresTotal counts requests rejected by the identity middleware.
// Label:
//   - mode: "basic" or "proxy"
var RequestAuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_auth_failures_total",
		Help:      "Total number of requests whose identity could not be asserted.",
	},
	[]string{"mode"},
)

// ── Guard metrics ─────────────────────────────────────────────────────────────

// GuardDenialsTotal counts privileged operations refused by a guard.
// Label:
//   - guard: "admin" or "admin_or_uploader"
var GuardDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_denials_total",
		Help:      "Total number of requests denied by an authorization guard.",
	},
	[]string{"guard"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsCreatedTotal counts sessions issued by the login endpoint.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions issued.",
	},
)

// SessionsRevokedTotal counts sessions revoked through logout.
var SessionsRevokedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_revoked_total",
		Help:      "Total number of sessions revoked by logout.",
	},
)

// SessionsSweptTotal counts expired sessions purged by the background sweeper.
var SessionsSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_swept_total",
		Help:      "Total number of expired sessions purged.",
	},
)
