// Package metrics defines all custom Prometheus metrics for the marketplace
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry at init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts successful registrations by role.
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of successful user registrations, by role.",
	},
	[]string{"role"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "failure" (bad credentials), or "blocked"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRejectionsTotal counts requests rejected by the middleware chain.
// Label:
//   - reason: "missing_token", "invalid_token", "user_missing",
//     "account_blocked", "role", "ownership", "email_unverified"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by authentication or authorization gates.",
	},
	[]string{"reason"},
)

// ── Marketplace metrics ───────────────────────────────────────────────────────

// BookingsCreatedTotal counts bookings created from accepted proposals.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// BookingTransitionsTotal counts booking status transitions by new status.
var BookingTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Total number of booking status transitions, by resulting status.",
	},
	[]string{"status"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts notification delivery outcomes.
// Label:
//   - result: "sent", "failed", or "dedup"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification deliveries, by result.",
	},
	[]string{"result"},
)
