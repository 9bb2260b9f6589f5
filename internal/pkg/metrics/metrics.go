// Package metrics defines and registers all custom Prometheus metrics for the
// room booking API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry on package init via
// promauto; the /metrics endpoint exposes them next to the HTTP metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "roombooking"

// ── Booking metrics ───────────────────────────────────────────────────────────

// BookingsCreatedTotal counts admitted booking requests.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of booking requests admitted.",
	},
)

// BookingsRejectedTotal counts booking requests that were not admitted.
// Label:
//   - reason: "conflict", "room_not_found", "user_not_found", "invalid", "store_error"
var BookingsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_rejected_total",
		Help:      "Total number of booking requests rejected, by reason.",
	},
	[]string{"reason"},
)

// BookingsReplayedTotal counts requests answered from the idempotency store.
var BookingsReplayedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_replayed_total",
		Help:      "Total number of booking requests answered by Idempotency-Key replay.",
	},
)

// BookingTransitionsTotal counts status transitions.
// Label:
//   - status: the resulting status ("confirmed", "cancelled")
var BookingTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_transitions_total",
		Help:      "Total number of booking status transitions, by resulting status.",
	},
	[]string{"status"},
)

// BookingAdmissionDuration measures the locked check-and-insert section.
// Label:
//   - result: "admitted" or "rejected"
var BookingAdmissionDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "booking_admission_duration_seconds",
		Help:      "Duration of the transactional conflict check and insert.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// ── Notification metrics ──────────────────────────────────────────────────────

// NotificationsTotal counts delivery attempts.
// Labels:
//   - kind: message kind (e.g. "welcome", "booking_admin")
//   - result: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of notification delivery attempts, by kind and result.",
	},
	[]string{"kind", "result"},
)

// NotificationsDroppedTotal counts messages discarded because the queue was full.
var NotificationsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dropped_total",
		Help:      "Total number of notifications dropped because the dispatcher queue was full.",
	},
	[]string{"kind"},
)

// NotificationQueueDepth tracks messages waiting in the dispatcher.
var NotificationQueueDepth = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in the dispatcher queue.",
	},
)
