// Package metrics defines and registers all custom Prometheus metrics for
// the dashboard engine. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dashboard"

// ── Layout metrics ───────────────────────────────────────────────────────────

// LayoutLoadsTotal counts gateway layout fetches, labelled by result
// ("ok" or "error").
var LayoutLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layout_loads_total",
		Help:      "Total number of layout fetches against the gateway.",
	},
	[]string{"result"},
)

// LayoutSavesTotal counts layout save attempts, labelled by result.
// Only "ok" saves increment a layout's version.
var LayoutSavesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "layout_saves_total",
		Help:      "Total number of layout save attempts against the gateway.",
	},
	[]string{"result"},
)

// ── Notification metrics ─────────────────────────────────────────────────────

// NotificationPollsTotal counts poll ticks, labelled by result:
// "ok", "error" (absorbed, retried next tick), or "skipped" (paused).
var NotificationPollsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notification_polls_total",
		Help:      "Total number of notification feed polls, labelled by result.",
	},
	[]string{"result"},
)

// NotificationsUnread is the derived unread count per user, recomputed from
// the cache after every mutation.
var NotificationsUnread = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notifications_unread",
		Help:      "Current unread visible notifications per user.",
	},
	[]string{"user_id"},
)

// ── Configuration metrics ────────────────────────────────────────────────────

// ConfigSetTotal counts Set calls; each one triggers exactly one
// notification round.
var ConfigSetTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_set_total",
		Help:      "Total number of configuration writes.",
	},
)

// ConfigHeartbeatsTotal counts heartbeat notification rounds.
var ConfigHeartbeatsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_heartbeats_total",
		Help:      "Total number of configuration heartbeat rounds.",
	},
)

// ConfigFanoutCallbacks counts individual subscriber callback invocations
// across all rounds.
var ConfigFanoutCallbacks = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_fanout_callbacks_total",
		Help:      "Total subscriber callbacks invoked across notification rounds.",
	},
)
