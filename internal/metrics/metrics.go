// Package metrics defines and registers all custom Prometheus metrics for the
// kpitools web apps. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics endpoints expose them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kpitools"

// ── Access gate metrics ───────────────────────────────────────────────────────

// GateDecisionsTotal counts access-gate outcomes on the dashboard.
// Label:
//   - decision: "authorized", "login_required", "invalid_token", "no_role",
//     "login_completed"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of dashboard access-gate decisions, by outcome.",
	},
	[]string{"decision"},
)

// PageRendersTotal counts dashboard page renders.
// Label:
//   - page: route name ("home", "analyze", "not_found", "login")
var PageRendersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_renders_total",
		Help:      "Total number of dashboard pages rendered, by page.",
	},
	[]string{"page"},
)

// PageCacheTotal counts page-fragment cache lookups.
// Label:
//   - result: "hit" or "miss"
var PageCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_cache_total",
		Help:      "Total number of page cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TaskOperationsTotal counts task CRUD operations on the task app.
// Labels:
//   - operation: "create", "list", "update", "delete"
//   - outcome: "ok", "validation", "forbidden", "invalid_state", "not_found",
//     "store_error"
var TaskOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_operations_total",
		Help:      "Total number of task operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

// LoginsTotal counts task-app login attempts.
// Label:
//   - result: "ok" or "failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of task-app login attempts, by result.",
	},
	[]string{"result"},
)
