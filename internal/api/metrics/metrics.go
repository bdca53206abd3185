// Package metrics defines and registers all custom Prometheus metrics for the
// library catalog API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// ── Borrow workflow metrics ───────────────────────────────────────────────────

// BorrowsTotal counts borrow attempts by outcome.
// Label:
//   - outcome: "ok", "conflict" (copy already out), "not_found", or "error"
var BorrowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "borrows_total",
		Help:      "Total number of borrow attempts, labelled by outcome.",
	},
	[]string{"outcome"},
)

// ReturnsTotal counts return attempts by outcome.
// Label:
//   - outcome: "ok", "not_found", or "error"
var ReturnsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "returns_total",
		Help:      "Total number of return attempts, labelled by outcome.",
	},
	[]string{"outcome"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// BooksCreatedTotal counts catalog records created, bulk items included.
var BooksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "books_created_total",
		Help:      "Total number of books added to the catalog.",
	},
)

// CatalogCacheTotal counts catalog list cache lookups.
// Label:
//   - result: "hit" (served from cache) or "miss" (queried the store)
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of catalog list cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected requests at the auth boundary.
// Label:
//   - reason: "missing_header", "invalid_token", or "unknown_user"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by the auth middleware.",
	},
	[]string{"reason"},
)

// ── Audit trail metrics ───────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of entries waiting in each audit worker
// channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit entries pending in each writer channel.",
	},
	[]string{"worker_id"},
)

// AuditWriteErrorsTotal counts audit entries that failed to persist. The
// entries are dropped; the primary operation is unaffected.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit entries that could not be written.",
	},
)
