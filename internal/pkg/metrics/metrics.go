// Package metrics defines and registers the custom Prometheus metrics of the
// travel request API. It is the single source of truth for metric names,
// labels and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "viajes"

// ── Travel request metrics ───────────────────────────────────────────────────

// TravelRequestsCreatedTotal counts newly created travel requests.
// Label:
//   - tipo_viaje: "negocios", "turismo" or "otros"
var TravelRequestsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_requests_created_total",
		Help:      "Total number of travel requests created, by trip type.",
	},
	[]string{"tipo_viaje"},
)

// TravelRequestsUpdatedTotal counts successful updates, by resulting status.
var TravelRequestsUpdatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_requests_updated_total",
		Help:      "Total number of travel requests updated, by resulting status.",
	},
	[]string{"estado"},
)

// TravelRequestsDeletedTotal counts deleted travel requests.
var TravelRequestsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "travel_requests_deleted_total",
		Help:      "Total number of travel requests deleted.",
	},
)

// ── Auth metrics ─────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts authentication attempts.
// Labels:
//   - method: "register", "login" or "github"
//   - result: "success" or a short failure reason
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// ── Store metrics ────────────────────────────────────────────────────────────

// StoreWritesTotal counts collection rewrites.
// Labels:
//   - collection: the collection name (e.g. "users", "solicitudes")
//   - result: "ok" or "error"
var StoreWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_writes_total",
		Help:      "Total number of collection writes, by collection and result.",
	},
	[]string{"collection", "result"},
)

// WriteQueueDepth tracks the jobs waiting on each single-writer queue.
var WriteQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "write_queue_depth",
		Help:      "Current number of jobs pending in each writer queue.",
	},
	[]string{"queue"},
)

// WriteDuration measures how long a queued write job runs once dequeued.
var WriteDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "write_duration_seconds",
		Help:      "Duration of queued write jobs from dequeue to completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"queue"},
)
