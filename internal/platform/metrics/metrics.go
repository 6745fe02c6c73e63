// Package metrics holds the relay's Prometheus instruments and the /metrics handler
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sharerelay"

var (
	// EventsPublished counts notifications accepted onto a route queue
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Notifications enqueued for a routing key",
		},
		[]string{"event"},
	)

	// EventsDropped counts notifications lost to a full route queue
	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Notifications dropped because the route queue was full",
		},
	)

	// SSESubscribers is the number of open /events streams
	SSESubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_subscribers",
			Help:      "Open event streams",
		},
	)

	// PersistAttempts counts write attempts by table and result
	// result is one of ok, duplicate, column_removed, fallback, failed
	PersistAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_attempts_total",
			Help:      "Remote store write attempts by outcome",
		},
		[]string{"table", "result"},
	)

	// PersistColumnsRemoved counts columns the self-healing upsert dropped
	PersistColumnsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_columns_removed_total",
			Help:      "Row fields removed because the target table lacks the column",
		},
		[]string{"table", "column"},
	)

	// BreakerState mirrors gobreaker state: 0 closed, 1 half-open, 2 open
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	// LedgerRows counts ledger entries by result: written, failed or dropped
	LedgerRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_rows_total",
			Help:      "Share ledger entries by write result",
		},
		[]string{"result"},
	)

	// Shares counts accepted submissions by classification
	Shares = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shares_total",
			Help:      "Accepted share submissions",
		},
		[]string{"kind", "platform"},
	)
)

// Handler serves the default registry
func Handler() http.Handler { return promhttp.Handler() }
