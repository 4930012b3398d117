// Package metrics declares the Prometheus collectors shared by both binaries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finance_ledger"

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route, method and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

var TransactionMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "transactions",
	Name:      "mutations_total",
	Help:      "Committed transaction mutations by operation and type.",
}, []string{"operation", "type"})

var TransactionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "transactions",
	Name:      "failures_total",
	Help:      "Rejected or failed transaction mutations by operation and reason.",
}, []string{"operation", "reason"})

var OutboxPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "outbox",
	Name:      "published_total",
	Help:      "Outbox publish attempts by resulting status.",
}, []string{"status"})

var JournalProjections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "journal",
	Name:      "projections_total",
	Help:      "Journal events handled by the projector, by outcome.",
}, []string{"outcome"})

// Mutation operations
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Failure reasons
const (
	ReasonValidation = "validation"
	ReasonNotFound   = "not_found"
	ReasonInternal   = "internal"
)

// Outbox publish statuses
const (
	PublishPublished = "published"
	PublishRetried   = "retried"
	PublishFailed    = "failed"
)

// Projection outcomes
const (
	OutcomeProjected  = "projected"
	OutcomeDuplicate  = "duplicate"
	OutcomeInvalid    = "invalid"
	OutcomeDeadLetter = "dead_letter"
	OutcomeError      = "error"
)

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
