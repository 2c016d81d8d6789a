// Package metrics exports ledger and HTTP metrics to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kudi"

// Collector implements wallet.MetricsCollector on Prometheus vectors.
type Collector struct {
	operationDuration *prometheus.HistogramVec
	operationResults  *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	balanceChanges    *prometheus.CounterVec
	errors            *prometheus.CounterVec
	transactions      *prometheus.CounterVec
	transactionAmount *prometheus.CounterVec
	volume            *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	webhooks          *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers the ledger metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Collector{
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "wallet",
				Name:      "operation_duration_seconds",
				Help:      "Wallet operation latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wallet",
				Name:      "operations_total",
				Help:      "Wallet operations partitioned by result.",
			},
			[]string{"operation", "result"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Cache lookups partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		balanceChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "wallet",
				Name:      "balance_changes_total",
				Help:      "Absolute committed balance movement per currency and direction.",
			},
			[]string{"currency", "direction"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Failed operations partitioned by error kind.",
			},
			[]string{"operation", "kind"},
		),
		transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "transactions_created_total",
				Help:      "Transactions created per type.",
			},
			[]string{"type"},
		),
		transactionAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "transactions_created_amount",
				Help:      "Sum of created transaction amounts per type.",
			},
			[]string{"type"},
		),
		volume: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "completed_volume",
				Help:      "Sum of completed transaction amounts per currency.",
			},
			[]string{"currency"},
		),
		transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "transitions_total",
				Help:      "State machine transitions per type and resulting status.",
			},
			[]string{"type", "status"},
		),
		webhooks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "events_total",
				Help:      "Webhook deliveries per provider and outcome.",
			},
			[]string{"provider", "outcome"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests per method, route and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

func (c *Collector) RecordOperationDuration(operation string, d time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordOperationResult(operation, result string) {
	c.operationResults.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordCacheHit(string) {
	c.cacheLookups.WithLabelValues("hit").Inc()
}

func (c *Collector) RecordCacheMiss(string) {
	c.cacheLookups.WithLabelValues("miss").Inc()
}

func (c *Collector) RecordBalanceChange(currency string, delta float64) {
	direction := "credit"
	if delta < 0 {
		direction = "debit"
		delta = -delta
	}
	c.balanceChanges.WithLabelValues(currency, direction).Add(delta)
}

func (c *Collector) RecordError(operation, kind string) {
	if kind == "" {
		kind = "internal"
	}
	c.errors.WithLabelValues(operation, kind).Inc()
}

func (c *Collector) RecordTransaction(txType string, amount float64) {
	c.transactions.WithLabelValues(txType).Inc()
	c.transactionAmount.WithLabelValues(txType).Add(amount)
}

func (c *Collector) RecordTransactionVolume(currency string, amount float64) {
	c.volume.WithLabelValues(currency).Add(amount)
}

func (c *Collector) RecordTransition(txType, status string) {
	c.transitions.WithLabelValues(txType, status).Inc()
}

func (c *Collector) RecordWebhook(provider, outcome string) {
	c.webhooks.WithLabelValues(provider, outcome).Inc()
}

// Middleware records request count and latency by route pattern.
func (c *Collector) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		path := ctx.Route().Path
		c.httpRequests.WithLabelValues(ctx.Method(), path, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(ctx.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}
