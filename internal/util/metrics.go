package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AvailabilityChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_checks_total",
		Help: "Total number of availability checks by overall status",
	}, []string{"status"})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Total number of replenishment orders placed",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order placements",
	}, []string{"reason"})

	OrderTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Total number of accepted order status transitions",
	}, []string{"to"})

	OrderTransitionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_status_transitions_rejected_total",
		Help: "Total number of rejected order status transitions",
	})

	StockConsumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_consumed_balloons_total",
		Help: "Total balloons consumed into designs",
	})

	StockReplenishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_replenished_balloons_total",
		Help: "Total balloons credited from fulfilled orders",
	})

	InsufficientStockTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_consume_insufficient_total",
		Help: "Total consumption attempts rejected for insufficient stock",
	})

	LowStockEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_events_total",
		Help: "Total mutations that left a stock record low or out of stock",
	})

	ReconcileLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventory_reconcile_latency_seconds",
		Help:    "Latency of inventory consume/replenish operations",
		Buckets: prometheus.DefBuckets,
	})

	PaymentIntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_intents_total",
		Help: "Total payment intents by outcome",
	}, []string{"status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
