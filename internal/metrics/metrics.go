package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minichat_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "minichat_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	// Turn metrics
	TurnsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minichat_turns_started_total",
			Help: "Total streaming turns started",
		},
		[]string{"mode"},
	)

	TurnsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minichat_turns_completed_total",
			Help: "Total streaming turns completed",
		},
	)

	TurnsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minichat_turns_failed_total",
			Help: "Total streaming turns aborted mid-delivery",
		},
	)

	DeliveryUnits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minichat_delivery_units_total",
			Help: "Total delivery units sent over streams",
		},
	)

	// Store metrics
	MessagesStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minichat_messages_stored_total",
			Help: "Total messages appended to tenant histories",
		},
		[]string{"role"},
	)

	// Responder metrics
	FallbackReplies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minichat_fallback_replies_total",
			Help: "Total replies degraded to the fallback",
		},
	)

	RepliesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minichat_replies_generated_total",
			Help: "Total replies generated by engine",
		},
		[]string{"engine"},
	)
)
