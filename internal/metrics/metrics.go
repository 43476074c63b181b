package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_request_transitions_total",
			Help: "Lifecycle operations applied to service requests",
		},
		[]string{"operation", "outcome"},
	)

	MatchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_match_queries_total",
			Help: "Nearby-request match queries served",
		},
		[]string{"outcome"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_events_published_total",
			Help: "Status events pushed to the broker",
		},
		[]string{"status", "outcome"},
	)

	NotificationsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_notifications_recorded_total",
			Help: "Durable notifications written",
		},
	)

	LiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatch_live_connections",
			Help: "Open websocket subscriber connections",
		},
	)
)
