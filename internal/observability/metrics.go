// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodloop_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// WebSocketConnections is the gauge of active WebSocket connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodloop_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketRoomMembers is the gauge of room memberships across all rooms.
	WebSocketRoomMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "foodloop_websocket_room_members",
		Help: "Number of room memberships across all chat rooms",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodloop_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// FanoutPublishes counts room publishes by outcome. Failures are swallowed
	// at the call site; this counter is how they stay visible.
	FanoutPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodloop_fanout_publishes_total",
		Help: "Total number of room fan-out publishes by outcome",
	}, []string{"outcome"})

	// MessagesSent counts chat messages persisted via the send-message operation.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foodloop_chat_messages_sent_total",
		Help: "Total number of chat messages persisted",
	})
)
