package chat

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "blogchat_chat_connections",
		Help: "Currently connected chat clients per room.",
	}, []string{"room"})

	broadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogchat_chat_broadcasts_total",
		Help: "Envelopes fanned out per room.",
	}, []string{"room"})

	evictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogchat_chat_evictions_total",
		Help: "Members dropped because their send queue was full.",
	}, []string{"room"})

	messagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogchat_chat_messages_total",
		Help: "Messages accepted per room.",
	}, []string{"room"})

	rejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogchat_chat_rejected_total",
		Help: "Inbound messages rejected before persistence.",
	}, []string{"room", "reason"})
)
