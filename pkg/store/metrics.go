package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	appendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogchat_store_appends_total",
			Help: "Messages appended to the log, by room",
		},
		[]string{"room"},
	)

	fetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blogchat_store_fetches_total",
			Help: "History fetches served, by room",
		},
		[]string{"room"},
	)

	prunesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blogchat_store_pruned_messages_total",
			Help: "Messages removed by the retention runner",
		},
	)
)
