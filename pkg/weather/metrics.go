package weather

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var enrichmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "blogchat_weather_enrichments_total",
	Help: "Messages successfully enriched with weather data.",
})
