package weather

import (
	"context"
	"time"

	"blogchat/pkg/chat"
	"blogchat/pkg/logger"
	"blogchat/pkg/models"
)

// WeatherSaver persists an enrichment result onto an existing message.
type WeatherSaver interface {
	SetWeather(id, weather string) error
}

// Broadcaster fans an envelope out to a room's current members.
type Broadcaster interface {
	Broadcast(room string, v any)
}

// Enricher runs the asynchronous weather pipeline: wait, look up,
// persist, announce. Each message gets its own goroutine; nothing in
// the message path ever waits on this.
type Enricher struct {
	svc       *Service
	saver     WeatherSaver
	broadcast Broadcaster
	delay     time.Duration
}

func NewEnricher(svc *Service, saver WeatherSaver, broadcast Broadcaster, delay time.Duration) *Enricher {
	if delay < 0 {
		delay = 0
	}
	return &Enricher{svc: svc, saver: saver, broadcast: broadcast, delay: delay}
}

// Enrich schedules enrichment for a persisted message and returns
// immediately. Failures are logged and absorbed; the message simply
// stays un-enriched.
func (e *Enricher) Enrich(room string, m models.Message) {
	go e.run(room, m)
}

func (e *Enricher) run(room string, m models.Message) {
	if e.delay > 0 {
		time.Sleep(e.delay)
	}
	summary := e.svc.Lookup(context.Background(), m.IPAddress)
	if summary == "" {
		return
	}
	if err := e.saver.SetWeather(m.ID, summary); err != nil {
		logger.Debug("weather_save_skipped", "id", m.ID, "error", err.Error())
		return
	}
	e.broadcast.Broadcast(room, chat.NewWeatherUpdateEnvelope(m.ID, summary))
	enrichmentsTotal.Inc()
}
