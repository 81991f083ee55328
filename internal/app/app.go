package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"blogchat/internal/retention"
	"blogchat/pkg/auth"
	"blogchat/pkg/chat"
	"blogchat/pkg/config"
	"blogchat/pkg/models"
	"blogchat/pkg/posts"
	"blogchat/pkg/render"
	"blogchat/pkg/sensor"
	"blogchat/pkg/state"
	"blogchat/pkg/store"
	"blogchat/pkg/validation"
	"blogchat/pkg/weather"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string

	library  *posts.Library
	pages    *render.Pages
	hub      *chat.Hub
	sessions *chat.Sessions
	resolver *auth.Resolver
	sensor   *sensor.Sensor

	srv *http.Server
}

// New initializes everything that does not need a running context:
// config validation, the message store, the post library, and the chat
// plumbing. Call Run to start the HTTP server and block until
// shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	if err := validateConfig(eff); err != nil {
		return nil, err
	}
	cfg := eff.Config

	validation.SetRules(validation.Rules{MaxMessageLen: cfg.Chat.MaxMessageLen})

	if err := state.Init(eff.DBPath); err != nil {
		return nil, fmt.Errorf("state layout under %s: %w", eff.DBPath, err)
	}
	if err := store.Open(state.PathsVar.Store); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", state.PathsVar.Store, err)
	}

	library := posts.NewLibrary(eff.ContentDir)
	if err := library.Load(); err != nil {
		return nil, err
	}
	pages, err := render.NewPages()
	if err != nil {
		return nil, err
	}

	resolver := auth.NewResolver(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration())
	hub := chat.NewHub()

	var enricher chat.Enricher
	if cfg.Weather.Enabled {
		svc := weather.NewService(cfg.Weather.GeoURL, cfg.Weather.WeatherURL, cfg.Weather.CacheTTL.Duration(), cfg.Weather.CacheSize)
		enricher = weather.NewEnricher(svc, storeSaver{}, hub, cfg.Weather.Delay.Duration())
	}

	sessions := chat.NewSessions(hub, storeLog{}, resolver, render.NewMessages(), enricher, chat.SessionConfig{
		HistoryLimit: cfg.Chat.HistoryLimit,
		SendBuffer:   cfg.Chat.SendBuffer,
		PongTimeout:  cfg.Chat.PongTimeout.Duration(),
		RateRPS:      cfg.Chat.RateLimit.RPS,
		RateBurst:    cfg.Chat.RateLimit.Burst,
	})

	return &App{
		eff:       eff,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		library:   library,
		pages:     pages,
		hub:       hub,
		sessions:  sessions,
		resolver:  resolver,
		sensor:    sensor.NewSensor(eff.DBPath, 15*time.Second),
	}, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled or a
// fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	a.sensor.Start()
	defer a.sensor.Stop()

	stopRetention, err := retention.Start(ctx, a.eff.Config)
	if err != nil {
		return err
	}
	defer stopRetention()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		return err
	}
}

// shutdown disconnects chat clients, stops the HTTP server, and closes
// the store.
func (a *App) shutdown() {
	a.hub.CloseAll()
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer cancel()
		_ = a.srv.Shutdown(ctx)
	}
	_ = store.Close()
}

// storeLog and storeSaver adapt the package-level store functions to
// the interfaces the chat and weather layers accept.
type storeLog struct{}

func (storeLog) Append(room, username, content, addr string) (models.Message, error) {
	return store.Append(room, username, content, addr)
}

func (storeLog) ListRecent(room string, limit int) ([]models.Message, error) {
	return store.ListRecent(room, limit)
}

type storeSaver struct{}

func (storeSaver) SetWeather(id, weather string) error {
	return store.SetWeather(id, weather)
}
