package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"blogchat/pkg/api/handlers"
	"blogchat/pkg/auth"
	"blogchat/pkg/chat"
	"blogchat/pkg/config"
	"blogchat/pkg/posts"
	"blogchat/pkg/render"
	"blogchat/pkg/sensor"
	"blogchat/pkg/telemetry"
)

// Deps carries everything the HTTP layer needs. The app wires these
// once at startup.
type Deps struct {
	Cfg      *config.Config
	Library  *posts.Library
	Pages    *render.Pages
	Sessions *chat.Sessions
	Resolver *auth.Resolver
	Hub      *chat.Hub
	Sensor   *sensor.Sensor
}

// Handler builds the application router:
//   - POST /api/set-username: issue a chat token cookie
//   - GET  /api/messages?room=<slug>&limit=<n>: recent messages
//   - GET  /ws/chat?room=<slug>: websocket chat session
//   - GET  /, /{slug}: blog pages
func Handler(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(telemetry.Middleware)
	r.Use(CORS(d.Cfg.Security.CORS.AllowedOrigins))
	r.Use(RateLimit(d.Cfg.Security.RateLimit.RPS, d.Cfg.Security.RateLimit.Burst))

	handlers.RegisterUsername(r, d.Resolver)
	handlers.RegisterAdmin(r, &handlers.Admin{
		Hub:    d.Hub,
		Sensor: d.Sensor,
		Keys:   d.Cfg.Security.AdminKeys,
		Ret:    d.Cfg.Retention,
	})
	handlers.RegisterMessages(r, d.Cfg.Chat.DefaultRoom, d.Cfg.Chat.HistoryLimit)
	handlers.RegisterWS(r, &handlers.WS{
		Sessions:     d.Sessions,
		DefaultRoom:  d.Cfg.Chat.DefaultRoom,
		WriteTimeout: d.Cfg.Chat.WriteTimeout.Duration(),
		PongTimeout:  d.Cfg.Chat.PongTimeout.Duration(),
		Origins:      d.Cfg.Security.CORS.AllowedOrigins,
	})

	// Pages go last: the slug route matches everything at the root.
	handlers.RegisterPages(r, &handlers.Pages{
		Library:   d.Library,
		Renderer:  d.Pages,
		Resolver:  d.Resolver,
		SiteTitle: d.Cfg.Content.SiteTitle,
	})
	return r
}

// Timeouts used by the outer http.Server. Kept here so the health
// probe command and the app agree.
const (
	ReadHeaderTimeout = 5 * time.Second
	IdleTimeout       = 120 * time.Second
)
