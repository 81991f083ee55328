package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"blogchat/pkg/auth"
	"blogchat/pkg/chat"
	"blogchat/pkg/logger"
	"blogchat/pkg/utils"
	"blogchat/pkg/validation"
)

// WS upgrades chat handshakes and hands the socket to the session
// protocol.
type WS struct {
	Sessions     *chat.Sessions
	DefaultRoom  string
	WriteTimeout time.Duration
	PongTimeout  time.Duration
	// Origins restricts upgrade requests; empty allows same-origin only.
	Origins []string

	upgrader websocket.Upgrader
}

// RegisterWS mounts the websocket endpoint.
func RegisterWS(r *mux.Router, ws *WS) {
	ws.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     ws.checkOrigin,
	}
	r.HandleFunc("/ws/chat", ws.serve).Methods(http.MethodGet)
}

func (ws *WS) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(ws.Origins) == 0 {
		return sameOrigin(origin, r.Host)
	}
	for _, o := range ws.Origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}

func sameOrigin(origin, host string) bool {
	return origin == "http://"+host || origin == "https://"+host
}

func (ws *WS) serve(w http.ResponseWriter, r *http.Request) {
	room, err := validation.Room(r.URL.Query().Get("room"), ws.DefaultRoom)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	token := auth.TokenFromRequest(r)

	sock, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logger.Debug("ws_upgrade_failed", "error", err.Error())
		return
	}
	conn := chat.NewWSConn(sock, utils.ClientIP(r), ws.WriteTimeout, ws.PongTimeout)
	ws.Sessions.Run(conn, room, token)
}
