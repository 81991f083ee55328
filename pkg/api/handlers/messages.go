package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"blogchat/pkg/logger"
	"blogchat/pkg/models"
	"blogchat/pkg/store"
	"blogchat/pkg/utils"
	"blogchat/pkg/validation"
)

// messageView is the public shape of a stored message. The source
// address recorded for enrichment never leaves the server, matching
// what the websocket history snapshot exposes.
type messageView struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Weather   string    `json:"weather,omitempty"`
}

func toMessageViews(msgs []models.Message) []messageView {
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageView{
			ID:        m.ID,
			Room:      m.Room,
			Username:  m.Username,
			Content:   m.Content,
			Timestamp: m.TS,
			Weather:   m.Weather,
		})
	}
	return out
}

// RegisterMessages mounts the REST view of the message log. It serves
// the same records the websocket history snapshot does, for clients
// that only want to read.
func RegisterMessages(r *mux.Router, defaultRoom string, historyLimit int) {
	r.HandleFunc("/api/messages", func(w http.ResponseWriter, req *http.Request) {
		room, err := validation.Room(req.URL.Query().Get("room"), defaultRoom)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		limit := historyLimit
		if s := req.URL.Query().Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				utils.JSONError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			if n < limit {
				limit = n
			}
		}
		msgs, err := store.ListRecent(room, limit)
		if err != nil {
			logger.Error("messages_list_failed", "room", room, "error", err.Error())
			utils.JSONError(w, http.StatusInternalServerError, "list failed")
			return
		}
		logger.Debug("messages_list", "room", room, "count", len(msgs))
		_ = utils.JSONWrite(w, http.StatusOK, struct {
			Room     string        `json:"room"`
			Messages []messageView `json:"messages"`
		}{Room: room, Messages: toMessageViews(msgs)})
	}).Methods(http.MethodGet)
}
