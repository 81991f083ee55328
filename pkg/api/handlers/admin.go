package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"blogchat/internal/retention"
	"blogchat/pkg/chat"
	"blogchat/pkg/config"
	"blogchat/pkg/logger"
	"blogchat/pkg/sensor"
	"blogchat/pkg/utils"
)

// Admin serves operator-only endpoints. All routes require a key from
// security.admin_keys in the X-Admin-Key header; with no keys
// configured every request is refused.
type Admin struct {
	Hub    *chat.Hub
	Sensor *sensor.Sensor
	Keys   []string
	Ret    config.RetentionConfig
}

// RegisterAdmin mounts the admin routes.
func RegisterAdmin(r *mux.Router, a *Admin) {
	r.HandleFunc("/api/admin/stats", a.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/admin/retention/run", a.runRetention).Methods(http.MethodPost)
	logger.Info("admin_routes_registered", "enabled", len(a.Keys) > 0)
}

func (a *Admin) authorized(r *http.Request) bool {
	key := r.Header.Get("X-Admin-Key")
	if key == "" {
		return false
	}
	for _, k := range a.Keys {
		if k == key {
			return true
		}
	}
	return false
}

type roomStat struct {
	Room    string `json:"room"`
	Members int    `json:"members"`
}

func (a *Admin) stats(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	reg := a.Hub.Registry()
	rooms := make([]roomStat, 0)
	for _, room := range reg.Rooms() {
		rooms = append(rooms, roomStat{Room: room, Members: reg.Count(room)})
	}
	out := struct {
		Rooms  []roomStat      `json:"rooms"`
		System sensor.Snapshot `json:"system"`
	}{Rooms: rooms}
	if a.Sensor != nil {
		out.System = a.Sensor.Snapshot()
	}
	_ = utils.JSONWrite(w, http.StatusOK, out)
}

// runRetention triggers an immediate purge with the configured period.
func (a *Admin) runRetention(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		utils.JSONError(w, http.StatusForbidden, "forbidden")
		return
	}
	period, err := retention.ParsePeriod(a.Ret.Period)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := retention.RunOnce(period, a.Ret.BatchSize, a.Ret.DryRun); err != nil {
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"status": "ok"})
}
