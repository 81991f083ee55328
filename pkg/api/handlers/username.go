package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"blogchat/pkg/auth"
	"blogchat/pkg/logger"
	"blogchat/pkg/utils"
	"blogchat/pkg/validation"
)

// RegisterUsername mounts the identity endpoint. A successful call
// issues a fresh chat token cookie; the open websocket keeps its old
// identity until the client reconnects.
func RegisterUsername(r *mux.Router, resolver *auth.Resolver) {
	r.HandleFunc("/api/set-username", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			utils.JSONError(w, http.StatusBadRequest, "invalid json")
			return
		}
		name, err := validation.Username(body.Username)
		if err != nil {
			utils.JSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		token, err := resolver.Issue(name)
		if err != nil {
			logger.Error("token_issue_failed", "error", err.Error())
			utils.JSONError(w, http.StatusInternalServerError, "could not issue token")
			return
		}
		auth.SetTokenCookie(w, token, resolver.TTL())
		logger.Info("username_set", "user", name)
		// token also in the body for clients that cannot send cookies
		// on the websocket handshake
		_ = utils.JSONWrite(w, http.StatusOK, map[string]string{"username": name, "token": token})
	}).Methods(http.MethodPost)
}
