package auth

import (
	"net/http"
	"time"
)

// CookieName is the browser cookie carrying the chat token.
const CookieName = "chat_token"

// SetTokenCookie attaches the chat token to the response.
func SetTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl / time.Second),
	})
}

// TokenFromRequest extracts the chat token from the cookie, falling
// back to a `token` query parameter for clients that cannot send
// cookies on the websocket handshake.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.URL.Query().Get("token")
}
