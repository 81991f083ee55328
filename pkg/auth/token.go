// Package auth issues and resolves chat identity tokens. Resolution is
// a bounded local computation (signature + expiry check); it never does
// network I/O and never fails a connection: bad tokens degrade to the
// guest identity.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"blogchat/pkg/logger"
)

// GuestName is the display identity used when no valid token is present.
const GuestName = "Guest"

// Resolver signs and verifies chat tokens.
type Resolver struct {
	secret []byte
	ttl    time.Duration
}

func NewResolver(secret string, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Resolver{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (r *Resolver) TTL() time.Duration { return r.ttl }

// Issue creates a signed HS256 token carrying the display username.
func (r *Resolver) Issue(username string) (string, error) {
	if len(r.secret) == 0 {
		return "", fmt.Errorf("no jwt secret configured")
	}
	claims := jwt.MapClaims{
		"username": username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(r.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(r.secret)
}

// Resolve returns the display name carried by token, or GuestName when
// the token is missing, malformed, expired, or signed with the wrong
// key. It never returns an error.
func (r *Resolver) Resolve(token string) string {
	if token == "" || len(r.secret) == 0 {
		return GuestName
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		logger.Debug("token_resolve_failed", "error", err)
		return GuestName
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return GuestName
	}
	if name, ok := claims["username"].(string); ok && name != "" {
		return name
	}
	return GuestName
}
