package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Rules carries the configured bounds for inbound chat frames. Set once
// at startup; reads are unsynchronized by design.
type Rules struct {
	MaxMessageLen  int
	MaxUsernameLen int
	MaxRoomLen     int
}

var rules = Rules{MaxMessageLen: 280, MaxUsernameLen: 50, MaxRoomLen: 100}

func SetRules(r Rules) {
	if r.MaxMessageLen <= 0 {
		r.MaxMessageLen = 280
	}
	if r.MaxUsernameLen <= 0 {
		r.MaxUsernameLen = 50
	}
	if r.MaxRoomLen <= 0 {
		r.MaxRoomLen = 100
	}
	rules = r
}

// ErrEmptyBody marks a frame whose trimmed body is empty. Callers
// discard these silently; no error envelope is produced.
var ErrEmptyBody = errors.New("empty message body")

// TooLongError is returned for bodies over the configured limit; its
// message is suitable for sending back to the originating client.
type TooLongError struct{ Max int }

func (e *TooLongError) Error() string {
	return fmt.Sprintf("Message too long. Maximum %d characters allowed.", e.Max)
}

// Body trims surrounding whitespace and enforces the maximum body
// length in runes. It returns the normalized body.
func Body(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", ErrEmptyBody
	}
	if utf8.RuneCountInString(t) > rules.MaxMessageLen {
		return "", &TooLongError{Max: rules.MaxMessageLen}
	}
	return t, nil
}

// Username validates a display name for token issuance.
func Username(s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", errors.New("username is required")
	}
	if utf8.RuneCountInString(t) > rules.MaxUsernameLen {
		return "", fmt.Errorf("username exceeds %d characters", rules.MaxUsernameLen)
	}
	return t, nil
}

// Room normalizes a room slug from the handshake. Any non-empty string
// is a valid room; empty falls back to def. Overlong slugs are rejected
// so registry keys stay bounded.
func Room(s, def string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return def, nil
	}
	if utf8.RuneCountInString(t) > rules.MaxRoomLen {
		return "", fmt.Errorf("room slug exceeds %d characters", rules.MaxRoomLen)
	}
	return t, nil
}
