package chat

import (
	"strings"
	"time"

	"blogchat/pkg/logger"
	"blogchat/pkg/models"
	"blogchat/pkg/validation"
)

// MessageStore is the durable log a session appends to and replays
// from. Append must not return until the record is safe on disk.
type MessageStore interface {
	Append(room, username, content, addr string) (models.Message, error)
	ListRecent(room string, limit int) ([]models.Message, error)
}

// IdentityResolver turns a bearer credential into a display name. It
// never fails; absent or invalid credentials resolve to a guest name.
type IdentityResolver interface {
	Resolve(token string) string
}

// HTMLRenderer produces the pre-rendered fragment embedded in message
// envelopes. zone is the viewer's IANA timezone, "" for server-local.
type HTMLRenderer interface {
	MessageHTML(m models.Message, viewerZone string) string
}

// Enricher augments an already-persisted, already-broadcast message
// asynchronously. Implementations must return immediately.
type Enricher interface {
	Enrich(room string, m models.Message)
}

// SessionConfig carries the protocol knobs a session needs.
type SessionConfig struct {
	HistoryLimit int
	SendBuffer   int
	PongTimeout  time.Duration
	RateRPS      float64
	RateBurst    int
}

// Sessions runs the per-connection chat protocol: history snapshot
// first, then the live loop of validate, append, broadcast.
type Sessions struct {
	hub      *Hub
	store    MessageStore
	resolver IdentityResolver
	renderer HTMLRenderer
	enricher Enricher // may be nil
	cfg      SessionConfig
}

func NewSessions(hub *Hub, store MessageStore, resolver IdentityResolver, renderer HTMLRenderer, enricher Enricher, cfg SessionConfig) *Sessions {
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	return &Sessions{hub: hub, store: store, resolver: resolver, renderer: renderer, enricher: enricher, cfg: cfg}
}

// Run drives one connection from handshake to close. It blocks until
// the peer disconnects or the connection fails, and always leaves the
// registry clean on the way out.
func (s *Sessions) Run(conn Conn, room, token string) {
	username := s.resolver.Resolve(token)
	client := NewClient(conn, room, username, s.cfg.SendBuffer, s.cfg.RateRPS, s.cfg.RateBurst)

	go client.WritePump(s.cfg.PongTimeout)
	defer func() {
		s.hub.Leave(client)
		client.Close()
		logger.Info("chat_session_closed", "room", room, "user", username, "remote", conn.RemoteAddr())
	}()

	logger.Info("chat_session_opened", "room", room, "user", username, "remote", conn.RemoteAddr())

	// Registration and the history snapshot are one atomic step with
	// respect to broadcasts, so nothing lands ahead of the snapshot or
	// shows up in both.
	if !s.hub.JoinAndReplay(client, func() bool { return s.sendHistory(client) }) {
		return
	}

	for {
		text, err := conn.ReadText()
		if err != nil {
			return
		}
		s.handleFrame(client, text)
	}
}

// sendHistory replays the most recent messages, oldest first, as a
// single envelope. A replay failure degrades to an empty snapshot
// rather than killing the connection.
func (s *Sessions) sendHistory(c *Client) bool {
	recent, err := s.store.ListRecent(c.Room(), s.cfg.HistoryLimit)
	if err != nil {
		logger.Error("chat_history_failed", "room", c.Room(), "error", err.Error())
		recent = nil
	}
	entries := make([]HistoryEntry, 0, len(recent))
	for _, m := range recent {
		e := HistoryEntry{
			ID:        m.ID,
			Username:  m.Username,
			Content:   m.Content,
			Timestamp: m.TS.Format(timestampLayout),
			Weather:   m.Weather,
			Own:       m.Username == c.Username(),
		}
		if s.renderer != nil {
			e.HTML = s.renderer.MessageHTML(m, c.Zone())
		}
		entries = append(entries, e)
	}
	return c.Send(NewHistoryEnvelope(entries))
}

// handleFrame processes one inbound text frame: peel the timezone
// prefix, validate, persist, then fan out. Persistence strictly
// precedes visibility.
func (s *Sessions) handleFrame(c *Client, text string) {
	text = s.applyZonePrefix(c, text)

	body, err := validation.Body(text)
	if err != nil {
		if tooLong, ok := err.(*validation.TooLongError); ok {
			rejectedTotal.WithLabelValues(c.Room(), "too_long").Inc()
			c.Send(NewErrorEnvelope(tooLong.Error()))
		}
		// Empty frames are dropped silently.
		return
	}

	// Only frames that would actually produce a message spend a rate
	// token; zone announcements and blank frames stay free.
	if !c.AllowMessage() {
		rejectedTotal.WithLabelValues(c.Room(), "rate_limited").Inc()
		c.Send(NewErrorEnvelope("You are sending messages too quickly. Slow down."))
		return
	}

	msg, err := s.store.Append(c.Room(), c.Username(), body, c.Addr())
	if err != nil {
		logger.Error("chat_append_failed", "room", c.Room(), "error", err.Error())
		c.Send(NewErrorEnvelope("Message could not be saved. Try again."))
		return
	}
	messagesTotal.WithLabelValues(c.Room()).Inc()

	var html string
	if s.renderer != nil {
		html = s.renderer.MessageHTML(msg, c.Zone())
	}
	s.hub.Broadcast(c.Room(), NewMessageEnvelope(msg, html))

	if s.enricher != nil {
		s.enricher.Enrich(c.Room(), msg)
	}
}

// applyZonePrefix strips a "tz:<zone>|" prefix from a frame, recording
// the zone on the connection it arrived on. The remainder is the
// actual message text, which may be empty when the client only wants
// to announce its zone.
func (s *Sessions) applyZonePrefix(c *Client, text string) string {
	if !strings.HasPrefix(text, "tz:") {
		return text
	}
	rest := text[len("tz:"):]
	zone, body, found := strings.Cut(rest, "|")
	if !found {
		return text
	}
	if zone != "" {
		if _, err := time.LoadLocation(zone); err == nil {
			c.SetZone(zone)
		}
	}
	return body
}
