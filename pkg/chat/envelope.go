package chat

import "blogchat/pkg/models"

// Envelope type discriminators on the wire.
const (
	TypeHistory       = "history"
	TypeMessage       = "message"
	TypeError         = "error"
	TypeWeatherUpdate = "weather_update"
)

// HistoryEntry is one message record inside a history snapshot. Own is
// computed per viewer, so history envelopes are never shared between
// clients.
type HistoryEntry struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	Timestamp string `json:"timestamp"`
	Weather   string `json:"weather,omitempty"`
	Own       bool   `json:"own"`
}

// HistoryEnvelope is sent exactly once per session, before any live
// message.
type HistoryEnvelope struct {
	Type     string         `json:"type"`
	Messages []HistoryEntry `json:"messages"`
}

// MessageEnvelope carries one live message to every member of a room.
type MessageEnvelope struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	Content   string `json:"content"`
	HTML      string `json:"html,omitempty"`
	Timestamp string `json:"timestamp"`
	Weather   string `json:"weather,omitempty"`
}

// ErrorEnvelope is sent to the originating connection only.
type ErrorEnvelope struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WeatherUpdateEnvelope announces a completed enrichment for an
// already-broadcast message.
type WeatherUpdateEnvelope struct {
	Type      string `json:"type"`
	MessageID string `json:"message_id"`
	Weather   string `json:"weather"`
}

func NewHistoryEnvelope(entries []HistoryEntry) HistoryEnvelope {
	if entries == nil {
		entries = []HistoryEntry{}
	}
	return HistoryEnvelope{Type: TypeHistory, Messages: entries}
}

func NewMessageEnvelope(m models.Message, html string) MessageEnvelope {
	return MessageEnvelope{
		Type:      TypeMessage,
		ID:        m.ID,
		Username:  m.Username,
		Content:   m.Content,
		HTML:      html,
		Timestamp: m.TS.Format(timestampLayout),
		Weather:   m.Weather,
	}
}

func NewErrorEnvelope(msg string) ErrorEnvelope {
	return ErrorEnvelope{Type: TypeError, Message: msg}
}

func NewWeatherUpdateEnvelope(messageID, weather string) WeatherUpdateEnvelope {
	return WeatherUpdateEnvelope{Type: TypeWeatherUpdate, MessageID: messageID, Weather: weather}
}

// timestampLayout is RFC3339 with sub-second precision, matching what
// browser clients parse with Date().
const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"
