package models

import "time"

// Message is one persisted chat message. Records are immutable once
// appended except for Weather, which is set at most once by the
// asynchronous enrichment task.
type Message struct {
	ID   string `json:"id"`
	Room string `json:"room"`
	// Username is the display name resolved at send time; messages keep
	// the name even if the author later changes it.
	Username string `json:"username"`
	Content  string `json:"content"`
	// TS is the server-assigned creation instant (UTC).
	TS time.Time `json:"timestamp"`
	// IPAddress is the client source address recorded for enrichment.
	IPAddress string `json:"ip_address,omitempty"`
	Weather   string `json:"weather,omitempty"`
}
