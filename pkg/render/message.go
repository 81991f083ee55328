package render

import (
	"crypto/md5"
	"fmt"
	"html"
	"strings"
	"time"

	"blogchat/pkg/models"
)

// Messages renders chat message fragments for websocket envelopes.
// It is stateless and safe for concurrent use.
type Messages struct{}

func NewMessages() *Messages { return &Messages{} }

// UsernameColor derives a stable HSL hue from a display name so the
// same author gets the same color on every page load.
func UsernameColor(username string) string {
	sum := md5.Sum([]byte(username))
	hue := (int(sum[0])<<8 | int(sum[1])) % 360
	return fmt.Sprintf("hsl(%d, 70%%, 45%%)", hue)
}

// FormatTimestamp renders a message time relative to now ("5 minutes
// ago"); older messages fall back to an absolute date in the viewer's
// timezone. Unknown or empty zones fall back to UTC.
func FormatTimestamp(t time.Time, zone string) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < 2*time.Minute:
		return "a minute ago"
	case d < time.Hour:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	case d < 2*time.Hour:
		return "an hour ago"
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	}
	loc := time.UTC
	if zone != "" {
		if l, err := time.LoadLocation(zone); err == nil {
			loc = l
		}
	}
	return t.In(loc).Format("Jan 2, 15:04")
}

// MessageHTML produces the fragment a browser appends to the chat
// pane. Content is escaped; only our own markup is emitted.
func (r *Messages) MessageHTML(m models.Message, viewerZone string) string {
	var b strings.Builder
	b.WriteString(`<div class="chat-message" data-id="`)
	b.WriteString(html.EscapeString(m.ID))
	b.WriteString(`"><span class="chat-user" style="color: `)
	b.WriteString(UsernameColor(m.Username))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(m.Username))
	b.WriteString(`</span><span class="chat-time">`)
	b.WriteString(FormatTimestamp(m.TS, viewerZone))
	b.WriteString(`</span><span class="chat-text">`)
	b.WriteString(html.EscapeString(m.Content))
	b.WriteString(`</span>`)
	if m.Weather != "" {
		b.WriteString(`<span class="chat-weather">`)
		b.WriteString(html.EscapeString(m.Weather))
		b.WriteString(`</span>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
