package render

import (
	"strings"
	"testing"
	"time"

	"blogchat/pkg/models"
)

func TestUsernameColorStable(t *testing.T) {
	a := UsernameColor("alice")
	b := UsernameColor("alice")
	if a != b {
		t.Fatalf("color not stable: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "hsl(") {
		t.Fatalf("unexpected color format: %q", a)
	}
}

func TestMessageHTMLEscapesContent(t *testing.T) {
	r := NewMessages()
	m := models.Message{
		ID:       "msg_1",
		Username: "<script>bob</script>",
		Content:  `<img src=x onerror="alert(1)">`,
		TS:       time.Now(),
	}
	out := r.MessageHTML(m, "")
	if strings.Contains(out, "<script>") || strings.Contains(out, "<img") {
		t.Fatalf("unescaped markup in output: %s", out)
	}
	if !strings.Contains(out, `data-id="msg_1"`) {
		t.Fatalf("missing message id: %s", out)
	}
}

func TestMessageHTMLIncludesWeather(t *testing.T) {
	r := NewMessages()
	m := models.Message{ID: "msg_2", Username: "alice", Content: "hi", TS: time.Now(), Weather: "☀️ 21°C"}
	out := r.MessageHTML(m, "")
	if !strings.Contains(out, "chat-weather") || !strings.Contains(out, "21°C") {
		t.Fatalf("weather missing: %s", out)
	}
}

func TestFormatTimestampRelative(t *testing.T) {
	now := time.Now()
	cases := map[string]time.Time{
		"just now":      now.Add(-10 * time.Second),
		"5 minutes ago": now.Add(-5 * time.Minute),
		"an hour ago":   now.Add(-90 * time.Minute),
		"3 hours ago":   now.Add(-3 * time.Hour),
	}
	for want, ts := range cases {
		if got := FormatTimestamp(ts, ""); got != want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", ts, got, want)
		}
	}
}

func TestFormatTimestampOldMessagesUseViewerZone(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ny := FormatTimestamp(ts, "America/New_York")
	utc := FormatTimestamp(ts, "")
	if ny == utc {
		t.Fatalf("zone ignored: %q == %q", ny, utc)
	}

	// unknown zones fall back to UTC rather than failing
	if got := FormatTimestamp(ts, "Not/AZone"); got != utc {
		t.Fatalf("bad zone handling: %q", got)
	}
}

func TestMarkdownRendering(t *testing.T) {
	out, err := Markdown("# Title\n\nsome **bold** text")
	if err != nil {
		t.Fatalf("Markdown: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestMinifyHTML(t *testing.T) {
	in := []byte("<p>  spaced   out  </p>")
	out := MinifyHTML(in)
	if len(out) == 0 || len(out) > len(in) {
		t.Fatalf("minify grew the document: %d -> %d", len(in), len(out))
	}
}

func TestPagesRenderPost(t *testing.T) {
	p, err := NewPages()
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}
	post := &models.Post{Title: "Hello", Slug: "hello", Content: "# Hello\n\nworld", Created: time.Now()}
	out, err := p.Post(post, "hello", "Guest")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "/ws/chat") || !strings.Contains(html, "Guest") {
		t.Fatalf("chat widget missing from page")
	}
}

func TestPagesRenderIndex(t *testing.T) {
	p, err := NewPages()
	if err != nil {
		t.Fatalf("NewPages: %v", err)
	}
	out, err := p.Index("My Blog", []*models.Post{
		{Title: "One", Slug: "one", Created: time.Now()},
	})
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	// minification may strip attribute quotes, so match the href value
	// and the anchor text rather than the quoted form
	html := string(out)
	if !strings.Contains(html, "href=/one") && !strings.Contains(html, `href="/one"`) {
		t.Fatalf("post link missing: %s", html)
	}
	if !strings.Contains(html, ">One</a>") {
		t.Fatalf("post title missing: %s", html)
	}
}
