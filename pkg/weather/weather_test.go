package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"blogchat/pkg/models"
)

func TestTTLCacheExpiry(t *testing.T) {
	c := newTTLCache(time.Hour, 10)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.put("k", "v")
	if v, ok := c.get("k"); !ok || v != "v" {
		t.Fatalf("get after put: %q %v", v, ok)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := c.get("k"); ok {
		t.Fatalf("expired entry served")
	}
}

func TestTTLCacheBounded(t *testing.T) {
	c := newTTLCache(time.Hour, 2)
	c.put("a", "1")
	c.put("b", "2")
	c.put("c", "3")
	if c.len() > 2 {
		t.Fatalf("cache exceeded bound: %d", c.len())
	}
}

func TestIconMapping(t *testing.T) {
	cases := map[string]string{
		"Patchy light rain":  "🌧️",
		"Sunny":              "☀️",
		"Thundery outbreaks": "⛈️",
		"Overcast":           "☁️",
		"Moderate snow":      "❄️",
		"Something odd":      "🌡️",
	}
	for desc, want := range cases {
		if got := icon(desc); got != want {
			t.Fatalf("icon(%q) = %q, want %q", desc, got, want)
		}
	}
}

func newStubService(t *testing.T) (*Service, *int) {
	t.Helper()
	calls := new(int)
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		_, _ = w.Write([]byte(`{"city":"Berlin"}`))
	}))
	t.Cleanup(geo.Close)
	wttr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "Berlin") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"current_condition":[{"temp_C":"21","weatherDesc":[{"value":"Sunny"}]}]}`))
	}))
	t.Cleanup(wttr.Close)
	return NewService(geo.URL+"/%s/json/", wttr.URL+"/%s", time.Hour, 10), calls
}

func TestLookupHappyPath(t *testing.T) {
	svc, _ := newStubService(t)
	got := svc.Lookup(context.Background(), "203.0.113.9:5000")
	if got != "☀️ 21°C" {
		t.Fatalf("Lookup = %q", got)
	}
}

func TestLookupCachesByIP(t *testing.T) {
	svc, calls := newStubService(t)
	svc.Lookup(context.Background(), "203.0.113.9")
	svc.Lookup(context.Background(), "203.0.113.9")
	if *calls != 1 {
		t.Fatalf("geo called %d times, want 1", *calls)
	}
}

func TestLookupSkipsPrivateAddresses(t *testing.T) {
	svc, calls := newStubService(t)
	for _, addr := range []string{"127.0.0.1:9999", "10.1.2.3", "192.168.0.4:80", "not-an-ip", ""} {
		if got := svc.Lookup(context.Background(), addr); got != "" {
			t.Fatalf("Lookup(%q) = %q, want empty", addr, got)
		}
	}
	if *calls != 0 {
		t.Fatalf("upstream contacted for private address")
	}
}

func TestLookupUpstreamFailureIsEmpty(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer down.Close()
	svc := NewService(down.URL+"/%s/json/", down.URL+"/%s", time.Hour, 10)
	if got := svc.Lookup(context.Background(), "203.0.113.9"); got != "" {
		t.Fatalf("Lookup = %q, want empty", got)
	}
}

type recordingSaver struct {
	mu   sync.Mutex
	ids  []string
	fail bool
}

func (r *recordingSaver) SetWeather(id, weather string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return context.Canceled
	}
	r.ids = append(r.ids, id)
	return nil
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []any
	done  chan struct{}
}

func (r *recordingBroadcaster) Broadcast(room string, v any) {
	r.mu.Lock()
	r.calls = append(r.calls, v)
	r.mu.Unlock()
	select {
	case r.done <- struct{}{}:
	default:
	}
}

func TestEnricherPersistsThenBroadcasts(t *testing.T) {
	svc, _ := newStubService(t)
	saver := &recordingSaver{}
	bc := &recordingBroadcaster{done: make(chan struct{}, 1)}
	e := NewEnricher(svc, saver, bc, 0)

	e.Enrich("general", models.Message{ID: "msg_1", IPAddress: "203.0.113.9"})

	select {
	case <-bc.done:
	case <-time.After(3 * time.Second):
		t.Fatalf("broadcast never happened")
	}
	saver.mu.Lock()
	defer saver.mu.Unlock()
	if len(saver.ids) != 1 || saver.ids[0] != "msg_1" {
		t.Fatalf("save not recorded: %#v", saver.ids)
	}
}

func TestEnricherSkipsBroadcastWhenSaveFails(t *testing.T) {
	svc, _ := newStubService(t)
	saver := &recordingSaver{fail: true}
	bc := &recordingBroadcaster{done: make(chan struct{}, 1)}
	e := NewEnricher(svc, saver, bc, 0)

	e.Enrich("general", models.Message{ID: "msg_1", IPAddress: "203.0.113.9"})

	select {
	case <-bc.done:
		t.Fatalf("broadcast despite failed save")
	case <-time.After(300 * time.Millisecond):
	}
}
