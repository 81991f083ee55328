package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blogchat/pkg/logger"
)

const (
	geoTimeout     = 5 * time.Second
	weatherTimeout = 10 * time.Second
)

// Service resolves a peer address to a short weather summary. Lookups
// are cached per IP; failures are cached as empty strings so a broken
// upstream is not hammered once per message.
type Service struct {
	geoURL     string // printf pattern with one %s for the IP
	weatherURL string // printf pattern with one %s for the city
	client     *http.Client
	cache      *ttlCache
}

func NewService(geoURL, weatherURL string, cacheTTL time.Duration, cacheSize int) *Service {
	if geoURL == "" {
		geoURL = "https://ipapi.co/%s/json/"
	}
	if weatherURL == "" {
		weatherURL = "https://wttr.in/%s?format=j1"
	}
	return &Service{
		geoURL:     geoURL,
		weatherURL: weatherURL,
		client:     &http.Client{Timeout: weatherTimeout},
		cache:      newTTLCache(cacheTTL, cacheSize),
	}
}

// Lookup returns a summary like "☀️ 21°C" for the peer at addr, or ""
// when the address is private, the location cannot be resolved, or
// either upstream fails. It never returns an error; enrichment is
// best-effort by contract.
func (s *Service) Lookup(ctx context.Context, addr string) string {
	ip := hostOnly(addr)
	if ip == "" || isPrivate(ip) {
		return ""
	}
	if v, ok := s.cache.get(ip); ok {
		return v
	}
	summary := s.fetch(ctx, ip)
	s.cache.put(ip, summary)
	return summary
}

func (s *Service) fetch(ctx context.Context, ip string) string {
	city, err := s.geo(ctx, ip)
	if err != nil || city == "" {
		if err != nil {
			logger.Debug("weather_geo_failed", "ip", ip, "error", err.Error())
		}
		return ""
	}
	summary, err := s.conditions(ctx, city)
	if err != nil {
		logger.Debug("weather_fetch_failed", "city", city, "error", err.Error())
		return ""
	}
	return summary
}

func (s *Service) geo(ctx context.Context, ip string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, geoTimeout)
	defer cancel()
	var out struct {
		City  string `json:"city"`
		Error bool   `json:"error"`
	}
	if err := s.getJSON(ctx, fmt.Sprintf(s.geoURL, url.PathEscape(ip)), &out); err != nil {
		return "", err
	}
	if out.Error {
		return "", fmt.Errorf("geo lookup rejected ip %s", ip)
	}
	return out.City, nil
}

func (s *Service) conditions(ctx context.Context, city string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, weatherTimeout)
	defer cancel()
	var out struct {
		CurrentCondition []struct {
			TempC       string `json:"temp_C"`
			WeatherDesc []struct {
				Value string `json:"value"`
			} `json:"weatherDesc"`
		} `json:"current_condition"`
	}
	if err := s.getJSON(ctx, fmt.Sprintf(s.weatherURL, url.PathEscape(city)), &out); err != nil {
		return "", err
	}
	if len(out.CurrentCondition) == 0 {
		return "", fmt.Errorf("no current conditions for %s", city)
	}
	cur := out.CurrentCondition[0]
	desc := ""
	if len(cur.WeatherDesc) > 0 {
		desc = cur.WeatherDesc[0].Value
	}
	return fmt.Sprintf("%s %s°C", icon(desc), cur.TempC), nil
}

func (s *Service) getJSON(ctx context.Context, rawURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "blogchat/1.0")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// hostOnly strips an optional port from a peer address.
func hostOnly(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.TrimSpace(addr)
}

func isPrivate(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return true
	}
	return parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsLinkLocalUnicast() || parsed.IsUnspecified()
}
