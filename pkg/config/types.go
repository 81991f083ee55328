package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Content   ContentConfig   `yaml:"content"`
	Chat      ChatConfig      `yaml:"chat"`
	Auth      AuthConfig      `yaml:"auth"`
	Weather   WeatherConfig   `yaml:"weather"`
	Security  SecurityConfig  `yaml:"security"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds http, storage and tls settings.
type ServerConfig struct {
	Address string    `yaml:"address"`
	Port    int       `yaml:"port"`
	DBPath  string    `yaml:"db_path"`
	TLS     TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate configuration.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// ContentConfig locates the blog content on disk.
type ContentConfig struct {
	Dir       string `yaml:"dir"`
	StaticDir string `yaml:"static_dir"`
	SiteTitle string `yaml:"site_title"`
}

// ChatConfig holds tunables for the room registry and session protocol.
type ChatConfig struct {
	// DefaultRoom is joined when the handshake carries no room slug.
	DefaultRoom string `yaml:"default_room"`
	// HistoryLimit caps the history snapshot sent on join.
	HistoryLimit int `yaml:"history_limit"`
	// MaxMessageLen is the maximum accepted body length in runes.
	MaxMessageLen int `yaml:"max_message_len"`
	// SendBuffer is the per-connection outbound queue size.
	SendBuffer int `yaml:"send_buffer"`
	// WriteTimeout bounds a single frame write to one client.
	WriteTimeout Duration `yaml:"write_timeout"`
	// PongTimeout is the read deadline refreshed on each pong.
	PongTimeout Duration `yaml:"pong_timeout"`
	RateLimit   struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// AuthConfig holds chat token settings.
type AuthConfig struct {
	// JWTSecret signs chat tokens. Required for non-guest identities.
	JWTSecret string `yaml:"jwt_secret"`
	// TokenTTL is the chat token lifetime; defaults to 30 days.
	TokenTTL Duration `yaml:"token_ttl"`
}

// WeatherConfig controls the asynchronous message enrichment.
type WeatherConfig struct {
	Enabled bool `yaml:"enabled"`
	// GeoURL and WeatherURL are formatted with the IP / city respectively.
	GeoURL     string   `yaml:"geo_url"`
	WeatherURL string   `yaml:"weather_url"`
	CacheTTL   Duration `yaml:"cache_ttl"`
	CacheSize  int      `yaml:"cache_size"`
	// Delay before the lookup runs, so bursts coalesce on the cache.
	Delay Duration `yaml:"delay"`
}

// SecurityConfig holds CORS and HTTP rate limit settings.
type SecurityConfig struct {
	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
	// AdminKeys guard the /api/admin endpoints. Empty disables them.
	AdminKeys []string `yaml:"admin_keys"`
}

// RetentionConfig holds configuration for the automatic purge runner.
type RetentionConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Cron      string `yaml:"cron"`
	Period    string `yaml:"period"`
	BatchSize int    `yaml:"batch_size"`
	DryRun    bool   `yaml:"dry_run"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	addr := c.Server.Address
	if addr == "" {
		addr = "0.0.0.0"
	}
	p := c.Server.Port
	if p == 0 {
		p = 8080
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

// Duration is a wrapper around time.Duration that supports YAML parsing
// from strings like "100ms" or plain numbers (interpreted as seconds).
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node == nil {
		*d = Duration(0)
		return nil
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = Duration(0)
		return nil
	}
	if td, err := time.ParseDuration(raw); err == nil {
		*d = Duration(td)
		return nil
	}
	// allow numeric seconds
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		*d = Duration(time.Duration(f * float64(time.Second)))
		return nil
	}
	return fmt.Errorf("invalid duration value: %q", node.Value)
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }
