package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied after merging file/env/flag sources. Kept in one
// place so tests and the app agree on fallback behavior.
func (c *Config) ApplyDefaults() {
	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	if c.Content.StaticDir == "" {
		c.Content.StaticDir = "./static"
	}
	if c.Content.SiteTitle == "" {
		c.Content.SiteTitle = "Blog"
	}
	if c.Chat.DefaultRoom == "" {
		c.Chat.DefaultRoom = "offtopic"
	}
	if c.Chat.HistoryLimit <= 0 {
		c.Chat.HistoryLimit = 50
	}
	if c.Chat.MaxMessageLen <= 0 {
		c.Chat.MaxMessageLen = 280
	}
	if c.Chat.SendBuffer <= 0 {
		c.Chat.SendBuffer = 256
	}
	if c.Chat.WriteTimeout.Duration() <= 0 {
		c.Chat.WriteTimeout = Duration(10 * time.Second)
	}
	if c.Chat.PongTimeout.Duration() <= 0 {
		c.Chat.PongTimeout = Duration(60 * time.Second)
	}
	if c.Auth.TokenTTL.Duration() <= 0 {
		c.Auth.TokenTTL = Duration(30 * 24 * time.Hour)
	}
	if c.Weather.GeoURL == "" {
		c.Weather.GeoURL = "https://ipapi.co/%s/json/"
	}
	if c.Weather.WeatherURL == "" {
		c.Weather.WeatherURL = "https://wttr.in/%s?format=j1"
	}
	if c.Weather.CacheTTL.Duration() <= 0 {
		c.Weather.CacheTTL = Duration(time.Hour)
	}
	if c.Weather.CacheSize <= 0 {
		c.Weather.CacheSize = 1000
	}
	if c.Weather.Delay.Duration() <= 0 {
		c.Weather.Delay = Duration(2 * time.Second)
	}
	if c.Retention.BatchSize <= 0 {
		c.Retention.BatchSize = 500
	}
}

// Load reads and parses the YAML config file at path.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolveConfigPath returns the config path to use: the flag value when
// explicitly set, else the BLOGCHAT_CONFIG env var, else the flag default.
func ResolveConfigPath(flagVal string, flagSet bool) string {
	if flagSet {
		return flagVal
	}
	if v := os.Getenv("BLOGCHAT_CONFIG"); v != "" {
		return v
	}
	return flagVal
}
