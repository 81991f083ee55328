package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	require.Equal(t, "offtopic", c.Chat.DefaultRoom)
	require.Equal(t, 50, c.Chat.HistoryLimit)
	require.Equal(t, 280, c.Chat.MaxMessageLen)
	require.Equal(t, 30*24*time.Hour, c.Auth.TokenTTL.Duration())
	require.Equal(t, time.Hour, c.Weather.CacheTTL.Duration())
	require.Equal(t, 2*time.Second, c.Weather.Delay.Duration())
	require.Equal(t, "0.0.0.0:8080", c.Addr())
}

func TestDurationUnmarshal(t *testing.T) {
	var out struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 1m30s\nb: 45\n"), &out))
	require.Equal(t, 90*time.Second, out.A.Duration())
	require.Equal(t, 45*time.Second, out.B.Duration())

	var bad struct {
		C Duration `yaml:"c"`
	}
	require.Error(t, yaml.Unmarshal([]byte("c: soon\n"), &bad))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := `
server:
  address: 127.0.0.1
  port: 9090
  db_path: /tmp/blogchat-db
chat:
  default_room: lobby
  history_limit: 25
weather:
  enabled: true
  delay: 500ms
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9090", cfg.Addr())
	require.Equal(t, "lobby", cfg.Chat.DefaultRoom)
	require.Equal(t, 25, cfg.Chat.HistoryLimit)
	require.True(t, cfg.Weather.Enabled)
	require.Equal(t, 500*time.Millisecond, cfg.Weather.Delay.Duration())
}

func TestLoadEffectiveConfigPrecedence(t *testing.T) {
	fileCfg := &Config{}
	fileCfg.Server.DBPath = "/from/file"
	fileCfg.Content.Dir = "/content/file"

	envCfg := &Config{}
	envCfg.Server.DBPath = "/from/env"

	// explicit --config wins and requires the file
	flags := Flags{Config: "conf.yaml", Set: map[string]bool{"config": true}}
	res, err := LoadEffectiveConfig(flags, fileCfg, true, envCfg, true)
	require.NoError(t, err)
	require.Equal(t, "config", res.Source)
	require.Equal(t, "/from/file", res.DBPath)

	_, err = LoadEffectiveConfig(flags, &Config{}, false, envCfg, true)
	require.Error(t, err)

	// explicit value flags win over the file
	flags = Flags{DB: "/from/flag", Set: map[string]bool{"db": true}}
	res, err = LoadEffectiveConfig(flags, fileCfg, true, envCfg, true)
	require.NoError(t, err)
	require.Equal(t, "flags", res.Source)
	require.Equal(t, "/from/flag", res.DBPath)
	require.Equal(t, "/content/file", res.ContentDir)

	// no flags: file beats env
	flags = Flags{Set: map[string]bool{}}
	res, err = LoadEffectiveConfig(flags, fileCfg, true, envCfg, true)
	require.NoError(t, err)
	require.Equal(t, "config", res.Source)

	// nothing at all: defaults
	flags = Flags{DB: "./.database", Set: map[string]bool{}}
	res, err = LoadEffectiveConfig(flags, &Config{}, false, &Config{}, false)
	require.NoError(t, err)
	require.Equal(t, "defaults", res.Source)
	require.Equal(t, "offtopic", res.Config.Chat.DefaultRoom)
}

func TestParseConfigEnvs(t *testing.T) {
	t.Setenv("BLOGCHAT_ADDR", "127.0.0.1:7070")
	t.Setenv("BLOGCHAT_DEFAULT_ROOM", "lounge")
	t.Setenv("BLOGCHAT_WEATHER_ENABLED", "true")

	cfg, used := ParseConfigEnvs()
	require.True(t, used)
	require.Equal(t, "127.0.0.1", cfg.Server.Address)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "lounge", cfg.Chat.DefaultRoom)
	require.True(t, cfg.Weather.Enabled)
}
