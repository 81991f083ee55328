package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

// Flags holds parsed command-line flag values and which were set.
type Flags struct {
	Addr    string
	DB      string
	Content string
	Config  string
	Set     map[string]bool
}

// ParseConfigFlags parses command-line flags and returns them as a Flags struct.
func ParseConfigFlags() Flags {
	addrPtr := flag.String("addr", ":8080", "HTTP listen address")
	dbPtr := flag.String("db", "./.database", "Pebble DB path")
	contentPtr := flag.String("content", "./content", "Blog content directory")
	cfgPtr := flag.String("config", "./config.yaml", "Path to config file")
	flag.Parse()
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	return Flags{Addr: *addrPtr, DB: *dbPtr, Content: *contentPtr, Config: *cfgPtr, Set: setFlags}
}

// ParseConfigFile resolves the config path and loads the YAML file. It
// returns the parsed config, a boolean indicating whether the file was
// present, and an error for fatal parsing problems.
func ParseConfigFile(flags Flags) (*Config, bool, error) {
	cfgPath := ResolveConfigPath(flags.Config, flags.Set["config"])
	cfg, err := Load(cfgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, false, nil
		}
		return nil, false, err
	}
	return cfg, true, nil
}

// ParseConfigEnvs reads environment variables into a fresh Config and
// reports whether any were present. It does not mutate caller state.
func ParseConfigEnvs() (*Config, bool) {
	envCfg := &Config{}
	envUsed := false
	parseList := func(v string) []string {
		if v == "" {
			return nil
		}
		parts := []string{}
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	// Server address/port
	if v := os.Getenv("BLOGCHAT_ADDR"); v != "" {
		envUsed = true
		if h, p, err := net.SplitHostPort(v); err == nil {
			envCfg.Server.Address = h
			if pi, err := strconv.Atoi(p); err == nil {
				envCfg.Server.Port = pi
			}
		} else {
			envCfg.Server.Address = v
		}
	} else {
		if host := os.Getenv("BLOGCHAT_SERVER_ADDRESS"); host != "" {
			envUsed = true
			envCfg.Server.Address = host
		}
		if port := os.Getenv("BLOGCHAT_SERVER_PORT"); port != "" {
			envUsed = true
			if pi, err := strconv.Atoi(port); err == nil {
				envCfg.Server.Port = pi
			}
		}
	}

	if v := os.Getenv("BLOGCHAT_DB_PATH"); v != "" {
		envUsed = true
		envCfg.Server.DBPath = v
	}
	if v := os.Getenv("BLOGCHAT_CONTENT_DIR"); v != "" {
		envUsed = true
		envCfg.Content.Dir = v
	}
	if v := os.Getenv("BLOGCHAT_STATIC_DIR"); v != "" {
		envUsed = true
		envCfg.Content.StaticDir = v
	}
	if v := os.Getenv("BLOGCHAT_DEFAULT_ROOM"); v != "" {
		envUsed = true
		envCfg.Chat.DefaultRoom = v
	}
	if v := os.Getenv("BLOGCHAT_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			envCfg.Chat.HistoryLimit = n
		}
	}
	if v := os.Getenv("BLOGCHAT_MAX_MESSAGE_LEN"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			envCfg.Chat.MaxMessageLen = n
		}
	}
	if v := os.Getenv("BLOGCHAT_JWT_SECRET"); v != "" {
		envUsed = true
		envCfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("BLOGCHAT_WEATHER_ENABLED"); v != "" {
		envUsed = true
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			envCfg.Weather.Enabled = true
		default:
			envCfg.Weather.Enabled = false
		}
	}
	if v := os.Getenv("BLOGCHAT_CORS_ORIGINS"); v != "" {
		envUsed = true
		envCfg.Security.CORS.AllowedOrigins = parseList(v)
	}
	if v := os.Getenv("BLOGCHAT_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			envCfg.Security.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("BLOGCHAT_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			envCfg.Security.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("BLOGCHAT_RETENTION_PERIOD"); v != "" {
		envUsed = true
		envCfg.Retention.Enabled = true
		envCfg.Retention.Period = v
	}
	if v := os.Getenv("BLOGCHAT_LOG_LEVEL"); v != "" {
		envUsed = true
		envCfg.Logging.Level = v
	}

	// TLS cert/key
	if c := os.Getenv("BLOGCHAT_TLS_CERT"); c != "" {
		envUsed = true
		envCfg.Server.TLS.CertFile = c
	}
	if k := os.Getenv("BLOGCHAT_TLS_KEY"); k != "" {
		envUsed = true
		envCfg.Server.TLS.KeyFile = k
	}

	return envCfg, envUsed
}

// EffectiveConfigResult holds the result of LoadEffectiveConfig.
type EffectiveConfigResult struct {
	Config     *Config
	Addr       string
	DBPath     string
	ContentDir string
	Source     string // "flags", "config", or "env"
}

// LoadEffectiveConfig decides which single source to use (flags, config
// file, or env). It honors an explicit flags.Config (user provided
// --config) by using the config file only; otherwise it uses flags if
// any flags are set; else a config file when present; otherwise env.
func LoadEffectiveConfig(flags Flags, fileCfg *Config, fileExists bool, envCfg *Config, envUsed bool) (EffectiveConfigResult, error) {
	var res EffectiveConfigResult

	finish := func(r EffectiveConfigResult) EffectiveConfigResult {
		r.Config.ApplyDefaults()
		if r.DBPath == "" {
			r.DBPath = r.Config.Server.DBPath
		}
		if r.DBPath == "" {
			r.DBPath = flags.DB
		}
		r.Config.Server.DBPath = r.DBPath
		if r.ContentDir == "" {
			r.ContentDir = r.Config.Content.Dir
		}
		r.Config.Content.Dir = r.ContentDir
		return r
	}

	// If user explicitly passed --config, require the file to exist and use it.
	if flags.Set["config"] {
		if !fileExists {
			return res, fmt.Errorf("config file %s not found", flags.Config)
		}
		res.Config = fileCfg
		res.Addr = fileCfg.Addr()
		res.DBPath = fileCfg.Server.DBPath
		res.ContentDir = fileCfg.Content.Dir
		res.Source = "config"
		return finish(res), nil
	}

	// If user passed any non-config flags, use flags over the other sources.
	if flags.Set["addr"] || flags.Set["db"] || flags.Set["content"] {
		base := fileCfg
		if !fileExists {
			base = envCfg
		}
		res.Config = base
		res.Addr = base.Addr()
		if flags.Set["addr"] {
			res.Addr = flags.Addr
			res.Config.Server.Address, res.Config.Server.Port = splitAddr(flags.Addr)
		}
		res.DBPath = base.Server.DBPath
		if flags.Set["db"] {
			res.DBPath = flags.DB
		}
		res.ContentDir = base.Content.Dir
		if flags.Set["content"] {
			res.ContentDir = flags.Content
		}
		res.Source = "flags"
		return finish(res), nil
	}

	// No explicit flags: prefer file config if present, otherwise env.
	if fileExists {
		res.Config = fileCfg
		res.Addr = fileCfg.Addr()
		res.DBPath = fileCfg.Server.DBPath
		res.ContentDir = fileCfg.Content.Dir
		res.Source = "config"
		return finish(res), nil
	}
	res.Config = envCfg
	res.Addr = envCfg.Addr()
	res.DBPath = envCfg.Server.DBPath
	res.ContentDir = envCfg.Content.Dir
	res.Source = "env"
	if !envUsed {
		res.Source = "defaults"
	}
	return finish(res), nil
}

// splitAddr splits host:port, tolerating a bare host or bare ":port".
func splitAddr(a string) (string, int) {
	if a == "" {
		return "", 0
	}
	if h, p, err := net.SplitHostPort(a); err == nil {
		if pi, err := strconv.Atoi(p); err == nil {
			return h, pi
		}
		return h, 0
	}
	return a, 0
}
