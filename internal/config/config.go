// Package config loads console settings: built-in defaults, then the YAML
// file, then WARDEN_* environment variables. Flags are applied by main.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/warden/console/internal/client"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "WARDEN_"

// API paths of the push channels.
const (
	PathSecurityStream = "/api/admin/security-events/stream"
	PathSystemHealth   = "/api/admin/system-health"
	PathLiveTraffic    = "/api/admin/live-traffic"
)

// Config holds the console settings. Durations accept Go syntax ("10s").
type Config struct {
	APIURL      string                 `yaml:"api_url" env:"API_URL"`
	Token       string                 `yaml:"token" env:"TOKEN"`
	DBPath      string                 `yaml:"db_path" env:"DB_PATH"`
	LogFile     string                 `yaml:"log_file" env:"LOG_FILE"`
	LogLevel    string                 `yaml:"log_level" env:"LOG_LEVEL"`
	HTTPTimeout time.Duration          `yaml:"http_timeout" env:"HTTP_TIMEOUT"`
	ToastTTL    time.Duration          `yaml:"toast_ttl" env:"TOAST_TTL"`
	Reconnect   client.ReconnectPolicy `yaml:"reconnect" envPrefix:"RECONNECT_"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		APIURL:      "http://127.0.0.1:8080",
		DBPath:      filepath.Join(stateDir(), "console.db"),
		LogFile:     filepath.Join(stateDir(), "console.log"),
		LogLevel:    "info",
		HTTPTimeout: 10 * time.Second,
		ToastTTL:    5 * time.Second,
		Reconnect:   client.DefaultReconnectPolicy(),
	}
}

// DefaultPath is the config file used when none is given.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if d, err := os.UserConfigDir(); err == nil {
			dir = d
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "warden", "console.yaml")
}

func stateDir() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "warden")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "warden")
}

// Load reads path over the defaults and applies the environment. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config.Load: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config.Load: parse %s: %w", path, err)
			}
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("config.Load: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("config: api_url %q must be an http(s) URL", c.APIURL)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("config: db_path is required")
	}
	return nil
}

// APIBase returns the API URL without a trailing slash.
func (c *Config) APIBase() string {
	return strings.TrimRight(c.APIURL, "/")
}

// SecurityStreamURL is the server-sent events endpoint.
func (c *Config) SecurityStreamURL() string {
	return c.APIBase() + PathSecurityStream
}

// HealthURL is the system-health WebSocket endpoint.
func (c *Config) HealthURL() string {
	return deriveWSBase(c.APIBase()) + PathSystemHealth
}

// TrafficURL is the live-traffic WebSocket endpoint.
func (c *Config) TrafficURL() string {
	return deriveWSBase(c.APIBase()) + PathLiveTraffic
}

// deriveWSBase converts http://host:port/prefix to ws://host:port/prefix.
func deriveWSBase(apiBase string) string {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "ws://127.0.0.1:8080"
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s%s", scheme, u.Host, strings.TrimRight(u.Path, "/"))
}
