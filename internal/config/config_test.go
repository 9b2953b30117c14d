package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, want 10s", cfg.HTTPTimeout)
	}
	if cfg.Reconnect.Initial != time.Second || cfg.Reconnect.Max != 30*time.Second {
		t.Errorf("Reconnect = %+v", cfg.Reconnect)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
api_url: https://warden.example.com/
http_timeout: 3s
reconnect:
  initial: 2s
  max: 1m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPTimeout != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", cfg.HTTPTimeout)
	}
	if cfg.Reconnect.Initial != 2*time.Second || cfg.Reconnect.Max != time.Minute {
		t.Errorf("Reconnect = %+v", cfg.Reconnect)
	}
	if cfg.Reconnect.Multiplier != 2 {
		t.Errorf("unset multiplier should keep its default, got %v", cfg.Reconnect.Multiplier)
	}
	if got := cfg.HealthURL(); got != "wss://warden.example.com/api/admin/system-health" {
		t.Errorf("HealthURL() = %q", got)
	}
	if got := cfg.SecurityStreamURL(); got != "https://warden.example.com/api/admin/security-events/stream" {
		t.Errorf("SecurityStreamURL() = %q", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api_url: http://file.example\ntoken: from-file\n")
	t.Setenv("WARDEN_API_URL", "http://env.example:9000/base")
	t.Setenv("WARDEN_TOKEN", "from-env")
	t.Setenv("WARDEN_RECONNECT_MAX", "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "from-env" {
		t.Errorf("Token = %q, want from-env", cfg.Token)
	}
	if cfg.Reconnect.Max != 45*time.Second {
		t.Errorf("Reconnect.Max = %v, want 45s", cfg.Reconnect.Max)
	}
	if got := cfg.TrafficURL(); got != "ws://env.example:9000/base/api/admin/live-traffic" {
		t.Errorf("TrafficURL() = %q", got)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := map[string]string{
		"bad yaml":   "api_url: [",
		"bad scheme": "api_url: ftp://x",
		"no db path": "db_path: ' '",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("WARDEN_HTTP_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Error("expected error for unparsable duration")
	}
}

func TestDefaultPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if got := DefaultPath(); got != filepath.Join("/cfg", "warden", "console.yaml") {
		t.Errorf("DefaultPath() = %q", got)
	}
}
