package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file should not fail, got: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Errorf("Server.Address = %q, want \":8080\"", cfg.Server.Address)
	}
	if cfg.Signal.PingInterval != 30*time.Second {
		t.Errorf("Signal.PingInterval = %v, want 30s", cfg.Signal.PingInterval)
	}
}

func TestLoad_FromFile(t *testing.T) {
	yaml := `
server:
  address: ":9999"
  read_timeout: 10s
  write_timeout: 10s
  shutdown_timeout: 5s
signal:
  ping_interval: 5s
  pong_timeout: 12s
  write_timeout: 3s
  shutdown_timeout: 5s
logging:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("Server.Address = %q, want \":9999\"", cfg.Server.Address)
	}
	if cfg.Signal.PongTimeout != 12*time.Second {
		t.Errorf("Signal.PongTimeout = %v, want 12s", cfg.Signal.PongTimeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// Untouched sections keep defaults
	if !cfg.Monitoring.PrometheusEnabled {
		t.Error("Monitoring.PrometheusEnabled should default to true")
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty server address", func(c *Config) { c.Server.Address = "" }},
		{"pong not after ping", func(c *Config) { c.Signal.PongTimeout = c.Signal.PingInterval }},
		{"bad sample rate", func(c *Config) { c.Tracing.Enabled = true; c.Tracing.SampleRate = 2 }},
		{"rate limit zero rps", func(c *Config) {
			c.RateLimiting.Enabled = true
			c.RateLimiting.HTTP.RequestsPerSecond = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should have failed")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROOMRELAY_SERVER_ADDRESS", ":7070")
	t.Setenv("ROOMRELAY_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Address != ":7070" {
		t.Errorf("Server.Address = %q, want \":7070\"", cfg.Server.Address)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}
