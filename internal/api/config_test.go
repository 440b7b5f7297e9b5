package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 8080 || cfg.DBPath != "journal.db" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Auth.Issuer != "juniper-journal" || cfg.Auth.DevUser != "dev-user" {
		t.Errorf("auth defaults = %+v", cfg.Auth)
	}
	if cfg.HeatmapTTL != time.Minute {
		t.Errorf("HeatmapTTL = %v", cfg.HeatmapTTL)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("JOURNAL_PORT", "9090")
	t.Setenv("JOURNAL_DB_PATH", "/tmp/j.db")
	t.Setenv("JOURNAL_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("JOURNAL_AUTH_SECRET", testSecret)
	t.Setenv("JOURNAL_AUTH_DISABLED", "true")
	t.Setenv("JOURNAL_RATE_LIMIT_RPM", "30")
	t.Setenv("JOURNAL_HEATMAP_TTL", "5s")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != 9090 || cfg.DBPath != "/tmp/j.db" || cfg.RateLimitRequests != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if !cfg.Auth.Disabled || cfg.Auth.Secret != testSecret {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.HeatmapTTL != 5*time.Second {
		t.Errorf("HeatmapTTL = %v", cfg.HeatmapTTL)
	}
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	for _, p := range []string{cert, key} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"zero port", func(c *Config) { c.Port = 0 }, true},
		{"no db", func(c *Config) { c.DBPath = "" }, true},
		{"negative rate", func(c *Config) { c.RateLimitRequests = -1 }, true},
		{"short secret", func(c *Config) { c.Auth.Secret = "abc" }, true},
		{"tls pair", func(c *Config) { c.TLS = TLSConfig{CertFile: cert, KeyFile: key} }, false},
		{"tls missing key", func(c *Config) { c.TLS = TLSConfig{CertFile: cert} }, true},
		{"tls missing file", func(c *Config) { c.TLS = TLSConfig{CertFile: cert, KeyFile: filepath.Join(dir, "nope")} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := authConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
