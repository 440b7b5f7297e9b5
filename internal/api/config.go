package api

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// MinSecretLength is the shortest accepted JWT signing secret.
const MinSecretLength = 32

// Config holds server configuration.
type Config struct {
	Port              int           `env:"PORT" envDefault:"8080"`
	DBPath            string        `env:"DB_PATH" envDefault:"journal.db"`
	RateLimitRequests int           `env:"RATE_LIMIT_RPM" envDefault:"120"` // Requests per minute (0 = disabled)
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:","` // CORS allowed origins (empty = allow all)
	TrustProxy        bool          `env:"TRUST_PROXY"`                      // Take client IPs from X-Forwarded-For / X-Real-IP
	HeatmapTTL        time.Duration `env:"HEATMAP_TTL" envDefault:"1m"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT" envDefault:"json"`
	Auth              AuthConfig    `envPrefix:"AUTH_"`
	TLS               TLSConfig     `envPrefix:"TLS_"`
}

// TLSConfig holds TLS/HTTPS configuration.
type TLSConfig struct {
	CertFile string `env:"CERT"`
	KeyFile  string `env:"KEY"`
}

// Enabled reports whether a certificate pair is configured.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" || t.KeyFile != ""
}

// LoadConfig reads Config from JOURNAL_* environment variables.
func LoadConfig() (Config, error) {
	return env.ParseAsWithOptions[Config](env.Options{Prefix: "JOURNAL_"})
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	if c.RateLimitRequests < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid auth config: %w", err)
	}
	if c.TLS.Enabled() {
		if c.TLS.CertFile == "" || c.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(c.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file not found: %w", err)
		}
		if _, err := os.Stat(c.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file not found: %w", err)
		}
	}
	return nil
}
