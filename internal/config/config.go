// Package config maps environment variables into the typed runtime
// configuration. Loaded once in main and passed explicitly; no globals.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration for the assistant auth server.
type Config struct {
	// Server settings
	Port    string `env:"PORT"     envDefault:"8080"`
	AppName string `env:"APP_NAME" envDefault:"Assistant Auth"`
	Env     string `env:"ENV"      envDefault:"DEV"`

	// BaseURL is this application's externally visible origin, used for
	// callback and popup-completion URLs.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// Identity provider
	IssuerURL     string `env:"PROVIDER_ISSUER_URL,required"`
	ClientID      string `env:"PROVIDER_CLIENT_ID,required"`
	ClientSecret  string `env:"PROVIDER_CLIENT_SECRET,required"`
	ProviderScope string `env:"PROVIDER_SCOPE" envDefault:"openid profile email offline_access"`

	// Session store (Redis)
	RedisURL   string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "DEV"
}
