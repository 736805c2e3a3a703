package app

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
)

type Config struct {
	BootstrapToken string `env:"BOOTSTRAP_TOKEN"` // Optional: token required to perform bootstrap

	StoreDriver  string `env:"AUTH_STORE_DRIVER" envDefault:"sqlite"`    // sqlite or bolt
	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"grantd.db"` // SQLite database or bbolt file
	PepperFile   string `env:"AUTH_PEPPER_FILE" envDefault:"pepper"`      // Pepper for secret and password hashing
	ScopesFile   string `env:"AUTH_SCOPES_FILE"`                          // Optional: YAML scope registry seeded at startup

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`

	// Tracing wraps requests in OpenTelemetry server spans exported through
	// the globally registered provider.
	Tracing bool `env:"TRACING_ENABLED" envDefault:"false"`

	OAuth2     oauth2.Options   `envPrefix:"OAUTH2_"`
	RateLimits httpx.RateLimits `envPrefix:"RATELIMIT_"`
}

// LoadConfig reads the configuration from the environment, after loading a
// .env file when one exists. Rate limits not set in the environment keep
// their production defaults.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		OAuth2:     oauth2.DefaultOptions(),
		RateLimits: httpx.DefaultRateLimits(),
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverBolt:
	default:
		return fmt.Errorf("AUTH_STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverBolt, c.StoreDriver)
	}

	if c.DatabaseFile == "" {
		return fmt.Errorf("AUTH_DATABASE_FILE is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}

	for name, ttl := range map[string]time.Duration{
		"OAUTH2_ACCESS_TOKEN_TTL":       c.OAuth2.AccessTokenTTL,
		"OAUTH2_REFRESH_TOKEN_TTL":      c.OAuth2.RefreshTokenTTL,
		"OAUTH2_AUTHORIZATION_CODE_TTL": c.OAuth2.AuthorizationCodeTTL,
	} {
		if ttl < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}
