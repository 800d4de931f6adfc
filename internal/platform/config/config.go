package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const minSessionSecretLen = 32

type Config struct {
	AppEnv        string        `env:"APP_ENV" default:"development"`
	Port          string        `env:"PORT" default:"3000"`
	APIBaseURL    string        `env:"API_BASE_URL"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" default:"24h"`
	RedisURL      string        `env:"REDIS_URL"`
	LogLevel      string        `env:"LOG_LEVEL" default:"info"`
	LogFormat     string        `env:"LOG_FORMAT" default:"text"`

	LookupCacheTTL         time.Duration `env:"LOOKUP_CACHE_TTL" default:"5m"`
	PageSessionIdleTimeout time.Duration `env:"PAGE_SESSION_IDLE_TIMEOUT" default:"30m"`
	LoginRedirectDelay     time.Duration `env:"LOGIN_REDIRECT_DELAY" default:"500ms"`
	UpstreamTimeout        time.Duration `env:"UPSTREAM_TIMEOUT" default:"10s"`

	DisplayTimezone string `env:"DISPLAY_TIMEZONE" default:"UTC"`
	GuardsFile      string `env:"GUARDS_FILE"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// IsProduction reports whether cookies should be marked Secure.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func validate(cfg *Config) error {
	required := map[string]string{
		"API_BASE_URL":   cfg.APIBaseURL,
		"SESSION_SECRET": cfg.SessionSecret,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil {
		return fmt.Errorf("API_BASE_URL must be a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API_BASE_URL must be an absolute http(s) URL")
	}

	if len(cfg.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}

	if _, err := time.LoadLocation(cfg.DisplayTimezone); err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE is not a known timezone: %w", err)
	}

	if cfg.LoginRedirectDelay < 0 {
		return errors.New("LOGIN_REDIRECT_DELAY must not be negative")
	}
	if cfg.UpstreamTimeout <= 0 {
		return errors.New("UPSTREAM_TIMEOUT must be positive")
	}

	return nil
}
