package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process-wide configuration, parsed once from the
// environment at startup. Changing the threshold or cooldown affects only
// future sweeps; alert log rows already written stand as-is.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	DBPath   string `env:"DB_PATH" envDefault:"data/stillhere.db"`
	Timezone string `env:"TZ" envDefault:"UTC"`

	InactivityThreshold  time.Duration `env:"INACTIVITY_THRESHOLD" envDefault:"48h"`
	NotificationCooldown time.Duration `env:"NOTIFICATION_COOLDOWN" envDefault:"24h"`
	UrgencyWindow        time.Duration `env:"URGENCY_WINDOW" envDefault:"12h"`

	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	SweepConcurrency int           `env:"SWEEP_CONCURRENCY" envDefault:"4"`

	NotifierTimeout time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"10s"`
	ResendAPIKey    string        `env:"RESEND_API_KEY"`
	ResendFrom      string        `env:"RESEND_FROM" envDefault:"Still Here <onboarding@resend.dev>"`

	AdminToken  string `env:"ADMIN_TOKEN"`
	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) Validate() error {
	if cfg.InactivityThreshold <= 0 {
		return fmt.Errorf("inactivity threshold must be positive, got %s", cfg.InactivityThreshold)
	}
	if cfg.NotificationCooldown <= 0 {
		return fmt.Errorf("notification cooldown must be positive, got %s", cfg.NotificationCooldown)
	}
	if cfg.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", cfg.SweepInterval)
	}
	if cfg.SweepConcurrency < 1 {
		return fmt.Errorf("sweep concurrency must be at least 1, got %d", cfg.SweepConcurrency)
	}
	return nil
}
