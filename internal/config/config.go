package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"shoptrack/internal/domain/hms"
)

// Config carries every knob the server process reads at startup. Values
// come from the environment, optionally seeded from a .env file.
type Config struct {
	Addr string `env:"SHOPTRACK_ADDR" envDefault:":8080"`
	Env  string `env:"SHOPTRACK_ENV" envDefault:"development"`

	DBPath string `env:"SHOPTRACK_DB" envDefault:"shoptrack.db"`

	// Seed credentials for the first admin account. Only used when the
	// account table is empty.
	AdminEmail    string `env:"SHOPTRACK_ADMIN_EMAIL" envDefault:"info@shoptrack.nz"`
	AdminPassword string `env:"SHOPTRACK_ADMIN_PASSWORD" envDefault:"Bandsaw sonata"`

	// Resend delivery for timeout notices. An empty key disables email.
	ResendKey    string `env:"SHOPTRACK_RESEND_KEY"`
	EmailFrom    string `env:"SHOPTRACK_EMAIL_FROM" envDefault:"Shoptrack <noreply@shoptrack.nz>"`
	EmailReplyTo string `env:"SHOPTRACK_REPLY_TO" envDefault:"info@shoptrack.nz"`

	// SweepSchedule is a cron expression for the periodic timeout pass.
	SweepSchedule string `env:"SHOPTRACK_SWEEP_SCHEDULE" envDefault:"*/15 * * * *"`

	// Ledger policy, duration text in "H:M:S" form.
	TimeoutThresholdText string `env:"SHOPTRACK_TIMEOUT_THRESHOLD" envDefault:"3:15:00"`
	HourRequirementText  string `env:"SHOPTRACK_HOUR_REQUIREMENT" envDefault:"6:00:00"`

	SlowQueryMs        int `env:"SHOPTRACK_SLOW_QUERY_MS" envDefault:"50"`
	RateLimitPerSecond int `env:"SHOPTRACK_RATE_LIMIT" envDefault:"10"`

	// Parsed forms of the duration knobs, filled by Load.
	TimeoutThreshold hms.Duration `env:"-"`
	HourRequirement  hms.Duration `env:"-"`
}

// Load reads the process configuration: .env first when present, then
// the environment, then validation.
// POST: duration knobs are parsed and positive
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config_event", "event", "no_dotenv", "error", err.Error())
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	threshold, err := hms.Parse(cfg.TimeoutThresholdText)
	if err != nil {
		return Config{}, fmt.Errorf("SHOPTRACK_TIMEOUT_THRESHOLD: %w", err)
	}
	if threshold <= 0 {
		return Config{}, fmt.Errorf("SHOPTRACK_TIMEOUT_THRESHOLD must be positive, got %q", cfg.TimeoutThresholdText)
	}
	cfg.TimeoutThreshold = threshold

	requirement, err := hms.Parse(cfg.HourRequirementText)
	if err != nil {
		return Config{}, fmt.Errorf("SHOPTRACK_HOUR_REQUIREMENT: %w", err)
	}
	if requirement <= 0 {
		return Config{}, fmt.Errorf("SHOPTRACK_HOUR_REQUIREMENT must be positive, got %q", cfg.HourRequirementText)
	}
	cfg.HourRequirement = requirement

	if cfg.RateLimitPerSecond < 1 {
		return Config{}, fmt.Errorf("SHOPTRACK_RATE_LIMIT must be at least 1, got %d", cfg.RateLimitPerSecond)
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with production
// hardening (secure cookies, required CSRF key).
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
