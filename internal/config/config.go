// Package config loads process settings from the environment
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/KirkDiggler/rpg-sheet-calc/internal/errors"
)

// Config is the process configuration
type Config struct {
	// RedisAddr selects the Redis session store; empty keeps sessions in memory
	RedisAddr  string        `env:"SHEETCALC_REDIS_ADDR"`
	SessionTTL time.Duration `env:"SHEETCALC_SESSION_TTL" envDefault:"12h"`
	// LiveMode is the default when a session has no saved preference
	LiveMode bool `env:"SHEETCALC_LIVE_MODE" envDefault:"false"`
	// RulesFile replaces the embedded rule table
	RulesFile string `env:"SHEETCALC_RULES_FILE"`
	LogLevel  string `env:"SHEETCALC_LOG_LEVEL" envDefault:"info"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Load parses the environment and validates the result
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return errors.WrapWithCode(err, errors.CodeInvalidArgument, "parse env")
	}
	return nil
}

// Validate checks the parsed values
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.SessionTTL <= 0 {
		vb.InvalidField("SessionTTL", "must be positive")
	}
	errors.ValidateEnum("LogLevel", c.LogLevel, logLevels, vb)
	return vb.Build()
}

// Level returns the slog level for LogLevel
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
