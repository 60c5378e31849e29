package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.JWT.AccessSecret) < 32 {
		errs = append(errs, "JWT_ACCESS_SECRET must be at least 32 characters")
	}
	if len(c.JWT.RefreshSecret) < 32 {
		errs = append(errs, "JWT_REFRESH_SECRET must be at least 32 characters")
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}

	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	if c.Tokens.DailyShortLimit < 0 {
		errs = append(errs, "TOKENS_DAILY_SHORT_LIMIT must not be negative")
	}
	if c.Tokens.WeeklyLongLimit < 0 {
		errs = append(errs, "TOKENS_WEEKLY_LONG_LIMIT must not be negative")
	}
	if c.Tokens.GoldenKeyAward < 1 {
		errs = append(errs, "TOKENS_GOLDEN_KEY_AWARD must be at least 1")
	}
	if _, err := time.LoadLocation(c.Tokens.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("TOKENS_TIMEZONE %q is not a known zone", c.Tokens.Timezone))
	}

	if c.Stats.TrendThreshold < 0 || c.Stats.CriterionThreshold < 0 {
		errs = append(errs, "STATS thresholds must not be negative")
	}

	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty, events are not published and feedback is not consumed")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
