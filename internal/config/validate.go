package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1-65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1-65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1-65535, got %d", c.Redis.Port))
	}

	// Avatar resolution policy
	if c.Avatar.MatchThreshold <= 0 {
		errs = append(errs, fmt.Sprintf("AVATAR_MATCH_THRESHOLD must be positive, got %g", c.Avatar.MatchThreshold))
	}
	if c.Avatar.Queue != "nats" && c.Avatar.Queue != "local" {
		errs = append(errs, fmt.Sprintf("AVATAR_QUEUE must be \"nats\" or \"local\", got %q", c.Avatar.Queue))
	}
	if c.Avatar.Workers < 1 {
		errs = append(errs, fmt.Sprintf("AVATAR_WORKERS must be at least 1, got %d", c.Avatar.Workers))
	}
	if c.Avatar.QueueSize < 1 {
		errs = append(errs, fmt.Sprintf("AVATAR_QUEUE_SIZE must be at least 1, got %d", c.Avatar.QueueSize))
	}

	// LLM API key: warn only — the responder falls back to a fixed reply
	if c.LLM.APIKey == "" {
		slog.Warn("LLM_API_KEY is empty — replies will use the fallback payload")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
