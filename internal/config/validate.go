package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// DB credentials
	if c.DB.User == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.DB.Name == "" {
		errs = append(errs, "DB_NAME is required")
	}

	// Upstream endpoints must be parseable URLs
	for _, ep := range []struct{ name, value string }{
		{"LLM_API_URL", c.LLM.BaseURL},
		{"RAG_API_URL", c.RAG.BaseURL},
		{"IMAGE_API_URL", c.Image.BaseURL},
	} {
		if ep.value == "" {
			errs = append(errs, ep.name+" is required")
			continue
		}
		if u, err := url.Parse(ep.value); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ep.name+" must be an absolute URL")
		}
	}

	if c.LLM.Model == "" {
		errs = append(errs, "LLM_MODEL is required")
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, "LLM_TIMEOUT must be positive")
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, "LLM_MAX_TOKENS must be at least 1")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE must be 0–2, got %g", c.LLM.Temperature))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be debug|info|warn|error, got %q", c.Log.Level))
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
