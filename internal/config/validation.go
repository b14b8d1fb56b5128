package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/demopilot/internal/logging"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Safety.Deny) == 0 {
		errs = append(errs, fmt.Errorf("safety.deny: at least one deny pattern is required"))
	}
	if len(c.Safety.Allow) == 0 {
		errs = append(errs, fmt.Errorf("safety.allow: at least one allow pattern is required"))
	}
	if _, err := c.Safety.Build(); err != nil {
		errs = append(errs, fmt.Errorf("safety: %w", err))
	}

	if c.Focus.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("focus.max_attempts must be >= 1, got %d", c.Focus.MaxAttempts))
	}
	if c.Focus.RetryDelayMs < 0 {
		errs = append(errs, fmt.Errorf("focus.retry_delay_ms must be >= 0"))
	}
	if c.Focus.SettleDelayMs < 0 {
		errs = append(errs, fmt.Errorf("focus.settle_delay_ms must be >= 0"))
	}

	if c.Typing.DelayMs < 0 || c.Typing.KeyDelayMs < 0 {
		errs = append(errs, fmt.Errorf("typing delays must be >= 0"))
	}
	if c.Typing.ChunkSize < 1 {
		errs = append(errs, fmt.Errorf("typing.chunk_size must be >= 1, got %d", c.Typing.ChunkSize))
	}

	if c.Capture.Scale <= 0 || c.Capture.Scale > 1 {
		errs = append(errs, fmt.Errorf("capture.scale must be in (0, 1], got %v", c.Capture.Scale))
	}

	for name, u := range map[string]string{
		"services.auth_url":        c.Services.AuthURL,
		"services.user_url":        c.Services.UserURL,
		"services.matchmaking_url": c.Services.MatchmakingURL,
	} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			errs = append(errs, fmt.Errorf("%s must be an http(s) URL, got %q", name, u))
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	return errors.Join(errs...)
}
