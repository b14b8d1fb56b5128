package config

import (
	"path/filepath"

	"github.com/mj1618/demopilot/internal/safety"
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Safety: SafetyConfig{
			Policy:           safety.PolicyStrict,
			Deny:             append([]string(nil), safety.DefaultDenyPatterns...),
			Allow:            append([]string(nil), safety.DefaultAllowPatterns...),
			MinFallbackTitle: safety.DefaultMinFallbackTitle,
		},
		Focus: FocusConfig{
			MaxAttempts:   3,
			RetryDelayMs:  1000,
			SettleDelayMs: 1000,
		},
		Typing: TypingConfig{
			DelayMs:    20,
			KeyDelayMs: 300,
			ChunkSize:  10,
			ClearFirst: true,
		},
		App: AppConfig{
			Command:          []string{"flutter", "run", "-d", "linux", "-t", "lib/main_demo.dart"},
			CleanupPatterns:  []string{"flutter", "dejtingapp", "main_demo"},
			WindowTimeoutSec: 60,
		},
		Services: ServicesConfig{
			AuthURL:        "http://localhost:8081/api",
			UserURL:        "http://localhost:8082/api",
			MatchmakingURL: "http://localhost:8083/api",
			WebURL:         "http://localhost:3000",
			TimeoutSec:     10,
		},
		IdP: IdPConfig{
			Realm:      "datingapp",
			AdminRealm: "master",
			ClientID:   "admin-cli",
			AdminUser:  "admin",
		},
		Capture: CaptureConfig{
			Dir:   filepath.Join(stateDir(), "screenshots"),
			Scale: 0.5,
		},
		History: HistoryConfig{
			Path: filepath.Join(stateDir(), "history.db"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
	}
}
