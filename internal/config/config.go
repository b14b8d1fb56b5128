// Package config handles configuration loading and validation for demopilot.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/mj1618/demopilot/internal/safety"
)

// Config is the complete demopilot configuration.
type Config struct {
	Safety   SafetyConfig   `toml:"safety"   json:"safety"   yaml:"safety"`
	Focus    FocusConfig    `toml:"focus"    json:"focus"    yaml:"focus"`
	Typing   TypingConfig   `toml:"typing"   json:"typing"   yaml:"typing"`
	App      AppConfig      `toml:"app"      json:"app"      yaml:"app"`
	Services ServicesConfig `toml:"services" json:"services" yaml:"services"`
	IdP      IdPConfig      `toml:"idp"      json:"idp"      yaml:"idp"`
	Capture  CaptureConfig  `toml:"capture"  json:"capture"  yaml:"capture"`
	History  HistoryConfig  `toml:"history"  json:"history"  yaml:"history"`
	Log      LogConfig      `toml:"log"      json:"log"      yaml:"log"`
}

// SafetyConfig selects the window safety policy and its patterns.
type SafetyConfig struct {
	Policy           string   `toml:"policy"             json:"policy"             yaml:"policy"`
	Deny             []string `toml:"deny"               json:"deny"               yaml:"deny"`
	Allow            []string `toml:"allow"              json:"allow"              yaml:"allow"`
	MinFallbackTitle int      `toml:"min_fallback_title" json:"min_fallback_title" yaml:"min_fallback_title"`
}

// FocusConfig bounds the focus-and-verify loop.
type FocusConfig struct {
	MaxAttempts   int `toml:"max_attempts"    json:"max_attempts"    yaml:"max_attempts"`
	RetryDelayMs  int `toml:"retry_delay_ms"  json:"retry_delay_ms"  yaml:"retry_delay_ms"`
	SettleDelayMs int `toml:"settle_delay_ms" json:"settle_delay_ms" yaml:"settle_delay_ms"`
}

// TypingConfig controls synthetic keystrokes.
type TypingConfig struct {
	DelayMs    int  `toml:"delay_ms"     json:"delay_ms"     yaml:"delay_ms"`
	KeyDelayMs int  `toml:"key_delay_ms" json:"key_delay_ms" yaml:"key_delay_ms"`
	ChunkSize  int  `toml:"chunk_size"   json:"chunk_size"   yaml:"chunk_size"`
	ClearFirst bool `toml:"clear_first"  json:"clear_first"  yaml:"clear_first"`
}

// AppConfig describes how to launch and clean up the demo application.
type AppConfig struct {
	Command          []string `toml:"command"            json:"command"            yaml:"command"`
	Dir              string   `toml:"dir"                json:"dir"                yaml:"dir"`
	CleanupPatterns  []string `toml:"cleanup_patterns"   json:"cleanup_patterns"   yaml:"cleanup_patterns"`
	WindowTimeoutSec int      `toml:"window_timeout_sec" json:"window_timeout_sec" yaml:"window_timeout_sec"`
}

// ServicesConfig holds backend base URLs.
type ServicesConfig struct {
	AuthURL        string `toml:"auth_url"        json:"auth_url"        yaml:"auth_url"`
	UserURL        string `toml:"user_url"        json:"user_url"        yaml:"user_url"`
	MatchmakingURL string `toml:"matchmaking_url" json:"matchmaking_url" yaml:"matchmaking_url"`
	WebURL         string `toml:"web_url"         json:"web_url"         yaml:"web_url"`
	TimeoutSec     int    `toml:"timeout_sec"     json:"timeout_sec"     yaml:"timeout_sec"`
}

// IdPConfig addresses the identity provider admin API. Provisioning is
// skipped when URL is empty.
type IdPConfig struct {
	URL           string `toml:"url"            json:"url"            yaml:"url"`
	Realm         string `toml:"realm"          json:"realm"          yaml:"realm"`
	AdminRealm    string `toml:"admin_realm"    json:"admin_realm"    yaml:"admin_realm"`
	ClientID      string `toml:"client_id"      json:"client_id"      yaml:"client_id"`
	AdminUser     string `toml:"admin_user"     json:"admin_user"     yaml:"admin_user"`
	AdminPassword string `toml:"admin_password" json:"admin_password" yaml:"admin_password"`
}

// CaptureConfig controls scenario screenshots.
type CaptureConfig struct {
	Dir   string  `toml:"dir"   json:"dir"   yaml:"dir"`
	Scale float64 `toml:"scale" json:"scale" yaml:"scale"`
}

// HistoryConfig locates the run history database.
type HistoryConfig struct {
	Path     string `toml:"path"     json:"path"     yaml:"path"`
	Disabled bool   `toml:"disabled" json:"disabled" yaml:"disabled"`
}

// LogConfig configures diagnostics logging.
type LogConfig struct {
	Level  string `toml:"level"  json:"level"  yaml:"level"`
	Format string `toml:"format" json:"format" yaml:"format"`
	Output string `toml:"output" json:"output" yaml:"output"`
}

// RetryDelay returns the delay between discovery attempts.
func (f FocusConfig) RetryDelay() time.Duration {
	return time.Duration(f.RetryDelayMs) * time.Millisecond
}

// SettleDelay returns the wait between activation and verification.
func (f FocusConfig) SettleDelay() time.Duration {
	return time.Duration(f.SettleDelayMs) * time.Millisecond
}

// Delay returns the inter-character typing delay.
func (t TypingConfig) Delay() time.Duration {
	return time.Duration(t.DelayMs) * time.Millisecond
}

// KeyDelay returns the pause after each key combo.
func (t TypingConfig) KeyDelay() time.Duration {
	return time.Duration(t.KeyDelayMs) * time.Millisecond
}

// WindowTimeout returns how long to wait for the launched app's window.
func (a AppConfig) WindowTimeout() time.Duration {
	return time.Duration(a.WindowTimeoutSec) * time.Second
}

// Timeout returns the HTTP client timeout.
func (s ServicesConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// Build compiles the configured safety policy.
func (s SafetyConfig) Build() (safety.Policy, error) {
	c, err := safety.NewClassifier(s.Deny, s.Allow)
	if err != nil {
		return nil, err
	}
	return safety.NewPolicy(s.Policy, c, s.MinFallbackTitle)
}

// DefaultPath returns $XDG_CONFIG_HOME/demopilot/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "demopilot", "config.toml")
}

// stateDir returns $XDG_STATE_HOME/demopilot.
func stateDir() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "demopilot")
}
