// Package logging provides structured logging with slog for demopilot.
//
// Features:
//   - JSON and text output formats
//   - Log levels (debug, info, warn, error)
//   - Sensitive data redaction (passwords, tokens)
//   - Component-scoped loggers
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// Redacted replaces the value of sensitive attributes.
const Redacted = "[REDACTED]"

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or JSON).
	Format Format

	// Output is "stdout", "stderr" or a file path.
	Output string

	// AddSource adds source file and line to log entries.
	AddSource bool

	// Component is the name of the component using this logger.
	Component string

	// Writer overrides Output when set. Used by tests.
	Writer io.Writer
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:     LevelWarn,
		Format:    FormatText,
		Output:    "stderr",
		Component: "demopilot",
	}
}

// Logger wraps slog.Logger with the configuration it was built from.
type Logger struct {
	*slog.Logger
	config *Config
	closer io.Closer
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Default returns the default global logger.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		l, err := New(DefaultConfig())
		if err != nil {
			l = &Logger{Logger: slog.Default(), config: DefaultConfig()}
		}
		defaultLogger = l
	}
	return defaultLogger
}

// SetDefault sets the default global logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	slog.SetDefault(l.Logger)
}

// New creates a new Logger with the given configuration.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{config: cfg}

	w := cfg.Writer
	if w == nil {
		switch strings.ToLower(cfg.Output) {
		case "", "stderr":
			w = os.Stderr
		case "stdout":
			w = os.Stdout
		default:
			f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			l.closer = f
		}
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if shouldRedact(a.Key) {
				a.Value = slog.StringValue(Redacted)
			}
			return a
		},
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	if cfg.Component != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("component", cfg.Component),
		})
	}

	l.Logger = slog.New(handler)
	return l, nil
}

// shouldRedact checks if an attribute key names sensitive data.
func shouldRedact(key string) bool {
	sensitiveKeys := []string{
		"password", "passwd", "secret", "token", "credential",
		"api_key", "apikey", "bearer", "authorization",
	}

	keyLower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}

// IsSensitive reports whether a field name should never be logged verbatim.
func IsSensitive(name string) bool {
	return shouldRedact(name)
}

// WithComponent returns a new logger with a different component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("component", name)),
		config: l.config,
	}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown log format: %q", s)
	}
}

// LevelString returns the string representation of a level.
func LevelString(level Level) string {
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return level.String()
	}
}
