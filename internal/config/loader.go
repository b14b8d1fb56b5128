package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvPolicy           = "DEMOPILOT_POLICY"
	EnvAuthURL          = "DEMOPILOT_AUTH_URL"
	EnvUserURL          = "DEMOPILOT_USER_URL"
	EnvMatchmakingURL   = "DEMOPILOT_MATCHMAKING_URL"
	EnvWebURL           = "DEMOPILOT_WEB_URL"
	EnvIdPURL           = "DEMOPILOT_IDP_URL"
	EnvIdPAdminPassword = "DEMOPILOT_IDP_ADMIN_PASSWORD"
	EnvAppDir           = "DEMOPILOT_APP_DIR"
	EnvLogLevel         = "DEMOPILOT_LOG_LEVEL"
)

// Load reads path (TOML, JSON or YAML by extension), applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := loadConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays DEMOPILOT_* environment variables.
func (c *Config) ApplyEnvOverrides() {
	overrides := map[string]*string{
		EnvPolicy:           &c.Safety.Policy,
		EnvAuthURL:          &c.Services.AuthURL,
		EnvUserURL:          &c.Services.UserURL,
		EnvMatchmakingURL:   &c.Services.MatchmakingURL,
		EnvWebURL:           &c.Services.WebURL,
		EnvIdPURL:           &c.IdP.URL,
		EnvIdPAdminPassword: &c.IdP.AdminPassword,
		EnvAppDir:           &c.App.Dir,
		EnvLogLevel:         &c.Log.Level,
	}
	for env, dst := range overrides {
		if v, ok := os.LookupEnv(env); ok && v != "" {
			*dst = v
		}
	}
}

// loadConfigFromFile reads and parses a config file based on its extension.
func loadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}
	return cfg, nil
}

// Loader holds the current configuration and reloads it when the file
// changes on disk.
type Loader struct {
	path     string
	mu       sync.RWMutex
	config   *Config
	watcher  *fsnotify.Watcher
	onChange []func(*Config)
	errChan  chan error
	cancel   context.CancelFunc
}

// NewLoader loads path and returns a Loader for it.
func NewLoader(path string) (*Loader, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Loader{path: path, config: cfg, errChan: make(chan error, 1)}, nil
}

// Config returns the current configuration.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config
}

// OnChange registers a callback invoked after each successful reload.
// Register callbacks before calling Watch.
func (l *Loader) OnChange(cb func(*Config)) {
	l.onChange = append(l.onChange, cb)
}

// Errors returns reload and watcher errors.
func (l *Loader) Errors() <-chan error {
	return l.errChan
}

// Watch starts watching the configuration file's directory. Invalid edits
// are reported on Errors and leave the current configuration in place.
func (l *Loader) Watch(ctx context.Context) error {
	if l.path == "" {
		return fmt.Errorf("watch: no config path")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	l.watcher = watcher

	ctx, l.cancel = context.WithCancel(ctx)
	go l.watchLoop(ctx)
	return nil
}

func (l *Loader) watchLoop(ctx context.Context) {
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(l.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, l.reload)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.report(err)
		}
	}
}

// reload re-reads the file and swaps the configuration if it is valid.
func (l *Loader) reload() {
	cfg, err := Load(l.path)
	if err != nil {
		l.report(fmt.Errorf("reload config: %w", err))
		return
	}
	l.mu.Lock()
	l.config = cfg
	l.mu.Unlock()
	for _, cb := range l.onChange {
		cb(cfg)
	}
}

func (l *Loader) report(err error) {
	select {
	case l.errChan <- err:
	default:
	}
}

// Close stops the watcher.
func (l *Loader) Close() error {
	if l.cancel != nil {
		l.cancel()
	}
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
