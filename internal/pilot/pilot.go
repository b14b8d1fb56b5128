// Package pilot wires configuration, platform backends and the safety policy
// into the focus, dispatch, scenario and launcher components.
package pilot

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/mj1618/demopilot/internal/config"
	"github.com/mj1618/demopilot/internal/dispatch"
	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/launcher"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
	"github.com/mj1618/demopilot/internal/scenario"
	"github.com/mj1618/demopilot/internal/services"
)

// Pilot owns the focus session shared by every component it builds.
type Pilot struct {
	Provider *platform.Provider
	Session  *focus.Session
	Log      *slog.Logger
	// Sleep overrides real waiting in every built component. Nil sleeps.
	Sleep focus.Sleeper

	mu     sync.RWMutex
	cfg    *config.Config
	policy safety.Policy
}

// New builds a Pilot from cfg. The safety policy is compiled immediately so
// configuration errors surface before any input is sent.
func New(p *platform.Provider, cfg *config.Config, log *slog.Logger) (*Pilot, error) {
	if log == nil {
		log = slog.Default()
	}
	pl := &Pilot{Provider: p, Session: focus.NewSession(), Log: log}
	if err := pl.SetConfig(cfg); err != nil {
		return nil, err
	}
	return pl, nil
}

// SetConfig swaps in a new configuration. The old one stays active when the
// new safety policy does not compile.
func (p *Pilot) SetConfig(cfg *config.Config) error {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	policy, err := cfg.Safety.Build()
	if err != nil {
		return fmt.Errorf("safety policy: %w", err)
	}
	p.mu.Lock()
	p.cfg, p.policy = cfg, policy
	p.mu.Unlock()
	p.Log.Debug("safety policy active", "policy", policy.Name(), "deny", len(cfg.Safety.Deny), "allow", len(cfg.Safety.Allow))
	return nil
}

// Config returns the active configuration.
func (p *Pilot) Config() *config.Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Policy returns the active safety policy.
func (p *Pilot) Policy() safety.Policy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.policy
}

// Acquirer returns a focus-and-verify loop using the active settings.
func (p *Pilot) Acquirer() *focus.Acquirer {
	cfg := p.Config()
	return &focus.Acquirer{
		WM:          p.Provider.WindowManager,
		Policy:      p.Policy(),
		MaxAttempts: cfg.Focus.MaxAttempts,
		RetryDelay:  cfg.Focus.RetryDelay(),
		SettleDelay: cfg.Focus.SettleDelay(),
		Sleep:       p.Sleep,
		Log:         p.Log,
	}
}

// Guard returns a guarded input dispatcher bound to the shared session.
func (p *Pilot) Guard() *dispatch.Guard {
	cfg := p.Config()
	return &dispatch.Guard{
		Input:      p.Provider.Inputter,
		WM:         p.Provider.WindowManager,
		Policy:     p.Policy(),
		Session:    p.Session,
		Acquirer:   p.Acquirer(),
		Delay:      cfg.Typing.Delay(),
		KeyDelay:   cfg.Typing.KeyDelay(),
		ChunkSize:  cfg.Typing.ChunkSize,
		ClearFirst: cfg.Typing.ClearFirst,
		Sleep:      p.Sleep,
		Log:        p.Log,
	}
}

// Runner returns a scenario runner. Screenshots go to shotDir when set.
func (p *Pilot) Runner(shotDir string, stopOnError bool) *scenario.Runner {
	cfg := p.Config()
	return &scenario.Runner{
		Guard:       p.Guard(),
		Screens:     p.Provider.Screenshotter,
		ShotDir:     shotDir,
		ShotScale:   cfg.Capture.Scale,
		StopOnError: stopOnError,
		WaitTimeout: cfg.App.WindowTimeout(),
		Sleep:       p.Sleep,
		Log:         p.Log,
	}
}

// Launcher returns a launcher for the configured application.
func (p *Pilot) Launcher() *launcher.Launcher {
	cfg := p.Config()
	return &launcher.Launcher{
		Command:         cfg.App.Command,
		Dir:             cfg.App.Dir,
		CleanupPatterns: cfg.App.CleanupPatterns,
		WindowTimeout:   cfg.App.WindowTimeout(),
		WM:              p.Provider.WindowManager,
		Policy:          p.Policy(),
		Log:             p.Log,
	}
}

// Endpoints returns the configured backend base URLs.
func Endpoints(cfg *config.Config) services.Endpoints {
	return services.Endpoints{
		Auth:        cfg.Services.AuthURL,
		User:        cfg.Services.UserURL,
		Matchmaking: cfg.Services.MatchmakingURL,
	}
}
