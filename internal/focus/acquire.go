package focus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
)

// Defaults for the focus-and-verify loop.
const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
	DefaultSettleDelay = time.Second
)

// Acquirer locates the target window and focuses it.
type Acquirer struct {
	WM          platform.WindowManager
	Policy      safety.Policy
	MaxAttempts int
	RetryDelay  time.Duration
	SettleDelay time.Duration
	Sleep       Sleeper
	Log         *slog.Logger
}

func (a *Acquirer) logger() *slog.Logger {
	if a.Log == nil {
		return slog.Default()
	}
	return a.Log
}

func (a *Acquirer) sleep(ctx context.Context, d time.Duration) error {
	if a.Sleep == nil {
		return Sleep(ctx, d)
	}
	return a.Sleep(ctx, d)
}

// CheckActive fails with ErrSafetyBlock when the window currently holding
// focus is forbidden. An unknown active title is not an error here.
func (a *Acquirer) CheckActive(ctx context.Context) (string, error) {
	title, err := a.WM.ActiveWindowTitle(ctx)
	if err != nil {
		return "", nil
	}
	if a.Policy.IsForbidden(title) {
		c := a.Policy.Classify(title)
		a.logger().Error("SAFETY BLOCK: forbidden window is active",
			"title", title, "pattern", c.Pattern)
		return title, fmt.Errorf("%w: %q", ErrSafetyBlock, title)
	}
	return title, nil
}

// Find runs discovery up to MaxAttempts times and returns the chosen window.
// The returned bool reports whether it was a fallback choice.
func (a *Acquirer) Find(ctx context.Context, sess *Session) (model.Window, int, bool, error) {
	max := a.MaxAttempts
	if max < 1 {
		max = DefaultMaxAttempts
	}
	log := a.logger()

	var last []model.Window
	for attempt := 1; attempt <= max; attempt++ {
		windows := Discover(ctx, a.WM, log)
		if sess != nil {
			sess.Invalidate()
		}
		last = windows
		if cands := Candidates(windows, a.Policy); len(cands) > 0 {
			log.Debug("target window found", "attempt", attempt, "title", cands[0].Title)
			return cands[0], attempt, false, nil
		}
		log.Info("no target window yet", "attempt", attempt, "max", max, "windows", len(windows))
		if attempt < max {
			if err := a.sleep(ctx, a.RetryDelay); err != nil {
				return model.Window{}, attempt, false, err
			}
		}
	}

	if fb := Fallbacks(last, a.Policy); len(fb) > 0 {
		log.Warn("using fallback window", "title", fb[0].Title, "policy", a.Policy.Name())
		return fb[0], max, true, nil
	}
	return model.Window{}, max, false, fmt.Errorf("%w after %d attempts", ErrTargetNotFound, max)
}

// Acquire focuses the target window and verifies that focus landed on a
// window that is not forbidden. On success the window is stored in sess.
func (a *Acquirer) Acquire(ctx context.Context, sess *Session) (model.FocusAttempt, error) {
	log := a.logger()
	res := model.FocusAttempt{}

	if title, err := a.CheckActive(ctx); err != nil {
		res.ActiveTitle = title
		res.Reason = err.Error()
		return res, err
	}

	win, attempts, fallback, err := a.Find(ctx, sess)
	res.Attempt = attempts
	if err != nil {
		res.Reason = err.Error()
		return res, err
	}
	res.Window = &win
	res.Fallback = fallback

	if err := a.WM.Activate(ctx, win.ID); err != nil {
		res.Reason = err.Error()
		return res, fmt.Errorf("%w: %v", ErrActivationFailed, err)
	}
	if err := a.sleep(ctx, a.SettleDelay); err != nil {
		res.Reason = err.Error()
		return res, err
	}

	active, err := a.WM.ActiveWindowTitle(ctx)
	if err != nil || active == "" {
		res.Reason = "could not read active window title"
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrActivationFailed, err)
		}
		return res, fmt.Errorf("%w: empty active title", ErrActivationFailed)
	}
	res.ActiveTitle = active

	if a.Policy.IsForbidden(active) {
		log.Error("SAFETY BLOCK: forbidden window active after activation",
			"title", active, "requested", win.Title)
		res.Reason = "forbidden window active after activation"
		return res, fmt.Errorf("%w: %q", ErrSafetyBlock, active)
	}

	res.OK = true
	if sess != nil {
		sess.Set(win)
	}
	log.Info("focused target window", "id", win.ID, "title", active, "attempts", attempts)
	return res, nil
}
