// Package dispatch sends synthetic input to the target window, re-checking
// the active window before every side effect.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/logging"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
)

// DefaultChunkSize is the number of runes typed between focus re-checks.
const DefaultChunkSize = 10

// ErrUnverified means the active window could not be determined, so input
// was withheld.
var ErrUnverified = errors.New("cannot verify active window")

// Guard wraps an Inputter so that no input reaches a forbidden window.
type Guard struct {
	Input    platform.Inputter
	WM       platform.WindowManager
	Policy   safety.Policy
	Session  *focus.Session
	Acquirer *focus.Acquirer

	Delay      time.Duration // between characters
	KeyDelay   time.Duration // after each key combo
	ChunkSize  int
	ClearFirst bool
	Sleep      focus.Sleeper
	Log        *slog.Logger
}

func (g *Guard) logger() *slog.Logger {
	if g.Log == nil {
		return slog.Default()
	}
	return g.Log
}

func (g *Guard) sleep(ctx context.Context, d time.Duration) error {
	if g.Sleep == nil {
		return focus.Sleep(ctx, d)
	}
	return g.Sleep(ctx, d)
}

// CheckActive re-queries the active window title and refuses forbidden or
// unknown windows.
func (g *Guard) CheckActive(ctx context.Context) (string, error) {
	title, err := g.WM.ActiveWindowTitle(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	if title == "" {
		return "", fmt.Errorf("%w: empty active title", ErrUnverified)
	}
	if g.Policy.IsForbidden(title) {
		c := g.Policy.Classify(title)
		g.logger().Error("SAFETY BLOCK: refusing input to forbidden window",
			"title", title, "pattern", c.Pattern)
		return title, fmt.Errorf("%w: %q", focus.ErrSafetyBlock, title)
	}
	return title, nil
}

// TypeText types text into the focused window. Long texts are typed in
// chunks with a re-check before each chunk.
func (g *Guard) TypeText(ctx context.Context, field, text string) error {
	if _, err := g.CheckActive(ctx); err != nil {
		return err
	}
	shown := text
	if logging.IsSensitive(field) {
		shown = logging.Redacted
	}
	g.logger().Info("typing", "field", field, "text", shown, "runes", len([]rune(text)))

	if g.ClearFirst {
		if err := g.Input.KeyCombo(ctx, "ctrl+a"); err != nil {
			return fmt.Errorf("clear %s: %w", field, err)
		}
	}

	size := g.ChunkSize
	if size < 1 {
		size = DefaultChunkSize
	}
	chunks := Chunk(text, size)
	for i, c := range chunks {
		if i > 0 {
			if _, err := g.CheckActive(ctx); err != nil {
				return fmt.Errorf("typing %s interrupted after %d of %d chunks: %w", field, i, len(chunks), err)
			}
		}
		if err := g.Input.TypeText(ctx, c, g.Delay); err != nil {
			return fmt.Errorf("type %s: %w", field, err)
		}
	}
	return nil
}

// SendKey sends a key combination such as "Tab" or "ctrl+a".
func (g *Guard) SendKey(ctx context.Context, label, combo string) error {
	if _, err := g.CheckActive(ctx); err != nil {
		return err
	}
	if label == "" {
		label = combo
	}
	g.logger().Info("key", "label", label, "combo", combo)
	if err := g.Input.KeyCombo(ctx, combo); err != nil {
		return fmt.Errorf("key %s: %w", label, err)
	}
	return g.sleep(ctx, g.KeyDelay)
}

// Click clicks at screen coordinates.
func (g *Guard) Click(ctx context.Context, x, y int, button platform.MouseButton) error {
	if _, err := g.CheckActive(ctx); err != nil {
		return err
	}
	g.logger().Info("click", "x", x, "y", y, "button", button.String())
	if err := g.Input.Click(ctx, x, y, button); err != nil {
		return fmt.Errorf("click (%d,%d): %w", x, y, err)
	}
	return nil
}

// Refocus re-runs the focus-and-verify loop.
func (g *Guard) Refocus(ctx context.Context) (model.FocusAttempt, error) {
	if g.Acquirer == nil {
		return model.FocusAttempt{}, errors.New("no focus acquirer configured")
	}
	return g.Acquirer.Acquire(ctx, g.Session)
}

// Chunk splits s into pieces of at most n runes.
func Chunk(s string, n int) []string {
	if s == "" {
		return nil
	}
	r := []rune(s)
	if n < 1 || len(r) <= n {
		return []string{s}
	}
	var out []string
	for len(r) > 0 {
		k := n
		if k > len(r) {
			k = len(r)
		}
		out = append(out, string(r[:k]))
		r = r[k:]
	}
	return out
}
