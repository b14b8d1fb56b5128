package x11

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mj1618/demopilot/internal/platform"
)

// Inputter implements platform.Inputter with xdotool.
type Inputter struct {
	runner Runner
}

// NewInputter creates an inputter backed by runner.
func NewInputter(runner Runner) *Inputter {
	return &Inputter{runner: runner}
}

// TypeText types text into the focused window with delay between keystrokes.
func (in *Inputter) TypeText(ctx context.Context, text string, delay time.Duration) error {
	if text == "" {
		return nil
	}
	ms := strconv.FormatInt(delay.Milliseconds(), 10)
	if _, err := in.runner.Run(ctx, "xdotool", "type", "--delay", ms, "--", text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

// KeyCombo sends a named key or chord such as "Tab", "Return" or "ctrl+a".
func (in *Inputter) KeyCombo(ctx context.Context, combo string) error {
	if combo == "" {
		return fmt.Errorf("key combo: empty")
	}
	if _, err := in.runner.Run(ctx, "xdotool", "key", "--", combo); err != nil {
		return fmt.Errorf("key %s: %w", combo, err)
	}
	return nil
}

// Click moves the pointer to (x, y) and clicks button.
func (in *Inputter) Click(ctx context.Context, x, y int, button platform.MouseButton) error {
	_, err := in.runner.Run(ctx, "xdotool",
		"mousemove", strconv.Itoa(x), strconv.Itoa(y),
		"click", strconv.Itoa(button.X11Button()))
	if err != nil {
		return fmt.Errorf("click at (%d,%d): %w", x, y, err)
	}
	return nil
}
