package x11

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/demopilot/internal/model"
)

// WindowManager implements platform.WindowManager with wmctrl and xdotool.
type WindowManager struct {
	runner Runner
}

// NewWindowManager creates a window manager backed by runner.
func NewWindowManager(runner Runner) *WindowManager {
	return &WindowManager{runner: runner}
}

// ListWindows runs `wmctrl -l` and parses every well-formed line.
func (wm *WindowManager) ListWindows(ctx context.Context) ([]model.Window, error) {
	out, err := wm.runner.Run(ctx, "wmctrl", "-l")
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return ParseWindowList(string(out)), nil
}

// Activate runs `wmctrl -i -a <id>`.
func (wm *WindowManager) Activate(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("activate: empty window id")
	}
	if _, err := wm.runner.Run(ctx, "wmctrl", "-i", "-a", id); err != nil {
		return fmt.Errorf("activate window %s: %w", id, err)
	}
	return nil
}

// ActiveWindowTitle runs `xdotool getactivewindow getwindowname`.
func (wm *WindowManager) ActiveWindowTitle(ctx context.Context) (string, error) {
	out, err := wm.runner.Run(ctx, "xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		return "", fmt.Errorf("active window: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// ParseWindowList parses `wmctrl -l` output. Each line has the form
// "<id> <desktop> <host> <title...>"; the title may be empty or contain
// repeated spaces. Malformed lines are skipped.
func ParseWindowList(out string) []model.Window {
	var windows []model.Window
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, rest := nextField(line)
		deskStr, rest := nextField(rest)
		host, rest := nextField(rest)
		if !strings.HasPrefix(id, "0x") || deskStr == "" || host == "" {
			continue
		}
		desk, err := strconv.Atoi(deskStr)
		if err != nil {
			continue
		}
		windows = append(windows, model.Window{
			ID:      id,
			Desktop: desk,
			Host:    host,
			Title:   strings.TrimSpace(rest),
		})
	}
	return windows
}

// nextField splits off the first whitespace-delimited token of s.
func nextField(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}
