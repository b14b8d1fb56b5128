package platform

import (
	"context"
	"time"

	"github.com/mj1618/demopilot/internal/model"
)

// WindowManager queries and activates top-level windows.
type WindowManager interface {
	// ListWindows returns every top-level window, unfiltered.
	ListWindows(ctx context.Context) ([]model.Window, error)

	// Activate raises and focuses the window with the given handle.
	// Activation is asynchronous on most window managers; callers must
	// re-check the active window afterwards.
	Activate(ctx context.Context, id string) error

	// ActiveWindowTitle returns the title of the window holding keyboard focus.
	ActiveWindowTitle(ctx context.Context) (string, error)
}

// Inputter injects synthetic keyboard and mouse input into whatever window
// currently has focus. It performs no safety checks of its own.
type Inputter interface {
	TypeText(ctx context.Context, text string, delay time.Duration) error
	KeyCombo(ctx context.Context, combo string) error
	Click(ctx context.Context, x, y int, button MouseButton) error
}

// Screenshotter captures PNG screenshots.
type Screenshotter interface {
	// Capture grabs the window with the given handle, or the whole screen
	// when id is empty.
	Capture(ctx context.Context, id string) ([]byte, error)
}
