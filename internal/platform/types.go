package platform

import (
	"fmt"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "", "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// X11Button returns the X11 button number (1 left, 2 middle, 3 right).
func (b MouseButton) X11Button() int {
	switch b {
	case MouseMiddle:
		return 2
	case MouseRight:
		return 3
	default:
		return 1
	}
}

func (b MouseButton) String() string {
	switch b {
	case MouseMiddle:
		return "middle"
	case MouseRight:
		return "right"
	default:
		return "left"
	}
}
