package platform

import (
	"errors"
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	WindowManager WindowManager
	Inputter      Inputter
	Screenshotter Screenshotter
}

// ErrUnsupported is returned on unsupported platforms.
var ErrUnsupported = fmt.Errorf("demopilot is not supported on %s/%s; supported: linux with X11 (wmctrl, xdotool)", runtime.GOOS, runtime.GOARCH)

// ErrToolMissing is returned when a required external command is not
// installed. It is wrapped with the command name.
var ErrToolMissing = errors.New("required tool not found")

// NewProviderFunc is set by platform-specific packages via init().
// See internal/platform/x11/init.go for the X11 registration.
var NewProviderFunc func() (*Provider, error)

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
