//go:build linux

package x11

import "github.com/mj1618/demopilot/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		runner := ExecRunner{Timeout: DefaultTimeout}
		return &platform.Provider{
			WindowManager: NewWindowManager(runner),
			Inputter:      NewInputter(runner),
			Screenshotter: NewScreenshotter(runner),
		}, nil
	}
}
