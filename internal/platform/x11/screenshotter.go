package x11

import (
	"bytes"
	"context"
	"fmt"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Screenshotter implements platform.Screenshotter with ImageMagick's import.
type Screenshotter struct {
	runner Runner
}

// NewScreenshotter creates a screenshotter backed by runner.
func NewScreenshotter(runner Runner) *Screenshotter {
	return &Screenshotter{runner: runner}
}

// Capture grabs window id, or the root window when id is empty, as PNG.
func (s *Screenshotter) Capture(ctx context.Context, id string) ([]byte, error) {
	target := id
	if target == "" {
		target = "root"
	}
	out, err := s.runner.Run(ctx, "import", "-window", target, "png:-")
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	if !bytes.HasPrefix(out, pngMagic) {
		return nil, fmt.Errorf("screenshot: import did not return PNG data")
	}
	return out, nil
}
