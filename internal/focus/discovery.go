// Package focus finds the demo target window and moves keyboard focus to it,
// verifying the result against the safety policy.
package focus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
)

// Discover lists all top-level windows. It never fails: a missing tool or a
// failed query yields an empty list and a warning.
func Discover(ctx context.Context, wm platform.WindowManager, log *slog.Logger) []model.Window {
	if log == nil {
		log = slog.Default()
	}
	windows, err := wm.ListWindows(ctx)
	if err != nil {
		if errors.Is(err, platform.ErrToolMissing) {
			log.Warn("window discovery unavailable", "error", err)
		} else {
			log.Warn("window query failed", "error", err)
		}
		return nil
	}
	return windows
}

// Candidates returns the windows the policy accepts as targets, in listing
// order.
func Candidates(windows []model.Window, p safety.Policy) []model.Window {
	var out []model.Window
	for _, w := range windows {
		if p.IsCandidateTarget(w.Title) {
			out = append(out, w)
		}
	}
	return out
}

// Fallbacks returns the windows the policy accepts as last-resort targets.
func Fallbacks(windows []model.Window, p safety.Policy) []model.Window {
	var out []model.Window
	for _, w := range windows {
		if p.FallbackCandidate(w.Title) {
			out = append(out, w)
		}
	}
	return out
}

// Entry is a window together with the policy's verdict on it.
type Entry struct {
	model.Window `yaml:",inline"`
	Verdict      safety.Verdict `yaml:"verdict"           json:"verdict"`
	Pattern      string         `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// Classify pairs every window with its verdict.
func Classify(windows []model.Window, p safety.Policy) []Entry {
	out := make([]Entry, 0, len(windows))
	for _, w := range windows {
		c := p.Classify(w.Title)
		out = append(out, Entry{Window: w, Verdict: c.Verdict, Pattern: c.Pattern})
	}
	return out
}
