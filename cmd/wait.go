package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/safety"
)

// WaitResult is the output of a wait-window command.
type WaitResult struct {
	OK       bool   `yaml:"ok"                  json:"ok"`
	Action   string `yaml:"action"              json:"action"`
	Elapsed  string `yaml:"elapsed"             json:"elapsed"`
	Match    string `yaml:"match,omitempty"     json:"match,omitempty"`
	Window   string `yaml:"window,omitempty"    json:"window,omitempty"`
	TimedOut bool   `yaml:"timed_out,omitempty" json:"timed_out,omitempty"`
}

var waitCmd = &cobra.Command{
	Use:   "wait-window",
	Short: "Wait for the demo window to appear or disappear",
	Long: `Poll the window list until a candidate target window appears, or until it
is gone with --gone. --title narrows the match to a title substring; it
never matches a forbidden window.`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().String("title", "", "Title substring the target must contain (case-insensitive)")
	waitCmd.Flags().Bool("gone", false, "Invert: wait until no matching window remains")
	waitCmd.Flags().Int("timeout", 30, "Max seconds to wait")
	waitCmd.Flags().Int("interval", 500, "Polling interval in milliseconds")
}

func runWait(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	gone, _ := cmd.Flags().GetBool("gone")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	intervalMs, _ := cmd.Flags().GetInt("interval")

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	policy := p.Policy()
	start := time.Now()
	var found string
	err = focus.Until(ctx, time.Duration(timeoutSec)*time.Second, time.Duration(intervalMs)*time.Millisecond,
		func(ctx context.Context) (bool, error) {
			w, ok := matchWindow(focus.Discover(ctx, p.Provider.WindowManager, p.Log), policy, title)
			if ok {
				found = w.Title
			}
			return ok != gone, nil
		})

	res := WaitResult{
		Action:  "wait-window",
		Elapsed: fmt.Sprintf("%.1fs", time.Since(start).Seconds()),
		Match:   describeCondition(title, gone),
	}
	if err != nil {
		res.TimedOut = errors.Is(err, focus.ErrTimeout)
		return finish(res, false)
	}
	res.OK = true
	if !gone {
		res.Window = found
	}
	return output.Print(res)
}

// matchWindow returns the first candidate target whose title contains sub.
func matchWindow(windows []model.Window, p safety.Policy, sub string) (model.Window, bool) {
	sub = strings.ToLower(sub)
	for _, w := range focus.Candidates(windows, p) {
		if sub == "" || strings.Contains(strings.ToLower(w.Title), sub) {
			return w, true
		}
	}
	return model.Window{}, false
}

// describeCondition returns a human-readable description of what was waited for.
func describeCondition(title string, gone bool) string {
	desc := "target window"
	if title != "" {
		desc = fmt.Sprintf("target window title=%q", title)
	}
	if gone {
		desc += " (gone)"
	}
	return desc
}
