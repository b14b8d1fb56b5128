package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mj1618/demopilot/internal/capture"
	"github.com/mj1618/demopilot/internal/dispatch"
	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/logging"
	"github.com/mj1618/demopilot/internal/platform"
)

// Report is the outcome of a scenario run.
type Report struct {
	OK          bool         `yaml:"ok"                    json:"ok"`
	Action      string       `yaml:"action"                json:"action"`
	Scenario    string       `yaml:"scenario,omitempty"    json:"scenario,omitempty"`
	Steps       int          `yaml:"steps"                 json:"steps"`
	Completed   int          `yaml:"completed"             json:"completed"`
	Error       string       `yaml:"error,omitempty"       json:"error,omitempty"`
	Results     []StepResult `yaml:"results"               json:"results"`
	Screenshots []string     `yaml:"screenshots,omitempty" json:"screenshots,omitempty"`
	Elapsed     string       `yaml:"elapsed"               json:"elapsed"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Step    int    `yaml:"step"              json:"step"`
	OK      bool   `yaml:"ok"                json:"ok"`
	Action  string `yaml:"action"            json:"action"`
	Error   string `yaml:"error,omitempty"   json:"error,omitempty"`
	Field   string `yaml:"field,omitempty"   json:"field,omitempty"`
	Text    string `yaml:"text,omitempty"    json:"text,omitempty"`
	Key     string `yaml:"key,omitempty"     json:"key,omitempty"`
	Window  string `yaml:"window,omitempty"  json:"window,omitempty"`
	File    string `yaml:"file,omitempty"    json:"file,omitempty"`
	Elapsed string `yaml:"elapsed,omitempty" json:"elapsed,omitempty"`
}

// StepFunc is notified after each step. Used for live console progress.
type StepFunc func(StepResult)

// Runner executes steps through a Guard.
type Runner struct {
	Guard       *dispatch.Guard
	Screens     platform.Screenshotter
	ShotDir     string
	ShotScale   float64
	StopOnError bool
	WaitTimeout time.Duration
	OnStep      StepFunc
	Sleep       focus.Sleeper
	Log         *slog.Logger

	shots int
}

func (r *Runner) logger() *slog.Logger {
	if r.Log == nil {
		return slog.Default()
	}
	return r.Log
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep == nil {
		return focus.Sleep(ctx, d)
	}
	return r.Sleep(ctx, d)
}

// Run executes steps in order. With StopOnError the first failure ends the
// run; otherwise remaining steps still execute.
func (r *Runner) Run(ctx context.Context, name string, steps []Step) Report {
	start := time.Now()
	rep := Report{Action: "run", Scenario: name, Steps: len(steps), Results: make([]StepResult, 0, len(steps))}
	failed := false

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			rep.Error = fmt.Sprintf("step %d: %v", i+1, err)
			failed = true
			break
		}
		t0 := time.Now()
		res, err := r.execute(ctx, step)
		res.Step = i + 1
		res.Action = step.Kind
		res.Elapsed = time.Since(t0).Round(time.Millisecond).String()
		if err != nil {
			res.Error = err.Error()
			failed = true
			r.logger().Warn("step failed", "step", res.Step, "action", step.Kind, "error", err)
		} else {
			res.OK = true
			rep.Completed++
		}
		if res.File != "" {
			rep.Screenshots = append(rep.Screenshots, res.File)
		}
		rep.Results = append(rep.Results, res)
		if r.OnStep != nil {
			r.OnStep(res)
		}
		if err != nil && r.StopOnError {
			rep.Error = fmt.Sprintf("step %d: %s", res.Step, err.Error())
			break
		}
	}

	rep.OK = !failed
	rep.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return rep
}

func (r *Runner) execute(ctx context.Context, step Step) (StepResult, error) {
	p := step.Params
	switch step.Kind {
	case KindFocus:
		res, err := r.Guard.Refocus(ctx)
		out := StepResult{Window: res.ActiveTitle}
		return out, err

	case KindType:
		field := stringParam(p, "field", "text")
		text := stringParam(p, "text", "")
		if text == "" {
			return StepResult{Field: field}, fmt.Errorf("type requires text")
		}
		shown := text
		if logging.IsSensitive(field) {
			shown = logging.Redacted
		}
		return StepResult{Field: field, Text: shown}, r.Guard.TypeText(ctx, field, text)

	case KindKey:
		combo := stringParam(p, "combo", "")
		if combo == "" {
			return StepResult{}, fmt.Errorf("key requires combo")
		}
		return StepResult{Key: combo}, r.Guard.SendKey(ctx, stringParam(p, "label", ""), combo)

	case KindClick:
		btn, err := platform.ParseMouseButton(stringParam(p, "button", "left"))
		if err != nil {
			return StepResult{}, err
		}
		x, y := intParam(p, "x", -1), intParam(p, "y", -1)
		if x < 0 || y < 0 {
			return StepResult{}, fmt.Errorf("click requires x and y")
		}
		return StepResult{}, r.Guard.Click(ctx, x, y, btn)

	case KindSleep:
		ms := intParam(p, "ms", 0)
		if ms <= 0 {
			return StepResult{}, fmt.Errorf("ms must be > 0")
		}
		return StepResult{}, r.sleep(ctx, time.Duration(ms)*time.Millisecond)

	case KindWaitWindow:
		return r.waitWindow(ctx, p)

	case KindScreenshot:
		return r.screenshot(ctx, stringParam(p, "name", "screen"))

	case KindLog:
		msg := stringParam(p, "message", "")
		r.logger().Info("scenario", "message", msg)
		return StepResult{Text: msg}, nil
	}
	return StepResult{}, fmt.Errorf("unknown action: %s", step.Kind)
}

func (r *Runner) waitWindow(ctx context.Context, p map[string]interface{}) (StepResult, error) {
	timeout := r.WaitTimeout
	if s := intParam(p, "timeout", 0); s > 0 {
		timeout = time.Duration(s) * time.Second
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	interval := time.Duration(intParam(p, "interval", 500)) * time.Millisecond

	var title string
	err := focus.Until(ctx, timeout, interval, func(ctx context.Context) (bool, error) {
		cands := focus.Candidates(focus.Discover(ctx, r.Guard.WM, r.logger()), r.Guard.Policy)
		if len(cands) == 0 {
			return false, nil
		}
		title = cands[0].Title
		return true, nil
	})
	if err != nil {
		return StepResult{}, fmt.Errorf("waiting for target window: %w", err)
	}
	return StepResult{Window: title}, nil
}

func (r *Runner) screenshot(ctx context.Context, name string) (StepResult, error) {
	if r.Screens == nil || r.ShotDir == "" {
		r.logger().Debug("screenshot skipped, no capture directory", "name", name)
		return StepResult{Text: "skipped"}, nil
	}
	id := ""
	if r.Guard != nil && r.Guard.Session != nil {
		if w, ok := r.Guard.Session.Current(); ok {
			id = w.ID
		}
	}
	raw, err := r.Screens.Capture(ctx, id)
	if err != nil {
		return StepResult{}, fmt.Errorf("capture: %w", err)
	}
	img, err := capture.Process(raw, capture.Options{Scale: r.ShotScale, Caption: name})
	if err != nil {
		return StepResult{}, err
	}
	r.shots++
	path, err := capture.Save(r.ShotDir, r.shots, name, img)
	if err != nil {
		return StepResult{}, err
	}
	return StepResult{File: path}, nil
}
