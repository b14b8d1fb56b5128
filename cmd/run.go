package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/capture"
	"github.com/mj1618/demopilot/internal/history"
	"github.com/mj1618/demopilot/internal/launcher"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/pilot"
	"github.com/mj1618/demopilot/internal/scenario"
)

var runCmd = &cobra.Command{
	Use:   "run <scenario | file.yaml>",
	Short: "Run a built-in demo scenario or a step file",
	Long: `Run a demo scenario against the app window. The argument is either the
name of a built-in scenario or a path to a YAML step file (same format as
'do'). Exits 1 when any step fails.

Built-in scenarios:
  registration, login, profile-setup, swipe,
  new-user-journey (registration + profile + swipe),
  existing-user-journey (login + swipe)

Examples:
  demopilot run new-user-journey --screenshots
  demopilot run login --email erik.astrom@example.se
  demopilot run demo.yaml --launch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("list", false, "List built-in scenarios and exit")
	runCmd.Flags().Int64("seed", 0, "Seed for generated demo data (0 = random)")
	runCmd.Flags().String("email", "", "Email used by login and registration scenarios")
	runCmd.Flags().String("password", "", "Password used by login and registration scenarios")
	runCmd.Flags().Bool("launch", false, "Launch the app first and stop it afterwards")
	runCmd.Flags().Bool("screenshots", false, "Save screenshot steps to a new session directory")
	runCmd.Flags().Bool("continue-on-error", false, "Keep running after a failed step")
}

// scenarioOptions controls executeScenario.
type scenarioOptions struct {
	Screenshots bool
	StopOnError bool
	Launch      bool
}

func runRun(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list || len(args) == 0 {
		return output.Print(scenario.Names())
	}
	seed, _ := cmd.Flags().GetInt64("seed")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	launch, _ := cmd.Flags().GetBool("launch")
	shots, _ := cmd.Flags().GetBool("screenshots")
	cont, _ := cmd.Flags().GetBool("continue-on-error")

	d := scenario.NewData(newRand(seed))
	if email != "" {
		d.Email = email
	}
	if password != "" {
		d.Password = password
	}
	name, steps, err := loadScenario(args[0], d)
	if err != nil {
		return err
	}

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	rep := executeScenario(ctx, p, name, steps, scenarioOptions{
		Screenshots: shots,
		StopOnError: !cont,
		Launch:      launch,
	})
	return finish(rep, rep.OK)
}

// loadScenario resolves arg as a step file when it exists on disk, else as a
// built-in scenario name.
func loadScenario(arg string, d scenario.Data) (string, []scenario.Step, error) {
	if strings.HasSuffix(arg, ".yaml") || strings.HasSuffix(arg, ".yml") {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", nil, fmt.Errorf("read step file: %w", err)
		}
		steps, err := scenario.Parse(data)
		return arg, steps, err
	}
	steps, err := scenario.Builtin(arg, d)
	return arg, steps, err
}

// executeScenario runs steps with live progress and records the run.
func executeScenario(ctx context.Context, p *pilot.Pilot, name string, steps []scenario.Step, opts scenarioOptions) scenario.Report {
	started := time.Now()
	con := progress()
	con.Header("Scenario: %s (%d steps)", name, len(steps))

	shotDir := ""
	if opts.Screenshots {
		dir, err := capture.SessionDir(p.Config().Capture.Dir, started)
		if err != nil {
			con.Warn("screenshots disabled: %v", err)
		} else {
			shotDir = dir
			con.Info("screenshots: %s", dir)
		}
	}

	if opts.Launch {
		l := p.Launcher()
		con.Info("launching %s", strings.Join(l.Command, " "))
		w, err := l.Start(ctx)
		defer func() {
			if err := l.Stop(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, launcher.ErrNotRunning) {
				con.Warn("stop app: %v", err)
			}
		}()
		if err != nil {
			con.Error("launch failed: %v", err)
			rep := scenario.Report{Action: "run", Scenario: name, Steps: len(steps), Error: err.Error(), Results: []scenario.StepResult{}}
			recordRun(ctx, history.KindScenario, name, false, started, rep.Error)
			return rep
		}
		con.Success("app window: %s", w.Title)
	}

	r := p.Runner(shotDir, opts.StopOnError)
	r.OnStep = func(res scenario.StepResult) {
		if res.OK {
			con.Step(res.Step, "%s %s", res.Action, stepDetail(res))
			return
		}
		con.Error("step %d %s: %s", res.Step, res.Action, res.Error)
	}
	rep := r.Run(ctx, name, steps)
	if rep.OK {
		con.Success("%s completed (%d/%d steps, %s)", name, rep.Completed, rep.Steps, rep.Elapsed)
	} else {
		con.Error("%s failed after %d/%d steps", name, rep.Completed, rep.Steps)
	}
	recordRun(ctx, history.KindScenario, name, rep.OK, started, rep.Error)
	return rep
}

func stepDetail(res scenario.StepResult) string {
	switch {
	case res.Field != "":
		return res.Field + "=" + res.Text
	case res.Key != "":
		return res.Key
	case res.Window != "":
		return res.Window
	case res.File != "":
		return res.File
	}
	return res.Text
}
