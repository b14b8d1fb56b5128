package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/output"
)

// LaunchResult is the output of the launch command.
type LaunchResult struct {
	OK      bool          `yaml:"ok"                json:"ok"`
	Action  string        `yaml:"action"            json:"action"`
	Command []string      `yaml:"command,omitempty" json:"command,omitempty"`
	Window  *model.Window `yaml:"window,omitempty"  json:"window,omitempty"`
	Error   string        `yaml:"error,omitempty"   json:"error,omitempty"`
}

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Start the demo app and wait for its window",
	Long: `Kill stale instances of the demo app, start it with the configured
command and wait until its window is listed.

By default the app keeps running after demopilot exits. With --wait the
command blocks until interrupted and then stops the app.`,
	RunE: runLaunch,
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().Bool("cleanup", false, "Only kill running instances")
	launchCmd.Flags().Bool("wait", false, "Block until interrupted, then stop the app")
}

func runLaunch(cmd *cobra.Command, args []string) error {
	cleanup, _ := cmd.Flags().GetBool("cleanup")
	wait, _ := cmd.Flags().GetBool("wait")

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	l := p.Launcher()
	if cleanup {
		if err := l.Cleanup(ctx); err != nil {
			return err
		}
		return output.Print(LaunchResult{OK: true, Action: "cleanup"})
	}

	res := LaunchResult{Action: "launch", Command: l.Command}
	w, err := l.Start(ctx)
	if err != nil {
		_ = l.Stop(context.WithoutCancel(ctx))
		res.Error = err.Error()
		return finish(res, false)
	}
	res.OK = true
	res.Window = &w
	if err := output.Print(res); err != nil {
		return err
	}
	if !wait {
		return nil
	}

	progress().Info("app running, press Ctrl+C to stop")
	<-ctx.Done()
	return l.Stop(context.Background())
}
