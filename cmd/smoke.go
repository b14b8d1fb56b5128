package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/history"
	"github.com/mj1618/demopilot/internal/pilot"
	"github.com/mj1618/demopilot/internal/services"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Smoke-test the backend services",
	Long: `Run HTTP smoke checks against the auth, user and matchmaking services.
Exits 1 unless every check passes.

Suites: health, auth, user, matchmaking (default: all, in that order)

Examples:
  demopilot smoke
  demopilot smoke --suite health --suite auth`,
	RunE: runSmoke,
}

func init() {
	rootCmd.AddCommand(smokeCmd)
	smokeCmd.Flags().StringSlice("suite", nil, "Suites to run (repeatable)")
	smokeCmd.Flags().Int("timeout", 0, "Per-request timeout in seconds (0 = config value)")
}

func runSmoke(cmd *cobra.Command, args []string) error {
	suites, _ := cmd.Flags().GetStringSlice("suite")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")

	timeout := cfg.Services.Timeout()
	if timeoutSec > 0 {
		timeout = time.Duration(timeoutSec) * time.Second
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	res, err := smoke(ctx, suites, timeout)
	if err != nil {
		return err
	}
	return finish(res, res.OK)
}

// smoke runs the suites with live progress and records the run.
func smoke(ctx context.Context, suites []string, timeout time.Duration) (services.Result, error) {
	con := progress()
	con.Header("Backend smoke test")
	t := services.NewTester(pilot.Endpoints(cfg), timeout)
	t.Log = logger.Logger
	t.OnCheck = func(c services.CheckResult) {
		if c.OK {
			con.Success("%s/%s (%d, %s)", c.Suite, c.Name, c.Status, c.Elapsed)
			return
		}
		con.Error("%s/%s: %s", c.Suite, c.Name, c.Detail)
	}

	started := time.Now()
	res, err := t.Run(ctx, suites...)
	if err != nil {
		return res, err
	}
	if res.OK {
		con.Success("all %d checks passed", res.Passed)
	} else {
		con.Error("%d of %d checks failed", res.Failed, res.Passed+res.Failed)
	}
	name := "all"
	if len(suites) > 0 {
		name = strings.Join(suites, ",")
	}
	recordRun(ctx, history.KindSmoke, name, res.OK, started, fmt.Sprintf("passed=%d failed=%d", res.Passed, res.Failed))
	return res, nil
}
