package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/output"
)

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Find, focus and verify the demo window",
	Long: `Locate the demo app window, activate it and verify that focus landed on
it. Aborts before activating anything when a forbidden window (a code
editor) currently holds focus.`,
	RunE: runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
	focusCmd.Flags().Int("attempts", 0, "Discovery attempts (0 = config value)")
}

func runFocus(cmd *cobra.Command, args []string) error {
	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	a := p.Acquirer()
	if n, _ := cmd.Flags().GetInt("attempts"); n > 0 {
		a.MaxAttempts = n
	}
	attempt, err := a.Acquire(ctx, p.Session)
	if err != nil {
		if attempt.Reason == "" {
			attempt.Reason = err.Error()
		}
		return finish(attempt, false)
	}
	return output.Print(attempt)
}
