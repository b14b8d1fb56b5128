package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/scenario"
)

var doCmd = &cobra.Command{
	Use:   "do",
	Short: "Execute a list of steps from stdin",
	Long: `Execute a sequence of steps from a YAML list on stdin.

Each step is an action name with its parameters as a map. Steps execute
sequentially, and by default execution stops on the first error. Every
type, key and click step re-checks the active window first.

Supported step types: focus, type, key, click, sleep, wait-window,
screenshot, log

Example:
  demopilot do <<'EOF'
  - focus:
  - type: { field: email, text: "anna@example.se" }
  - key: { combo: Tab }
  - type: { field: password, text: "Demo123!" }
  - key: { combo: Return, label: "submit" }
  - wait-window: { timeout: 10 }
  EOF`,
	RunE: runDo,
}

func init() {
	rootCmd.AddCommand(doCmd)
	doCmd.Flags().Bool("stop-on-error", true, "Stop execution on first error")
	doCmd.Flags().Bool("screenshots", false, "Save screenshot steps to a new session directory")
}

func runDo(cmd *cobra.Command, args []string) error {
	stopOnError, _ := cmd.Flags().GetBool("stop-on-error")
	shots, _ := cmd.Flags().GetBool("screenshots")

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("no steps provided on stdin, pipe a YAML list of actions")
	}
	steps, err := scenario.Parse(data)
	if err != nil {
		return err
	}

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	rep := executeScenario(ctx, p, "stdin", steps, scenarioOptions{
		Screenshots: shots,
		StopOnError: stopOnError,
	})
	rep.Action = "do"
	return finish(rep, rep.OK)
}
