package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var keyCmd = &cobra.Command{
	Use:   "key <combo>",
	Short: "Send a key combination to the demo window",
	Long: `Send an xdotool key combination (e.g. Tab, Return, ctrl+a) to the focused
demo window after re-checking the active window.

Examples:
  demopilot key Tab
  demopilot key Return --label "submit login"`,
	Args: cobra.ExactArgs(1),
	RunE: runKey,
}

func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.Flags().String("label", "", "Human readable label for logs")
	keyCmd.Flags().Bool("refocus", true, "Focus and verify the demo window first")
}

func runKey(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("label")
	refocus, _ := cmd.Flags().GetBool("refocus")

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	g := p.Guard()
	combo := args[0]
	res := TypeResult{Action: "key", Key: combo}
	return guarded(ctx, g, refocus, &res, func(ctx context.Context) error {
		return g.SendKey(ctx, label, combo)
	})
}
