package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/platform"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click at screen coordinates in the demo window",
	Long:  "Click at absolute screen coordinates after verifying that the demo window, not a forbidden window, holds focus.",
	RunE:  runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	clickCmd.Flags().Int("x", -1, "Absolute X screen coordinate")
	clickCmd.Flags().Int("y", -1, "Absolute Y screen coordinate")
	clickCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	clickCmd.Flags().Bool("refocus", true, "Focus and verify the demo window first")
}

func runClick(cmd *cobra.Command, args []string) error {
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	buttonStr, _ := cmd.Flags().GetString("button")
	refocus, _ := cmd.Flags().GetBool("refocus")

	if x < 0 || y < 0 {
		return fmt.Errorf("specify --x and --y")
	}
	button, err := platform.ParseMouseButton(buttonStr)
	if err != nil {
		return err
	}

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	g := p.Guard()
	res := TypeResult{Action: "click", Key: fmt.Sprintf("%s@%d,%d", button, x, y)}
	return guarded(ctx, g, refocus, &res, func(ctx context.Context) error {
		return g.Click(ctx, x, y, button)
	})
}
