package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/capture"
	"github.com/mj1618/demopilot/internal/focus"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture a screenshot of the demo window",
	Long: `Capture the demo app window (or the whole screen with --screen), scale it
and optionally burn in a caption. Forbidden windows are never captured by
title; with no demo window listed the command fails unless --screen is set.`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().Bool("screen", false, "Capture the entire screen")
	screenshotCmd.Flags().String("output", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().Float64("scale", 0, "Scale factor 0.1-1.0 (0 = config value)")
	screenshotCmd.Flags().String("caption", "", "Caption drawn in the bottom-left corner")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	screen, _ := cmd.Flags().GetBool("screen")
	out, _ := cmd.Flags().GetString("output")
	scale, _ := cmd.Flags().GetFloat64("scale")
	caption, _ := cmd.Flags().GetString("caption")

	p, err := newPilot()
	if err != nil {
		return err
	}
	if p.Provider.Screenshotter == nil {
		return fmt.Errorf("screenshot not supported on this platform")
	}
	if scale <= 0 {
		scale = p.Config().Capture.Scale
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	id := ""
	if !screen {
		cands := focus.Candidates(focus.Discover(ctx, p.Provider.WindowManager, p.Log), p.Policy())
		if len(cands) == 0 {
			return fmt.Errorf("%w: no demo window listed (use --screen for the whole screen)", focus.ErrTargetNotFound)
		}
		id = cands[0].ID
	}

	raw, err := p.Provider.Screenshotter.Capture(ctx, id)
	if err != nil {
		return err
	}
	data, err := capture.Process(raw, capture.Options{Scale: scale, Caption: caption})
	if err != nil {
		return err
	}

	if out != "" {
		return os.WriteFile(out, data, 0o644)
	}

	// Default: write to stdout as base64 for easy agent consumption
	encoder := base64.NewEncoder(base64.StdEncoding, os.Stdout)
	if _, err := encoder.Write(data); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	fmt.Println()
	return nil
}
