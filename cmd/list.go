package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/safety"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows with their safety verdict",
	Long:  "List top-level windows as reported by wmctrl, each marked forbidden, target or ignored by the active safety policy.",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("targets", false, "Only list candidate target windows")
	listCmd.Flags().Bool("pretty", false, "Pretty-print output (no-op for YAML)")
}

func runList(cmd *cobra.Command, args []string) error {
	p, err := newPilot()
	if err != nil {
		return err
	}
	targets, _ := cmd.Flags().GetBool("targets")

	ctx, stop := commandContext(cmd)
	defer stop()

	entries := focus.Classify(focus.Discover(ctx, p.Provider.WindowManager, p.Log), p.Policy())
	if targets {
		entries = filterVerdict(entries, safety.VerdictTarget)
	}
	return output.Print(entries)
}

func filterVerdict(entries []focus.Entry, v safety.Verdict) []focus.Entry {
	out := []focus.Entry{}
	for _, e := range entries {
		if e.Verdict == v {
			out = append(out, e)
		}
	}
	return out
}
