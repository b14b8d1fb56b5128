package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/history"
	"github.com/mj1618/demopilot/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scenario, smoke, seed and web runs",
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("kind", "", "Filter by kind: scenario, smoke, seed, web")
	historyCmd.Flags().Int("limit", 20, "Max runs to show")
	historyCmd.Flags().Bool("stats", false, "Show pass counts per kind instead of runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")
	stats, _ := cmd.Flags().GetBool("stats")

	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := commandContext(cmd)
	defer stop()

	if stats {
		st, err := store.Summary(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			st = []history.Stats{}
		}
		return output.Print(st)
	}
	runs, err := store.Recent(ctx, kind, limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []history.Run{}
	}
	return output.Print(runs)
}
