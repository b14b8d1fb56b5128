package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/output"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <title>",
	Short: "Show how the safety policy treats a window title",
	Long: `Classify a window title against the deny and allow patterns without
touching the desktop. Useful for checking custom patterns.

Examples:
  demopilot classify "main.ts - Visual Studio Code"
  demopilot classify "DatingApp (Demo)" --policy permissive`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

// ClassifyResult is the output of the classify command.
type ClassifyResult struct {
	Title    string `yaml:"title"             json:"title"`
	Policy   string `yaml:"policy"            json:"policy"`
	Verdict  string `yaml:"verdict"           json:"verdict"`
	Pattern  string `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Fallback bool   `yaml:"fallback"          json:"fallback"`
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	policy, err := cfg.Safety.Build()
	if err != nil {
		return fmt.Errorf("safety policy: %w", err)
	}
	c := policy.Classify(args[0])
	return output.Print(ClassifyResult{
		Title:    c.Title,
		Policy:   policy.Name(),
		Verdict:  string(c.Verdict),
		Pattern:  c.Pattern,
		Fallback: policy.FallbackCandidate(args[0]),
	})
}
