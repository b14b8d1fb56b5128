package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/dispatch"
	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/logging"
	"github.com/mj1618/demopilot/internal/output"
)

// TypeResult is the output of the type and key commands.
type TypeResult struct {
	OK      bool   `yaml:"ok"                json:"ok"`
	Action  string `yaml:"action"            json:"action"`
	Field   string `yaml:"field,omitempty"   json:"field,omitempty"`
	Text    string `yaml:"text,omitempty"    json:"text,omitempty"`
	Key     string `yaml:"key,omitempty"     json:"key,omitempty"`
	Window  string `yaml:"window,omitempty"  json:"window,omitempty"`
	Error   string `yaml:"error,omitempty"   json:"error,omitempty"`
	Blocked bool   `yaml:"blocked,omitempty" json:"blocked,omitempty"`
}

var typeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text into the demo window",
	Long: `Type text into the focused demo window. The active window is re-checked
before typing and between chunks; input is refused when a forbidden window
holds focus or the active window cannot be determined.

Text can be passed as a positional argument or via --text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runType,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	typeCmd.Flags().String("text", "", "Text to type (alternative to positional arg)")
	typeCmd.Flags().String("field", "text", "Field name for logs; password-like names are redacted")
	typeCmd.Flags().Bool("refocus", true, "Focus and verify the demo window first")
	typeCmd.Flags().Int("delay", -1, "Delay between keystrokes in ms (-1 = config value)")
	typeCmd.Flags().Bool("no-clear", false, "Do not select-all before typing")
}

func runType(cmd *cobra.Command, args []string) error {
	text, _ := cmd.Flags().GetString("text")
	field, _ := cmd.Flags().GetString("field")
	refocus, _ := cmd.Flags().GetBool("refocus")
	delayMs, _ := cmd.Flags().GetInt("delay")
	noClear, _ := cmd.Flags().GetBool("no-clear")

	// Positional arg overrides --text flag
	if len(args) > 0 {
		text = args[0]
	}
	if text == "" {
		return fmt.Errorf("specify --text or a positional text argument")
	}

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	g := p.Guard()
	if delayMs >= 0 {
		g.Delay = time.Duration(delayMs) * time.Millisecond
	}
	if noClear {
		g.ClearFirst = false
	}

	shown := text
	if logging.IsSensitive(field) {
		shown = logging.Redacted
	}
	res := TypeResult{Action: "type", Field: field, Text: shown}
	return guarded(ctx, g, refocus, &res, func(ctx context.Context) error {
		return g.TypeText(ctx, field, text)
	})
}

// guarded optionally refocuses, runs fn and prints res.
func guarded(ctx context.Context, g *dispatch.Guard, refocus bool, res *TypeResult, fn func(context.Context) error) error {
	if refocus {
		attempt, err := g.Refocus(ctx)
		res.Window = attempt.ActiveTitle
		if err != nil {
			return failInput(res, err)
		}
	}
	if err := fn(ctx); err != nil {
		return failInput(res, err)
	}
	res.OK = true
	return output.Print(res)
}

func failInput(res *TypeResult, err error) error {
	res.Error = err.Error()
	res.Blocked = errors.Is(err, focus.ErrSafetyBlock)
	return finish(res, false)
}
