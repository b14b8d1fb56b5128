package cmd

import (
	"context"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/history"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/pilot"
	"github.com/mj1618/demopilot/internal/platform"
)

// newPilot builds the platform provider and wires it to the loaded config.
func newPilot() (*pilot.Pilot, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}
	return pilot.New(provider, cfg, logger.Logger)
}

// commandContext is cancelled on SIGINT or SIGTERM. Cancellation stops
// pending steps but cannot undo keystrokes already sent.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// progress writes live status lines to stderr so stdout stays parseable.
func progress() *output.Console {
	return output.NewConsole(os.Stderr, output.IsOutputPiped())
}

// newRand returns a generator seeded from seed, or from the clock when 0.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// recordRun stores a finished run in the history database. History is
// best effort: failures only warn.
func recordRun(ctx context.Context, kind, name string, ok bool, started time.Time, detail string) {
	if cfg == nil || cfg.History.Disabled || cfg.History.Path == "" {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return
	}
	defer store.Close()
	ctx = context.WithoutCancel(ctx)
	run := history.Run{
		Kind:     kind,
		Name:     name,
		OK:       ok,
		Started:  started,
		Duration: time.Since(started),
		Detail:   detail,
	}
	if _, err := store.Record(ctx, run); err != nil {
		logger.Warn("record run failed", "kind", kind, "name", name, "error", err)
	}
}

// finish prints result and maps a failed run to a non-zero exit status.
func finish(result interface{}, ok bool) error {
	if err := output.Print(result); err != nil {
		return err
	}
	if !ok {
		return errFailed
	}
	return nil
}
