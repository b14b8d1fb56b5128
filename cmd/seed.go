package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/history"
	"github.com/mj1618/demopilot/internal/pilot"
	"github.com/mj1618/demopilot/internal/seeder"
	"github.com/mj1618/demopilot/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision demo users, profiles and matches",
	Long: `Create the demo users in the identity provider (when [idp] url is set),
register them with the auth service, create their profiles and a few
mutual matches. Users come from the embedded demo_users.yaml or --file;
either is validated against the demo user schema first.

Individual failures are reported in the summary. Seeding aborts when a
backend service is not healthy.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("file", "", "YAML file with demo users (default: embedded)")
	seedCmd.Flags().Int64("seed", 0, "Seed for generated profile data (0 = random)")
	seedCmd.Flags().Int("delay", 200, "Pause between write requests in ms")
	seedCmd.Flags().Bool("skip-health", false, "Do not probe service health first")
}

func runSeed(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	seedVal, _ := cmd.Flags().GetInt64("seed")
	delayMs, _ := cmd.Flags().GetInt("delay")
	skipHealth, _ := cmd.Flags().GetBool("skip-health")

	users := seeder.DefaultUsers()
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read users: %w", err)
		}
		users, err = seeder.ParseUsers(data)
		if err != nil {
			return err
		}
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	sum, err := seed(ctx, users, newRand(seedVal), time.Duration(delayMs)*time.Millisecond, !skipHealth)
	if err != nil && !errors.Is(err, seeder.ErrServicesDown) {
		return err
	}
	return finish(sum, err == nil && sum.OK)
}

// seed provisions users with live progress and records the run.
func seed(ctx context.Context, users seeder.UserFile, r *rand.Rand, delay time.Duration, probe bool) (seeder.Summary, error) {
	timeout := cfg.Services.Timeout()
	s := &seeder.Seeder{
		Endpoints: pilot.Endpoints(cfg),
		Timeout:   timeout,
		Rand:      r,
		Delay:     delay,
		Log:       logger.Logger,
	}
	if probe {
		s.Prober = services.NewProber(timeout)
	}
	if cfg.IdP.URL != "" {
		s.IdP = &seeder.IdP{
			BaseURL:       cfg.IdP.URL,
			Realm:         cfg.IdP.Realm,
			AdminRealm:    cfg.IdP.AdminRealm,
			ClientID:      cfg.IdP.ClientID,
			AdminUser:     cfg.IdP.AdminUser,
			AdminPassword: cfg.IdP.AdminPassword,
			Timeout:       timeout,
		}
	}

	con := progress()
	con.Header("Seeding %d demo users", len(users.Users))
	started := time.Now()
	sum, err := s.Run(ctx, users)
	for _, f := range sum.Failures {
		con.Warn("%s", f)
	}
	if err != nil {
		con.Error("%v", err)
		recordRun(ctx, history.KindSeed, "demo-users", false, started, err.Error())
		return sum, err
	}
	detail := fmt.Sprintf("registered=%d profiles=%d matches=%d failures=%d", sum.Registered, sum.Profiles, sum.Matches, len(sum.Failures))
	con.Success("%s", detail)
	recordRun(ctx, history.KindSeed, "demo-users", sum.OK, started, detail)
	return sum, nil
}
