package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/history"
	"github.com/mj1618/demopilot/internal/webcheck"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Check that the web client renders its login form",
	Long: `Open the web client in headless Chrome and wait for the login form
elements (data-testid selectors) to become visible. With --email and
--password the form is submitted and the main tabs are checked as well.

Exits 1 when any element is missing.`,
	RunE: runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().String("url", "", "Web client URL (default: [services] web_url)")
	webCmd.Flags().StringSlice("selector", nil, "data-testid or CSS selector to wait for (repeatable)")
	webCmd.Flags().String("email", "", "Log in with this email")
	webCmd.Flags().String("password", "", "Log in with this password")
	webCmd.Flags().Int("timeout", 60, "Overall timeout in seconds")
	webCmd.Flags().String("screenshot", "", "Save a full-page JPEG screenshot to this path")
	webCmd.Flags().Bool("headed", false, "Show the browser window")
	webCmd.Flags().String("chrome", "", "Path to the Chrome binary")
}

func runWeb(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	selectors, _ := cmd.Flags().GetStringSlice("selector")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	timeoutSec, _ := cmd.Flags().GetInt("timeout")
	shot, _ := cmd.Flags().GetString("screenshot")
	headed, _ := cmd.Flags().GetBool("headed")
	chrome, _ := cmd.Flags().GetString("chrome")

	if url == "" {
		url = cfg.Services.WebURL
	}
	opts := webcheck.Options{
		URL:        url,
		Selectors:  selectors,
		Timeout:    time.Duration(timeoutSec) * time.Second,
		Screenshot: shot != "",
		Headless:   !headed,
		ChromePath: chrome,
		Log:        logger.Logger,
	}
	if email != "" || password != "" {
		if email == "" || password == "" {
			return fmt.Errorf("--email and --password must be given together")
		}
		opts.Login = &webcheck.Login{Email: email, Password: password}
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	con := progress()
	con.Header("Web client check: %s", url)
	started := time.Now()
	res := webcheck.Run(ctx, opts)
	for _, c := range res.Checks {
		if c.Visible {
			con.Success("%s %s (%s)", c.Phase, c.Selector, c.Elapsed)
		} else {
			con.Error("%s %s: %s", c.Phase, c.Selector, c.Error)
		}
	}
	if len(res.Screenshot) > 0 {
		if err := os.MkdirAll(filepath.Dir(shot), 0o755); err == nil {
			err = os.WriteFile(shot, res.Screenshot, 0o644)
			if err != nil {
				con.Warn("save screenshot: %v", err)
			} else {
				con.Info("screenshot: %s", shot)
			}
		}
	}
	recordRun(ctx, history.KindWeb, url, res.OK, started, res.Error)
	return finish(res, res.OK)
}
