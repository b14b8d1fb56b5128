package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/capture"
	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/launcher"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/pilot"
	"github.com/mj1618/demopilot/internal/scenario"
	"github.com/mj1618/demopilot/internal/seeder"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive demo menu",
	Long: `Show a numbered menu of demos and helpers and run the chosen entry. A
failing entry prints its error and returns to the menu. Choose 0 or send
EOF to exit; an app started from the menu is stopped on exit.`,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
	menuCmd.Flags().Bool("screenshots", false, "Save scenario screenshots to a session directory")
}

// menuItem is one numbered menu entry.
type menuItem struct {
	Label string
	Run   func(ctx context.Context, in *bufio.Reader) error
}

// menu reads choices from in until "0", EOF or cancellation. Entry errors
// are printed and the loop continues.
type menu struct {
	Title string
	Items []menuItem
	Out   io.Writer
	Con   *output.Console
}

func (m *menu) show() {
	m.Con.Header("%s", m.Title)
	for i, it := range m.Items {
		fmt.Fprintf(m.Out, "%2d. %s\n", i+1, it.Label)
	}
	fmt.Fprintf(m.Out, "%2d. Exit\n", 0)
	fmt.Fprintf(m.Out, "\nChoose an option (0-%d): ", len(m.Items))
}

// loop returns the number of entries that failed.
func (m *menu) loop(ctx context.Context, in *bufio.Reader) int {
	failures := 0
	for {
		m.show()
		line, err := in.ReadString('\n')
		choice := strings.TrimSpace(line)
		if choice == "" && err != nil {
			fmt.Fprintln(m.Out)
			return failures
		}
		if choice == "0" {
			return failures
		}
		var n int
		if _, perr := fmt.Sscanf(choice, "%d", &n); perr != nil || n < 1 || n > len(m.Items) {
			m.Con.Error("invalid option %q, choose 0-%d", choice, len(m.Items))
			continue
		}
		it := m.Items[n-1]
		m.Con.Info("%s", it.Label)
		if rerr := runItem(ctx, it, in); rerr != nil {
			failures++
			m.Con.Error("%s failed: %v", it.Label, rerr)
		} else {
			m.Con.Success("%s done", it.Label)
		}
		if ctx.Err() != nil {
			return failures
		}
		if err != nil {
			return failures
		}
	}
}

// runItem runs one entry, turning a panic into an error so the menu
// survives it.
func runItem(ctx context.Context, it menuItem, in *bufio.Reader) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return it.Run(ctx, in)
}

// prompt asks for a value, returning def on an empty answer.
func prompt(in *bufio.Reader, out io.Writer, label, def string) string {
	fmt.Fprintf(out, "%s [%s]: ", label, def)
	line, _ := in.ReadString('\n')
	if v := strings.TrimSpace(line); v != "" {
		return v
	}
	return def
}

func runMenu(cmd *cobra.Command, args []string) error {
	shots, _ := cmd.Flags().GetBool("screenshots")

	p, err := newPilot()
	if err != nil {
		return err
	}
	ctx, stop := commandContext(cmd)
	defer stop()

	con := output.DefaultConsole()
	if title, err := p.Acquirer().CheckActive(ctx); errors.Is(err, focus.ErrSafetyBlock) {
		con.Warn("a forbidden window is active (%q); input is refused until the demo window has focus", title)
	}

	l := p.Launcher()
	defer func() {
		if l.Running() {
			_ = l.Stop(context.Background())
		}
	}()

	m := &menu{
		Title: "demopilot: demo menu (VS Code protection on)",
		Items: menuItems(p, l, shots),
		Out:   os.Stdout,
		Con:   con,
	}
	if failures := m.loop(ctx, bufio.NewReader(os.Stdin)); failures > 0 {
		con.Warn("%d menu entries failed this session", failures)
	}
	return nil
}

func menuItems(p *pilot.Pilot, l *launcher.Launcher, shots bool) []menuItem {
	scenarioItem := func(label, name string, ask bool) menuItem {
		return menuItem{Label: label, Run: func(ctx context.Context, in *bufio.Reader) error {
			d := scenario.NewData(newRand(0))
			if ask {
				users := seeder.DefaultUsers()
				d.Email = prompt(in, os.Stdout, "Email", users.Users[0].Email)
				d.Password = prompt(in, os.Stdout, "Password", users.Password)
			}
			steps, err := scenario.Builtin(name, d)
			if err != nil {
				return err
			}
			rep := executeScenario(ctx, p, name, steps, scenarioOptions{Screenshots: shots, StopOnError: true})
			if !rep.OK {
				return errors.New(rep.Error)
			}
			return nil
		}}
	}

	return []menuItem{
		scenarioItem("Registration demo", "registration", false),
		scenarioItem("Login demo", "login", true),
		scenarioItem("Profile setup demo", "profile-setup", false),
		scenarioItem("Swipe demo", "swipe", false),
		scenarioItem("New user journey", "new-user-journey", false),
		scenarioItem("Existing user journey", "existing-user-journey", true),
		{Label: "Visual check (screenshot)", Run: func(ctx context.Context, _ *bufio.Reader) error {
			return menuScreenshot(ctx, p)
		}},
		{Label: "Restart app", Run: func(ctx context.Context, _ *bufio.Reader) error {
			if l.Running() {
				if err := l.Stop(ctx); err != nil {
					return err
				}
			}
			w, err := l.Start(ctx)
			if err != nil {
				return err
			}
			p.Session.Invalidate()
			progress().Info("app window: %s", w.Title)
			return nil
		}},
		{Label: "Stop app", Run: func(ctx context.Context, _ *bufio.Reader) error {
			p.Session.Invalidate()
			if err := l.Stop(ctx); err != nil && !errors.Is(err, launcher.ErrNotRunning) {
				return err
			}
			return l.Cleanup(ctx)
		}},
		{Label: "Seed demo data", Run: func(ctx context.Context, _ *bufio.Reader) error {
			_, err := seed(ctx, seeder.DefaultUsers(), newRand(0), 200*time.Millisecond, true)
			return err
		}},
		{Label: "Backend smoke test", Run: func(ctx context.Context, _ *bufio.Reader) error {
			res, err := smoke(ctx, nil, cfg.Services.Timeout())
			if err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("%d checks failed", res.Failed)
			}
			return nil
		}},
	}
}

// menuScreenshot saves a captioned screenshot of the demo window.
func menuScreenshot(ctx context.Context, p *pilot.Pilot) error {
	if p.Provider.Screenshotter == nil {
		return errors.New("screenshot not supported on this platform")
	}
	cands := focus.Candidates(focus.Discover(ctx, p.Provider.WindowManager, p.Log), p.Policy())
	if len(cands) == 0 {
		return focus.ErrTargetNotFound
	}
	raw, err := p.Provider.Screenshotter.Capture(ctx, cands[0].ID)
	if err != nil {
		return err
	}
	now := time.Now()
	data, err := capture.Process(raw, capture.Options{Scale: p.Config().Capture.Scale, Caption: cands[0].Title})
	if err != nil {
		return err
	}
	dir, err := capture.SessionDir(p.Config().Capture.Dir, now)
	if err != nil {
		return err
	}
	path, err := capture.Save(dir, 1, "visual_check", data)
	if err != nil {
		return err
	}
	progress().Info("screenshot: %s", path)
	return nil
}
