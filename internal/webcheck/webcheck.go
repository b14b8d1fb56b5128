// Package webcheck smoke-tests the web client in a headless Chrome by
// waiting for its data-testid elements.
package webcheck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Default test ids of the login screen and of the main navigation shown
// after login.
var (
	DefaultSelectors  = []string{"login-email", "login-password", "login-button"}
	LoggedInSelectors = []string{"profile-tab", "swipe-tab", "matches-tab"}
)

// Login fills and submits the login form before the post-login checks.
type Login struct {
	Email    string
	Password string
}

// Options controls Run.
type Options struct {
	URL        string
	Selectors  []string // data-testid values or raw CSS selectors
	Login      *Login
	Timeout    time.Duration // whole run
	WaitEach   time.Duration // per selector
	Screenshot bool
	Headless   bool
	ChromePath string
	Log        *slog.Logger
}

func (o Options) withDefaults() Options {
	if len(o.Selectors) == 0 {
		o.Selectors = DefaultSelectors
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.WaitEach <= 0 {
		o.WaitEach = 10 * time.Second
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	return o
}

// SelectorResult is the outcome for one element.
type SelectorResult struct {
	Selector string `yaml:"selector"        json:"selector"`
	Phase    string `yaml:"phase"           json:"phase"`
	Visible  bool   `yaml:"visible"         json:"visible"`
	Error    string `yaml:"error,omitempty" json:"error,omitempty"`
	Elapsed  string `yaml:"elapsed"         json:"elapsed"`
}

// Result is the outcome of a web check.
type Result struct {
	OK         bool             `yaml:"ok"                   json:"ok"`
	Action     string           `yaml:"action"               json:"action"`
	URL        string           `yaml:"url"                  json:"url"`
	Title      string           `yaml:"title,omitempty"      json:"title,omitempty"`
	Checks     []SelectorResult `yaml:"checks"               json:"checks"`
	Error      string           `yaml:"error,omitempty"      json:"error,omitempty"`
	Screenshot []byte           `yaml:"-"                    json:"-"`
}

// Selector turns a test id into a CSS selector. Values that already look
// like CSS are returned unchanged.
func Selector(s string) string {
	if strings.ContainsAny(s, "[.#> :") {
		return s
	}
	return fmt.Sprintf(`[data-testid=%q]`, s)
}

// AllocatorOptions returns the Chrome flags used by Run.
func AllocatorOptions(o Options) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", o.Headless),
		chromedp.NoFirstRun,
		chromedp.WindowSize(1280, 900),
	)
	if o.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(o.ChromePath))
	}
	return opts
}

// Run navigates to opts.URL and waits for every selector to become visible.
// A missing element fails the check but later selectors are still tried.
func Run(ctx context.Context, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Action: "web", URL: opts.URL}
	if opts.URL == "" {
		res.Error = "no URL given"
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, AllocatorOptions(opts)...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	if err := chromedp.Run(bctx,
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Title(&res.Title),
	); err != nil {
		res.Error = fmt.Sprintf("navigate: %v", err)
		return res
	}
	opts.Log.Info("web client loaded", "url", opts.URL, "title", res.Title)

	failed := false
	check := func(phase string, selectors []string) {
		for _, s := range selectors {
			r := waitVisible(bctx, Selector(s), opts.WaitEach)
			r.Phase = phase
			if !r.Visible {
				failed = true
			}
			res.Checks = append(res.Checks, r)
		}
	}
	check("initial", opts.Selectors)

	if opts.Login != nil && !failed {
		if err := chromedp.Run(bctx,
			chromedp.SendKeys(Selector("login-email"), opts.Login.Email, chromedp.ByQuery),
			chromedp.SendKeys(Selector("login-password"), opts.Login.Password, chromedp.ByQuery),
			chromedp.Click(Selector("login-button"), chromedp.ByQuery),
		); err != nil {
			res.Error = fmt.Sprintf("login: %v", err)
			failed = true
		} else {
			check("logged-in", LoggedInSelectors)
		}
	}

	if opts.Screenshot {
		if err := chromedp.Run(bctx, chromedp.FullScreenshot(&res.Screenshot, 90)); err != nil {
			opts.Log.Warn("web screenshot failed", "error", err)
		}
	}

	res.OK = !failed
	return res
}

func waitVisible(ctx context.Context, sel string, timeout time.Duration) SelectorResult {
	start := time.Now()
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	r := SelectorResult{Selector: sel}
	if err := chromedp.Run(wctx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		r.Error = err.Error()
	} else {
		r.Visible = true
	}
	r.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return r
}
