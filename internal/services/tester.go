package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Suite names.
const (
	SuiteHealth      = "health"
	SuiteAuth        = "auth"
	SuiteUser        = "user"
	SuiteMatchmaking = "matchmaking"
)

// Suites lists every suite in run order.
var Suites = []string{SuiteHealth, SuiteAuth, SuiteUser, SuiteMatchmaking}

// CheckResult is the outcome of one endpoint check.
type CheckResult struct {
	Suite   string `yaml:"suite"            json:"suite"`
	Name    string `yaml:"name"             json:"name"`
	OK      bool   `yaml:"ok"               json:"ok"`
	Status  int    `yaml:"status,omitempty" json:"status,omitempty"`
	Detail  string `yaml:"detail,omitempty" json:"detail,omitempty"`
	Elapsed string `yaml:"elapsed"          json:"elapsed"`
}

// Result is the outcome of a smoke run. OK holds only when every check
// passed.
type Result struct {
	OK      bool          `yaml:"ok"      json:"ok"`
	Action  string        `yaml:"action"  json:"action"`
	Passed  int           `yaml:"passed"  json:"passed"`
	Failed  int           `yaml:"failed"  json:"failed"`
	Checks  []CheckResult `yaml:"checks"  json:"checks"`
	Elapsed string        `yaml:"elapsed" json:"elapsed"`
}

// Endpoints holds the service base URLs.
type Endpoints struct {
	Auth        string
	User        string
	Matchmaking string
}

// Tester runs smoke suites against the backend.
type Tester struct {
	Endpoints Endpoints
	Prober    *Prober
	Timeout   time.Duration
	Log       *slog.Logger
	// OnCheck is called after every check, for live progress output.
	OnCheck func(CheckResult)

	// Email and Password of the throwaway smoke user. A unique email is
	// generated when empty.
	Email    string
	Password string

	userID string
	token  string
}

// NewTester returns a Tester for the given endpoints.
func NewTester(ep Endpoints, timeout time.Duration) *Tester {
	return &Tester{Endpoints: ep, Prober: NewProber(timeout), Timeout: timeout}
}

func (t *Tester) logger() *slog.Logger {
	if t.Log == nil {
		return slog.Default()
	}
	return t.Log
}

// Run executes the named suites in order, or all suites when none are given.
func (t *Tester) Run(ctx context.Context, suites ...string) (Result, error) {
	if len(suites) == 0 {
		suites = Suites
	}
	start := time.Now()
	res := Result{Action: "smoke"}
	add := func(c CheckResult) {
		res.Checks = append(res.Checks, c)
		if c.OK {
			res.Passed++
		} else {
			res.Failed++
		}
		if t.OnCheck != nil {
			t.OnCheck(c)
		}
	}

	for _, s := range suites {
		var fn func(context.Context, func(CheckResult))
		switch s {
		case SuiteHealth:
			fn = t.health
		case SuiteAuth:
			fn = t.auth
		case SuiteUser:
			fn = t.user
		case SuiteMatchmaking:
			fn = t.matchmaking
		default:
			return res, fmt.Errorf("unknown suite %q", s)
		}
		fn(ctx, add)
	}

	res.OK = res.Failed == 0 && len(res.Checks) > 0
	res.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return res, nil
}

func (t *Tester) health(ctx context.Context, add func(CheckResult)) {
	for _, svc := range []struct{ name, url string }{
		{"auth-service", t.Endpoints.Auth},
		{"user-service", t.Endpoints.User},
		{"matchmaking-service", t.Endpoints.Matchmaking},
	} {
		h := t.Prober.Check(ctx, svc.name, svc.url)
		detail := h.Error
		if h.Up {
			detail = "up via " + h.Endpoint
		}
		add(CheckResult{Suite: SuiteHealth, Name: svc.name, OK: h.Up, Status: h.Status, Detail: detail, Elapsed: h.Elapsed})
	}
}

// check times fn and converts its outcome into a CheckResult.
func check(suite, name string, fn func() (int, string, error)) CheckResult {
	start := time.Now()
	status, detail, err := fn()
	c := CheckResult{Suite: suite, Name: name, Status: status, Detail: detail, OK: err == nil}
	if err != nil {
		c.Detail = err.Error()
	}
	c.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return c
}

type authResponse struct {
	UserID       json.RawMessage `json:"userId"`
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken"`
}

func (t *Tester) auth(ctx context.Context, add func(CheckResult)) {
	c := NewClient(t.Endpoints.Auth, t.Timeout)
	email := t.Email
	if email == "" {
		email = fmt.Sprintf("smoke.%s@example.com", uuid.NewString()[:8])
	}
	password := t.Password
	if password == "" {
		password = "DemoPass123!"
	}
	refresh := "demo_refresh_token"

	add(check(SuiteAuth, "register", func() (int, string, error) {
		var out authResponse
		status, err := c.Post(ctx, "/auth/register", map[string]string{
			"username":        "Smoke Test User",
			"email":           email,
			"password":        password,
			"confirmPassword": password,
		}, &out)
		if err != nil {
			return status, "", err
		}
		t.userID, t.token = ID(out.UserID), out.Token
		if out.RefreshToken != "" {
			refresh = out.RefreshToken
		}
		return status, "user " + t.userID, nil
	}))

	add(check(SuiteAuth, "login", func() (int, string, error) {
		var out authResponse
		status, err := c.Post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &out)
		if err == nil && out.Token != "" {
			t.token = out.Token
		}
		return status, "", err
	}))

	add(check(SuiteAuth, "refresh", func() (int, string, error) {
		status, err := c.Post(ctx, "/refresh", map[string]string{"refreshToken": refresh}, nil)
		return status, "", err
	}))
}

func (t *Tester) user(ctx context.Context, add func(CheckResult)) {
	c := NewClient(t.Endpoints.User, t.Timeout).WithToken(t.token)

	add(check(SuiteUser, "list-profiles", func() (int, string, error) {
		var out []map[string]interface{}
		status, err := c.Get(ctx, "/userprofiles?pageSize=5", &out)
		return status, fmt.Sprintf("%d profiles", len(out)), err
	}))

	add(check(SuiteUser, "get-profile", func() (int, string, error) {
		status, err := c.Get(ctx, "/profiles/1", nil)
		return status, "", err
	}))

	add(check(SuiteUser, "search", func() (int, string, error) {
		var out struct {
			TotalCount int               `json:"totalCount"`
			Results    []json.RawMessage `json:"results"`
		}
		status, err := c.Post(ctx, "/search", map[string]int{"minAge": 25, "maxAge": 35, "page": 1, "pageSize": 10}, &out)
		return status, fmt.Sprintf("%d of %d results", len(out.Results), out.TotalCount), err
	}))
}

func (t *Tester) matchmaking(ctx context.Context, add func(CheckResult)) {
	c := NewClient(t.Endpoints.Matchmaking, t.Timeout).WithToken(t.token)
	id := t.userID
	if id == "" {
		id = "123"
	}

	add(check(SuiteMatchmaking, "potential-matches", func() (int, string, error) {
		var out []map[string]interface{}
		status, err := c.Get(ctx, "/matches/"+id+"?count=5", &out)
		return status, fmt.Sprintf("%d matches", len(out)), err
	}))

	add(check(SuiteMatchmaking, "mutual-matches", func() (int, string, error) {
		var out []map[string]interface{}
		status, err := c.Get(ctx, "/mutual-matches/"+id, &out)
		return status, fmt.Sprintf("%d mutual", len(out)), err
	}))

	add(check(SuiteMatchmaking, "swipe", func() (int, string, error) {
		var out struct {
			IsMatch bool   `json:"isMatch"`
			Message string `json:"message"`
		}
		status, err := c.Post(ctx, "/swipe", map[string]interface{}{"userId": id, "targetUserId": 456, "action": "like"}, &out)
		return status, fmt.Sprintf("match=%t", out.IsMatch), err
	}))

	add(check(SuiteMatchmaking, "conversations", func() (int, string, error) {
		var out []map[string]interface{}
		status, err := c.Get(ctx, "/conversations/"+id, &out)
		return status, fmt.Sprintf("%d conversations", len(out)), err
	}))
	t.logger().Debug("matchmaking suite done", "user", id)
}
