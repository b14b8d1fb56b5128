package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/services"
)

// MaxDemoMatches caps the mutual matches created between consecutive users.
const MaxDemoMatches = 3

// Summary reports what a seeding run achieved.
type Summary struct {
	OK          bool     `yaml:"ok"                 json:"ok"`
	Action      string   `yaml:"action"             json:"action"`
	Users       int      `yaml:"users"              json:"users"`
	Provisioned int      `yaml:"provisioned"        json:"provisioned"`
	Registered  int      `yaml:"registered"         json:"registered"`
	Profiles    int      `yaml:"profiles"           json:"profiles"`
	Matches     int      `yaml:"matches"            json:"matches"`
	Suggestions int      `yaml:"suggestions"        json:"suggestions"`
	Failures    []string `yaml:"failures,omitempty" json:"failures,omitempty"`
	Elapsed     string   `yaml:"elapsed"            json:"elapsed"`
}

func (s *Summary) fail(format string, args ...interface{}) {
	s.Failures = append(s.Failures, fmt.Sprintf(format, args...))
}

// Seeder drives the provisioning steps.
type Seeder struct {
	Endpoints services.Endpoints
	Timeout   time.Duration
	IdP       *IdP // nil skips identity provider provisioning
	Prober    *services.Prober
	Rand      *rand.Rand
	Delay     time.Duration // pause between write requests
	Sleep     focus.Sleeper
	Now       func() time.Time
	Log       *slog.Logger
}

// ErrServicesDown is returned when a health probe fails before seeding.
var ErrServicesDown = errors.New("backend services are not healthy")

func (s *Seeder) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Seeder) pause(ctx context.Context) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}
	if s.Sleep == nil {
		return focus.Sleep(ctx, s.Delay)
	}
	return s.Sleep(ctx, s.Delay)
}

func (s *Seeder) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Seeder) rng() *rand.Rand {
	if s.Rand == nil {
		s.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s.Rand
}

// Run provisions f.Users. Individual failures are collected in the summary;
// only an unhealthy backend or a cancelled context aborts the run.
func (s *Seeder) Run(ctx context.Context, f UserFile) (sum Summary, err error) {
	start := time.Now()
	sum = Summary{Action: "seed", Users: len(f.Users)}
	defer func() { sum.Elapsed = time.Since(start).Round(time.Millisecond).String() }()
	log := s.logger()

	if s.Prober != nil {
		for _, svc := range []struct{ name, url string }{
			{"auth-service", s.Endpoints.Auth},
			{"user-service", s.Endpoints.User},
			{"matchmaking-service", s.Endpoints.Matchmaking},
		} {
			if h := s.Prober.Check(ctx, svc.name, svc.url); !h.Up {
				sum.fail("%s: %s", svc.name, h.Error)
				return sum, fmt.Errorf("%w: %s", ErrServicesDown, svc.name)
			}
		}
	}

	if s.IdP != nil && s.IdP.BaseURL != "" {
		s.provision(ctx, f, &sum)
	}

	tokens := map[string]string{}
	if err := s.register(ctx, f, tokens, &sum); err != nil {
		return sum, err
	}
	if err := s.profiles(ctx, f, tokens, &sum); err != nil {
		return sum, err
	}
	if err := s.matches(ctx, f, tokens, &sum); err != nil {
		return sum, err
	}

	sum.OK = len(sum.Failures) == 0
	log.Info("seeding finished", "registered", sum.Registered, "profiles", sum.Profiles, "matches", sum.Matches, "failures", len(sum.Failures))
	return sum, nil
}

func (s *Seeder) provision(ctx context.Context, f UserFile, sum *Summary) {
	token, err := s.IdP.Token(ctx)
	if err != nil {
		sum.fail("idp: %v", err)
		return
	}
	for _, u := range f.Users {
		created, err := s.IdP.CreateUser(ctx, token, u, f.Password)
		switch {
		case err != nil:
			sum.fail("idp %s: %v", u.Username, err)
		case created:
			sum.Provisioned++
		default:
			s.logger().Info("identity already exists", "username", u.Username)
			sum.Provisioned++
		}
	}
}

func (s *Seeder) register(ctx context.Context, f UserFile, tokens map[string]string, sum *Summary) error {
	c := services.NewClient(s.Endpoints.Auth, s.Timeout)
	for _, u := range f.Users {
		var out struct {
			Token string `json:"token"`
		}
		_, err := c.Post(ctx, "/auth/register", map[string]string{
			"username":        u.Username,
			"email":           u.Email,
			"password":        f.Password,
			"confirmPassword": f.Password,
			"phoneNumber":     fmt.Sprintf("+46%d", 700000000+s.rng().Intn(100000000)),
		}, &out)
		switch {
		case err != nil:
			sum.fail("register %s: %v", u.Username, err)
		case out.Token == "":
			sum.fail("register %s: no token in response", u.Username)
		default:
			tokens[u.Username] = out.Token
			sum.Registered++
		}
		if err := s.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

var (
	occupations = []string{"Software Engineer", "Photographer", "Chef", "Veterinarian", "Teacher", "Designer", "Entrepreneur", "Journalist", "Architect", "Researcher", "Psychologist", "Electrician"}
	educations  = []string{"University Degree", "Master's Degree", "High School", "PhD", "Trade School", "Bachelor's Degree"}
	smoking     = []string{"Non-smoker", "Occasionally", "Never"}
	drinking    = []string{"Socially", "Occasionally", "Never"}
	genders     = []string{"Male", "Female"}
	preferences = []string{"Male", "Female", "Both"}
)

func (s *Seeder) pick(options []string) string {
	return options[s.rng().Intn(len(options))]
}

// profilePayload builds the create-profile request for u.
func (s *Seeder) profilePayload(u User) map[string]interface{} {
	r := s.rng()
	birth := time.Date(s.now().Year()-u.Age, time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return map[string]interface{}{
		"name":             u.FullName,
		"email":            u.Email,
		"bio":              u.Bio,
		"gender":           s.pick(genders),
		"preferences":      s.pick(preferences),
		"dateOfBirth":      birth.Format(time.RFC3339),
		"city":             u.Location,
		"country":          "Sweden",
		"interests":        interests,
		"languages":        []string{},
		"occupation":       s.pick(occupations),
		"education":        s.pick(educations),
		"height":           160 + r.Intn(36),
		"relationshipType": "Long-term relationship",
		"smokingStatus":    s.pick(smoking),
		"drinkingStatus":   s.pick(drinking),
		"wantsChildren":    r.Intn(2) == 0,
		"hasChildren":      r.Intn(2) == 0,
	}
}

func (s *Seeder) profiles(ctx context.Context, f UserFile, tokens map[string]string, sum *Summary) error {
	base := services.NewClient(s.Endpoints.User, s.Timeout)
	for _, u := range f.Users {
		tok, ok := tokens[u.Username]
		if !ok {
			s.logger().Warn("skipping profile without auth token", "username", u.Username)
			continue
		}
		if _, err := base.WithToken(tok).Post(ctx, "/userprofiles", s.profilePayload(u), nil); err != nil {
			sum.fail("profile %s: %v", u.Username, err)
		} else {
			sum.Profiles++
		}
		if err := s.pause(ctx); err != nil {
			return err
		}
	}
	return nil
}

type profileRef struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// lookupID finds the profile ID of u through the profile search.
func (s *Seeder) lookupID(ctx context.Context, c *services.Client, u User) (string, error) {
	var out struct {
		Results []profileRef `json:"results"`
	}
	if _, err := c.Post(ctx, "/userprofiles/search", map[string]int{"page": 1, "pageSize": 20}, &out); err != nil {
		return "", err
	}
	for _, p := range out.Results {
		if p.Name == u.FullName {
			return services.ID(p.ID), nil
		}
	}
	return "", fmt.Errorf("profile %q not found in search results", u.FullName)
}

type idEntry struct {
	username string
	id       string
}

func (s *Seeder) matches(ctx context.Context, f UserFile, tokens map[string]string, sum *Summary) error {
	users := registered(f.Users, tokens)
	if len(users) < 2 {
		s.logger().Warn("need at least 2 registered users for matches", "registered", len(users))
		return nil
	}

	userClient := services.NewClient(s.Endpoints.User, s.Timeout)
	var ids []idEntry
	for _, u := range users {
		id, err := s.lookupID(ctx, userClient.WithToken(tokens[u.Username]), u)
		if err != nil {
			sum.fail("lookup %s: %v", u.Username, err)
			continue
		}
		ids = append(ids, idEntry{u.Username, id})
	}

	match := services.NewClient(s.Endpoints.Matchmaking, s.Timeout)
	for i := 0; i < len(ids)-1 && i < MaxDemoMatches; i++ {
		a, b := ids[i], ids[i+1]
		_, err := match.WithToken(tokens[a.username]).Post(ctx, "/matchmaking/matches", map[string]interface{}{
			"user1Id":            a.id,
			"user2Id":            b.id,
			"compatibilityScore": 75 + s.rng().Float64()*20,
			"source":             "demo_seeder",
		}, nil)
		if err != nil {
			sum.fail("match %s-%s: %v", a.username, b.username, err)
		} else {
			sum.Matches++
		}
		if err := s.pause(ctx); err != nil {
			return err
		}
	}

	if len(ids) > 0 {
		first := ids[0]
		var suggestions []json.RawMessage
		_, err := match.WithToken(tokens[first.username]).Post(ctx, "/matchmaking/find-matches", map[string]interface{}{
			"userId":   first.id,
			"limit":    5,
			"minScore": 50.0,
		}, &suggestions)
		if err != nil {
			s.logger().Warn("find-matches probe failed", "username", first.username, "error", err)
		} else {
			sum.Suggestions = len(suggestions)
		}
	}
	return nil
}

// registered returns the users that obtained a token, in file order.
func registered(users []User, tokens map[string]string) []User {
	var out []User
	for _, u := range users {
		if _, ok := tokens[u.Username]; ok {
			out = append(out, u)
		}
	}
	return out
}
