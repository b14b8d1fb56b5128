package seeder

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/demopilot/internal/services"
)

func TestDefaultUsers(t *testing.T) {
	f := DefaultUsers()
	require.Len(t, f.Users, 5)
	assert.Equal(t, "Demo123!", f.Password)
	assert.Equal(t, "erik_astrom", f.Users[0].Username)
	assert.Equal(t, "Göteborg", f.Users[1].Location)
	assert.Equal(t, []string{"Historia", "ishockey", "modellflygplan"}, f.Users[4].Interests)
}

func TestParseUsers_SchemaViolations(t *testing.T) {
	cases := map[string]string{
		"no users":      `password: "Demo123!"`,
		"underage":      "users:\n  - {full_name: A B, username: ab, email: a@b.se, age: 16}",
		"bad email":     "users:\n  - {full_name: A B, username: ab, email: nope, age: 30}",
		"bad username":  "users:\n  - {full_name: A B, username: \"Anna L\", email: a@b.se, age: 30}",
		"unknown field": "users:\n  - {full_name: A B, username: ab, email: a@b.se, age: 30, shoe: 42}",
		"short pass":    "password: abc\nusers:\n  - {full_name: A B, username: ab, email: a@b.se, age: 30}",
		"duplicate":     "users:\n  - {full_name: A B, username: ab, email: a@b.se, age: 30}\n  - {full_name: C D, username: ab, email: c@d.se, age: 31}",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseUsers([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestParseUsers_JSONAndDefaultPassword(t *testing.T) {
	f, err := ParseUsers([]byte(`{"users": [{"full_name": "Elin Nyberg", "username": "elin", "email": "elin@demo.com", "age": 27}]}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPassword, f.Password)
	assert.Equal(t, "Elin Nyberg", f.Users[0].FullName)
}

type backend struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string][]map[string]interface{}
	fail     map[string]int
}

func (b *backend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		path := r.URL.Path
		b.requests = append(b.requests, r.Method+" "+path)

		var body map[string]interface{}
		if r.Header.Get("Content-Type") == "application/json" {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		if b.bodies == nil {
			b.bodies = map[string][]map[string]interface{}{}
		}
		b.bodies[path] = append(b.bodies[path], body)

		if code, ok := b.fail[path]; ok {
			w.WriteHeader(code)
			return
		}
		switch {
		case strings.HasSuffix(path, "/health"):
			w.Write([]byte(`{"status":"Healthy"}`))
		case path == "/auth/api/auth/register":
			json.NewEncoder(w).Encode(map[string]string{"token": "tok-" + body["username"].(string)})
		case path == "/user/api/userprofiles":
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-"))
			w.WriteHeader(http.StatusCreated)
		case path == "/user/api/userprofiles/search":
			var results []map[string]interface{}
			for i, u := range DefaultUsers().Users {
				results = append(results, map[string]interface{}{"id": 100 + i, "name": u.FullName})
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"results": results})
		case path == "/match/api/matchmaking/matches":
			w.WriteHeader(http.StatusCreated)
		case path == "/match/api/matchmaking/find-matches":
			w.Write([]byte(`[{"userId": 101}, {"userId": 102}]`))
		case path == "/idp/realms/master/protocol/openid-connect/token":
			assert.Equal(t, "password", r.FormValue("grant_type"))
			w.Write([]byte(`{"access_token": "admin-token"}`))
		case path == "/idp/admin/realms/datingapp/users":
			assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
			if body["username"] == "anna_lindberg" {
				w.WriteHeader(http.StatusConflict)
				return
			}
			w.WriteHeader(http.StatusCreated)
		default:
			http.NotFound(w, r)
		}
	})
}

func newSeeder(url string) *Seeder {
	return &Seeder{
		Endpoints: services.Endpoints{Auth: url + "/auth/api", User: url + "/user/api", Matchmaking: url + "/match/api"},
		Timeout:   time.Second,
		Rand:      rand.New(rand.NewSource(1)),
		Now:       func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestSeeder_Run(t *testing.T) {
	b := &backend{}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	s := newSeeder(srv.URL)
	s.Prober = services.NewProber(time.Second)
	s.IdP = &IdP{BaseURL: srv.URL + "/idp", Realm: "datingapp", AdminRealm: "master", ClientID: "admin-cli", AdminUser: "admin", AdminPassword: "admin"}

	sum, err := s.Run(context.Background(), DefaultUsers())
	require.NoError(t, err)
	assert.True(t, sum.OK, sum.Failures)
	assert.Equal(t, 5, sum.Provisioned, "409 counts as already provisioned")
	assert.Equal(t, 5, sum.Registered)
	assert.Equal(t, 5, sum.Profiles)
	assert.Equal(t, MaxDemoMatches, sum.Matches)
	assert.Equal(t, 2, sum.Suggestions)

	matches := b.bodies["/match/api/matchmaking/matches"]
	require.Len(t, matches, 3)
	assert.Equal(t, "100", matches[0]["user1Id"])
	assert.Equal(t, "101", matches[0]["user2Id"])
	assert.Equal(t, "103", matches[2]["user2Id"])

	profile := b.bodies["/user/api/userprofiles"][0]
	assert.Equal(t, "Erik Astrom", profile["name"])
	assert.Equal(t, "Sweden", profile["country"])
	assert.True(t, strings.HasPrefix(profile["dateOfBirth"].(string), "1998-"))
}

func TestSeeder_PartialFailuresAreCollected(t *testing.T) {
	b := &backend{fail: map[string]int{"/user/api/userprofiles": http.StatusBadRequest}}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	sum, err := newSeeder(srv.URL).Run(context.Background(), DefaultUsers())
	require.NoError(t, err)
	assert.False(t, sum.OK)
	assert.Equal(t, 5, sum.Registered)
	assert.Zero(t, sum.Profiles)
	assert.Len(t, sum.Failures, 5)
}

func TestSeeder_UnhealthyBackendAborts(t *testing.T) {
	b := &backend{fail: map[string]int{"/auth/api/health": 503, "/auth/api": 503}}
	srv := httptest.NewServer(b.handler(t))
	defer srv.Close()

	s := newSeeder(srv.URL)
	s.Prober = services.NewProber(time.Second)
	_, err := s.Run(context.Background(), DefaultUsers())
	require.ErrorIs(t, err, ErrServicesDown)
	for _, r := range b.requests {
		assert.NotContains(t, r, "register")
	}
}

func TestSeeder_DeterministicPayloads(t *testing.T) {
	u := DefaultUsers().Users[0]
	a := newSeeder("http://x").profilePayload(u)
	b := newSeeder("http://x").profilePayload(u)
	assert.Equal(t, a, b)
}
