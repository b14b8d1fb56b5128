package seeder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mj1618/demopilot/internal/services"
)

// IdP provisions users through the Keycloak admin REST API.
type IdP struct {
	BaseURL       string
	Realm         string
	AdminRealm    string
	ClientID      string
	AdminUser     string
	AdminPassword string
	Timeout       time.Duration
}

// Token obtains an admin access token with the password grant.
func (k *IdP) Token(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"password"},
		"client_id":  {k.ClientID},
		"username":   {k.AdminUser},
		"password":   {k.AdminPassword},
	}
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", strings.TrimRight(k.BaseURL, "/"), k.AdminRealm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := (&http.Client{Timeout: k.timeout()}).Do(req)
	if err != nil {
		return "", fmt.Errorf("idp token: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("idp token: HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("idp token: %w", err)
	}
	if out.AccessToken == "" {
		return "", errors.New("idp token: empty access_token")
	}
	return out.AccessToken, nil
}

func (k *IdP) timeout() time.Duration {
	if k.Timeout <= 0 {
		return 10 * time.Second
	}
	return k.Timeout
}

type idpCredential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type idpUser struct {
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Enabled       bool            `json:"enabled"`
	EmailVerified bool            `json:"emailVerified"`
	Credentials   []idpCredential `json:"credentials"`
}

// CreateUser creates u in the realm. It reports false without error when the
// user already exists (HTTP 409).
func (k *IdP) CreateUser(ctx context.Context, token string, u User, password string) (bool, error) {
	first, last, _ := strings.Cut(u.FullName, " ")
	c := services.NewClient(strings.TrimRight(k.BaseURL, "/")+"/admin/realms/"+k.Realm, k.timeout()).WithToken(token)
	_, err := c.Post(ctx, "/users", idpUser{
		Username:      u.Username,
		Email:         u.Email,
		FirstName:     first,
		LastName:      last,
		Enabled:       true,
		EmailVerified: true,
		Credentials:   []idpCredential{{Type: "password", Value: password}},
	}, nil)
	var se *services.StatusError
	if errors.As(err, &se) && se.Status == http.StatusConflict {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("idp create %s: %w", u.Username, err)
	}
	return true, nil
}
