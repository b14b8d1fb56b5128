// Package services checks the health and key endpoints of the dating app's
// backend services.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// HealthResult is the outcome of probing one service.
type HealthResult struct {
	Name     string `yaml:"name"               json:"name"`
	URL      string `yaml:"url"                json:"url"`
	Up       bool   `yaml:"up"                 json:"up"`
	Status   int    `yaml:"status,omitempty"   json:"status,omitempty"`
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Error    string `yaml:"error,omitempty"    json:"error,omitempty"`
	Elapsed  string `yaml:"elapsed"            json:"elapsed"`
}

// Prober issues health GETs through a colly collector.
type Prober struct {
	Timeout   time.Duration
	UserAgent string
}

// NewProber returns a Prober with the given per-request timeout.
func NewProber(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{Timeout: timeout, UserAgent: "demopilot-smoke/1.0"}
}

// Check probes <base>/health. When that does not answer 200 it falls back to
// <base> itself, where any status below 500 counts as up.
func (p *Prober) Check(ctx context.Context, name, baseURL string) HealthResult {
	start := time.Now()
	base := strings.TrimRight(baseURL, "/")
	res := HealthResult{Name: name, URL: base}

	status, err := p.get(ctx, base+"/health")
	if err == nil && status == 200 {
		res.Up, res.Status, res.Endpoint = true, status, "/health"
		res.Elapsed = time.Since(start).Round(time.Millisecond).String()
		return res
	}

	status, err = p.get(ctx, base)
	res.Status = status
	res.Endpoint = "/"
	switch {
	case err != nil:
		res.Error = err.Error()
	case status >= 500:
		res.Error = fmt.Sprintf("HTTP %d", status)
	default:
		res.Up = true
	}
	res.Elapsed = time.Since(start).Round(time.Millisecond).String()
	return res
}

// get returns the status code of a GET. A non-nil error means no HTTP
// answer was received.
func (p *Prober) get(ctx context.Context, url string) (int, error) {
	c := colly.NewCollector(
		colly.UserAgent(p.UserAgent),
		colly.ParseHTTPErrorResponse(),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(p.Timeout)

	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			status = r.StatusCode
			return
		}
		reqErr = err
	})

	if err := c.Visit(url); err != nil && status == 0 {
		return 0, err
	}
	if reqErr != nil && status == 0 {
		return 0, reqErr
	}
	return status, nil
}
