package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/output"
	"github.com/mj1618/demopilot/internal/safety"
	"github.com/mj1618/demopilot/internal/scenario"
)

func strictPolicy(t *testing.T) safety.Policy {
	t.Helper()
	p, err := safety.NewPolicy(safety.PolicyStrict, safety.DefaultClassifier(), safety.DefaultMinFallbackTitle)
	require.NoError(t, err)
	return p
}

func TestMatchWindow(t *testing.T) {
	windows := []model.Window{
		{ID: "0x1", Title: "DatingApp (Demo) - Visual Studio Code"},
		{ID: "0x2", Title: "Terminal"},
		{ID: "0x3", Title: "DatingApp (Demo)"},
	}
	p := strictPolicy(t)

	w, ok := matchWindow(windows, p, "")
	require.True(t, ok)
	assert.Equal(t, "0x3", w.ID)

	_, ok = matchWindow(windows, p, "terminal")
	assert.False(t, ok, "non-target windows never match")

	_, ok = matchWindow(windows, p, "visual studio")
	assert.False(t, ok, "forbidden windows never match")
}

func TestDescribeCondition(t *testing.T) {
	assert.Equal(t, "target window", describeCondition("", false))
	assert.Equal(t, `target window title="Demo" (gone)`, describeCondition("Demo", true))
}

func TestFilterVerdict(t *testing.T) {
	entries := focus.Classify([]model.Window{
		{ID: "0x1", Title: "main.go - Visual Studio Code"},
		{ID: "0x2", Title: "DatingApp (Demo)"},
	}, strictPolicy(t))

	targets := filterVerdict(entries, safety.VerdictTarget)
	require.Len(t, targets, 1)
	assert.Equal(t, "0x2", targets[0].ID)
	assert.Empty(t, filterVerdict(entries, safety.VerdictIgnored))
}

func TestStepDetail(t *testing.T) {
	tests := []struct {
		res  scenario.StepResult
		want string
	}{
		{scenario.StepResult{Field: "email", Text: "a@b.se"}, "email=a@b.se"},
		{scenario.StepResult{Key: "Tab"}, "Tab"},
		{scenario.StepResult{Window: "DatingApp (Demo)"}, "DatingApp (Demo)"},
		{scenario.StepResult{File: "/tmp/01_x.png"}, "/tmp/01_x.png"},
		{scenario.StepResult{Text: "hello"}, "hello"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stepDetail(tt.res))
	}
}

func TestLoadScenario(t *testing.T) {
	d := scenario.Data{Email: "a@b.se", Password: "pw", FirstName: "A", LastName: "B"}

	name, steps, err := loadScenario("login", d)
	require.NoError(t, err)
	assert.Equal(t, "login", name)
	assert.NotEmpty(t, steps)

	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- focus:\n- key: { combo: Tab }\n"), 0o600))
	name, steps, err = loadScenario(path, d)
	require.NoError(t, err)
	assert.Equal(t, path, name)
	assert.Len(t, steps, 2)

	_, _, err = loadScenario("no-such-scenario", d)
	assert.Error(t, err)

	_, _, err = loadScenario(filepath.Join(t.TempDir(), "missing.yaml"), d)
	assert.Error(t, err)
}

func TestFailInput_MarksSafetyBlocks(t *testing.T) {
	var buf bytes.Buffer
	output.Stdout = &buf
	t.Cleanup(func() { output.Stdout = os.Stdout })

	res := &TypeResult{Action: "type"}
	err := failInput(res, errors.Join(focus.ErrSafetyBlock, errors.New("editor")))
	assert.ErrorIs(t, err, errFailed)
	assert.True(t, res.Blocked)
	assert.False(t, res.OK)

	res = &TypeResult{Action: "type"}
	_ = failInput(res, errors.New("xdotool missing"))
	assert.False(t, res.Blocked)
	assert.Contains(t, buf.String(), "blocked: true")
}

func TestNewRand_Deterministic(t *testing.T) {
	assert.Equal(t, newRand(42).Int63(), newRand(42).Int63())
}
