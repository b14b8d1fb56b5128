package pilot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/demopilot/internal/config"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
)

type fakeDesktop struct {
	active string
	typed  []string
}

func (f *fakeDesktop) ListWindows(context.Context) ([]model.Window, error) {
	return []model.Window{
		{ID: "0x1", Title: "index.ts - Visual Studio Code"},
		{ID: "0x2", Title: "DatingApp (Demo)"},
	}, nil
}

func (f *fakeDesktop) Activate(_ context.Context, id string) error {
	if id == "0x2" {
		f.active = "DatingApp (Demo)"
	}
	return nil
}

func (f *fakeDesktop) ActiveWindowTitle(context.Context) (string, error) { return f.active, nil }

func (f *fakeDesktop) TypeText(_ context.Context, text string, _ time.Duration) error {
	f.typed = append(f.typed, text)
	return nil
}

func (f *fakeDesktop) KeyCombo(context.Context, string) error { return nil }

func (f *fakeDesktop) Click(context.Context, int, int, platform.MouseButton) error { return nil }

func newPilot(t *testing.T, d *fakeDesktop) *Pilot {
	t.Helper()
	p, err := New(&platform.Provider{WindowManager: d, Inputter: d}, config.DefaultConfig(), nil)
	require.NoError(t, err)
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestPilot_GuardSharesSession(t *testing.T) {
	d := &fakeDesktop{active: "Terminal"}
	p := newPilot(t, d)

	res, err := p.Guard().Refocus(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)

	w, ok := p.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "0x2", w.ID)

	require.NoError(t, p.Guard().TypeText(context.Background(), "email", "a@b.se"))
	assert.Equal(t, []string{"a@b.se"}, d.typed)
}

func TestPilot_SetConfigKeepsOldPolicyOnError(t *testing.T) {
	p := newPilot(t, &fakeDesktop{})
	bad := config.DefaultConfig()
	bad.Safety.Policy = "yolo"
	require.Error(t, p.SetConfig(bad))
	assert.Equal(t, "strict", p.Policy().Name())

	perm := config.DefaultConfig()
	perm.Safety.Policy = "permissive"
	require.NoError(t, p.SetConfig(perm))
	assert.Equal(t, "permissive", p.Policy().Name())
	assert.Equal(t, "permissive", p.Acquirer().Policy.Name())
}

func TestPilot_ComponentsFollowConfig(t *testing.T) {
	p := newPilot(t, &fakeDesktop{})
	cfg := p.Config()

	a := p.Acquirer()
	assert.Equal(t, cfg.Focus.MaxAttempts, a.MaxAttempts)
	assert.Equal(t, time.Second, a.RetryDelay)

	g := p.Guard()
	assert.Equal(t, 20*time.Millisecond, g.Delay)
	assert.True(t, g.ClearFirst)

	l := p.Launcher()
	assert.Equal(t, cfg.App.Command, l.Command)
	assert.Equal(t, time.Minute, l.WindowTimeout)

	r := p.Runner("/tmp/shots", true)
	assert.Equal(t, 0.5, r.ShotScale)
	assert.True(t, r.StopOnError)

	ep := Endpoints(cfg)
	assert.Equal(t, "http://localhost:8083/api", ep.Matchmaking)
}
