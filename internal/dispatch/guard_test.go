package dispatch

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/logging"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
)

// fakeDesktop is both WindowManager and Inputter. titles is consumed one
// entry per ActiveWindowTitle call; the last entry repeats.
type fakeDesktop struct {
	titles []string
	calls  int
	events []string
}

func (f *fakeDesktop) ListWindows(context.Context) ([]model.Window, error) {
	return []model.Window{{ID: "0x02", Title: "DatingApp (Demo)"}}, nil
}

func (f *fakeDesktop) Activate(context.Context, string) error { return nil }

func (f *fakeDesktop) ActiveWindowTitle(context.Context) (string, error) {
	i := f.calls
	if i >= len(f.titles) {
		i = len(f.titles) - 1
	}
	f.calls++
	return f.titles[i], nil
}

func (f *fakeDesktop) TypeText(_ context.Context, text string, _ time.Duration) error {
	f.events = append(f.events, "type:"+text)
	return nil
}

func (f *fakeDesktop) KeyCombo(_ context.Context, combo string) error {
	f.events = append(f.events, "key:"+combo)
	return nil
}

func (f *fakeDesktop) Click(_ context.Context, x, y int, b platform.MouseButton) error {
	f.events = append(f.events, "click:"+b.String())
	return nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func newGuard(d *fakeDesktop) *Guard {
	p, _ := safety.NewPolicy("strict", safety.DefaultClassifier(), 0)
	return &Guard{Input: d, WM: d, Policy: p, Session: focus.NewSession(), Sleep: noSleep}
}

func TestGuard_TypeTextIntoDemoApp(t *testing.T) {
	d := &fakeDesktop{titles: []string{"DatingApp (Demo)"}}
	g := newGuard(d)
	g.ClearFirst = true

	require.NoError(t, g.TypeText(context.Background(), "first_name", "Erik"))
	assert.Equal(t, []string{"key:ctrl+a", "type:Erik"}, d.events)
}

func TestGuard_RefusesEditor(t *testing.T) {
	d := &fakeDesktop{titles: []string{"main.py - Visual Studio Code"}}
	g := newGuard(d)

	err := g.TypeText(context.Background(), "email", "x@y.z")
	require.ErrorIs(t, err, focus.ErrSafetyBlock)
	assert.Empty(t, d.events)

	require.ErrorIs(t, g.SendKey(context.Background(), "next", "Tab"), focus.ErrSafetyBlock)
	require.ErrorIs(t, g.Click(context.Background(), 1, 2, platform.MouseLeft), focus.ErrSafetyBlock)
	assert.Empty(t, d.events)
}

func TestGuard_UnknownActiveWindowWithholdsInput(t *testing.T) {
	d := &fakeDesktop{titles: []string{""}}
	err := newGuard(d).SendKey(context.Background(), "enter", "Return")
	require.ErrorIs(t, err, ErrUnverified)
	assert.Empty(t, d.events)
}

func TestGuard_FocusStolenMidText(t *testing.T) {
	d := &fakeDesktop{titles: []string{"DatingApp (Demo)", "app.ts - Visual Studio Code"}}
	g := newGuard(d)
	g.ChunkSize = 4

	err := g.TypeText(context.Background(), "bio", "abcdefghijkl")
	require.ErrorIs(t, err, focus.ErrSafetyBlock)
	assert.Equal(t, []string{"type:abcd"}, d.events)
}

func TestGuard_SecretFieldsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	d := &fakeDesktop{titles: []string{"DatingApp (Demo)"}}
	g := newGuard(d)
	g.Log = slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, g.TypeText(context.Background(), "password", "Demo123!"))
	assert.NotContains(t, buf.String(), "Demo123!")
	assert.Contains(t, buf.String(), logging.Redacted)
	assert.Equal(t, []string{"type:Demo123!"}, d.events)
}

func TestGuard_Refocus(t *testing.T) {
	d := &fakeDesktop{titles: []string{"Terminal"}}
	g := newGuard(d)
	_, err := g.Refocus(context.Background())
	require.Error(t, err)

	d2 := &fakeDesktop{titles: []string{"Terminal", "DatingApp (Demo)"}}
	g2 := newGuard(d2)
	g2.Acquirer = &focus.Acquirer{WM: d2, Policy: g2.Policy, MaxAttempts: 1, Sleep: noSleep}
	res, err := g2.Refocus(context.Background())
	require.NoError(t, err)
	assert.True(t, res.OK)
	cur, ok := g2.Session.Current()
	require.True(t, ok)
	assert.Equal(t, "0x02", cur.ID)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk("", 10))
	assert.Equal(t, []string{"short"}, Chunk("short", 10))
	assert.Equal(t, []string{"abc", "def", "g"}, Chunk("abcdefg", 3))
	assert.Equal(t, "Åström", strings.Join(Chunk("Åström", 2), ""))
	assert.Equal(t, []string{"Ås", "tr", "öm"}, Chunk("Åström", 2))
}
