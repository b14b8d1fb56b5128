package focus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
)

// fakeWM serves a scripted sequence of window lists. After activation the
// active title becomes the activated window's title unless overridden.
type fakeWM struct {
	mu          sync.Mutex
	lists       [][]model.Window
	listErr     error
	listCalls   int
	active      string
	afterActive string
	activateErr error
	activated   []string
	titles      map[string]string
}

func (f *fakeWM) ListWindows(context.Context) ([]model.Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.lists) == 0 {
		return nil, nil
	}
	i := f.listCalls - 1
	if i >= len(f.lists) {
		i = len(f.lists) - 1
	}
	ws := f.lists[i]
	f.titles = map[string]string{}
	for _, w := range ws {
		f.titles[w.ID] = w.Title
	}
	return ws, nil
}

func (f *fakeWM) Activate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activateErr != nil {
		return f.activateErr
	}
	f.activated = append(f.activated, id)
	if f.afterActive != "" {
		f.active = f.afterActive
	} else {
		f.active = f.titles[id]
	}
	return nil
}

func (f *fakeWM) ActiveWindowTitle(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

type sleepRecorder struct {
	calls []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func newAcquirer(wm platform.WindowManager, p safety.Policy, rec *sleepRecorder) *Acquirer {
	return &Acquirer{
		WM:          wm,
		Policy:      p,
		MaxAttempts: 3,
		RetryDelay:  time.Second,
		SettleDelay: 500 * time.Millisecond,
		Sleep:       rec.sleep,
	}
}

func strict() safety.Policy {
	p, _ := safety.NewPolicy("strict", safety.DefaultClassifier(), 0)
	return p
}

func permissive() safety.Policy {
	p, _ := safety.NewPolicy("permissive", safety.DefaultClassifier(), 0)
	return p
}

var (
	vscode  = model.Window{ID: "0x01", Title: "main.py - Visual Studio Code"}
	demoApp = model.Window{ID: "0x02", Title: "DatingApp (Demo)"}
	term    = model.Window{ID: "0x03", Title: "Terminal - bash session"}
)

func TestAcquire_SkipsEditorAndFocusesDemoApp(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{vscode, demoApp}}}
	rec := &sleepRecorder{}
	sess := NewSession()

	res, err := newAcquirer(wm, strict(), rec).Acquire(context.Background(), sess)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Attempt)
	assert.Equal(t, []string{"0x02"}, wm.activated)
	assert.Equal(t, "DatingApp (Demo)", res.ActiveTitle)

	cur, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, demoApp, cur)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, rec.calls)
}

func TestAcquire_OnlyEditorOpenIsNotFound(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{vscode}}}
	rec := &sleepRecorder{}

	res, err := newAcquirer(wm, strict(), rec).Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrTargetNotFound)
	assert.False(t, res.OK)
	assert.Equal(t, 3, wm.listCalls)
	assert.Empty(t, wm.activated)
}

func TestAcquire_ZeroWindowsExactAttemptCount(t *testing.T) {
	wm := &fakeWM{active: "Terminal"}
	rec := &sleepRecorder{}
	a := newAcquirer(wm, strict(), rec)
	a.MaxAttempts = 2

	_, err := a.Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, 2, wm.listCalls)
	assert.Equal(t, []time.Duration{time.Second}, rec.calls, "one retry delay between two attempts")
}

func TestAcquire_TargetAppearsOnRetry(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{vscode}, {vscode}, {vscode, demoApp}}}
	rec := &sleepRecorder{}

	res, err := newAcquirer(wm, strict(), rec).Acquire(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempt)
	assert.Equal(t, 3, wm.listCalls)
}

func TestAcquire_RefusesWhenEditorAlreadyActive(t *testing.T) {
	wm := &fakeWM{active: "app.ts - Visual Studio Code", lists: [][]model.Window{{demoApp}}}
	rec := &sleepRecorder{}

	res, err := newAcquirer(wm, strict(), rec).Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrSafetyBlock)
	assert.False(t, res.OK)
	assert.Zero(t, wm.listCalls)
	assert.Empty(t, wm.activated)
}

func TestAcquire_ForbiddenAfterActivationIsNeverSuccess(t *testing.T) {
	wm := &fakeWM{
		active:      "Terminal",
		lists:       [][]model.Window{{demoApp}},
		afterActive: "main.py - Visual Studio Code",
	}
	sess := NewSession()
	sess.Set(term)

	res, err := newAcquirer(wm, strict(), &sleepRecorder{}).Acquire(context.Background(), sess)
	require.ErrorIs(t, err, ErrSafetyBlock)
	assert.False(t, res.OK)
	_, ok := sess.Current()
	assert.False(t, ok, "discovery invalidates the session and a block must not store a window")
}

func TestAcquire_ActivationError(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{demoApp}}, activateErr: errors.New("wmctrl: exit 1")}

	_, err := newAcquirer(wm, strict(), &sleepRecorder{}).Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrActivationFailed)
}

func TestAcquire_EmptyActiveTitleAfterActivation(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{{ID: "0x09", Title: "DatingApp (Demo)"}}}}
	a := newAcquirer(&blankAfterActivate{fakeWM: wm}, strict(), &sleepRecorder{})

	_, err := a.Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrActivationFailed)
}

type blankAfterActivate struct {
	*fakeWM
	done bool
}

func (b *blankAfterActivate) Activate(ctx context.Context, id string) error {
	b.done = true
	return b.fakeWM.Activate(ctx, id)
}

func (b *blankAfterActivate) ActiveWindowTitle(ctx context.Context) (string, error) {
	if b.done {
		return "", nil
	}
	return b.fakeWM.ActiveWindowTitle(ctx)
}

func TestAcquire_PermissiveFallback(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{vscode, term}}}

	res, err := newAcquirer(wm, permissive(), &sleepRecorder{}).Acquire(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, []string{"0x03"}, wm.activated)
}

func TestAcquire_PermissiveNeverFallsBackToEditor(t *testing.T) {
	wm := &fakeWM{active: "Terminal", lists: [][]model.Window{{vscode}}}

	_, err := newAcquirer(wm, permissive(), &sleepRecorder{}).Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrTargetNotFound)
	assert.Empty(t, wm.activated)
}

func TestAcquire_DiscoveryErrorsAreEmptyLists(t *testing.T) {
	wm := &fakeWM{active: "Terminal", listErr: fmt.Errorf("wmctrl: %w", platform.ErrToolMissing)}

	_, err := newAcquirer(wm, strict(), &sleepRecorder{}).Acquire(context.Background(), nil)
	require.ErrorIs(t, err, ErrTargetNotFound)
	assert.Equal(t, 3, wm.listCalls)
}

func TestAcquire_ContextCancelledDuringRetry(t *testing.T) {
	wm := &fakeWM{active: "Terminal"}
	ctx, cancel := context.WithCancel(context.Background())
	a := newAcquirer(wm, strict(), &sleepRecorder{})
	a.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := a.Acquire(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, wm.listCalls)
}

func TestDiscover_NeverFails(t *testing.T) {
	wm := &fakeWM{listErr: errors.New("boom")}
	assert.Empty(t, Discover(context.Background(), wm, nil))
}

func TestUntil(t *testing.T) {
	n := 0
	err := Until(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		n++
		return n == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	err = Until(context.Background(), 5*time.Millisecond, time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	require.ErrorIs(t, err, ErrTimeout)

	boom := errors.New("boom")
	err = Until(context.Background(), time.Second, time.Millisecond, func(context.Context) (bool, error) {
		return false, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestClassify(t *testing.T) {
	entries := Classify([]model.Window{vscode, demoApp, term}, strict())
	require.Len(t, entries, 3)

	assert.Equal(t, vscode, entries[0].Window)
	assert.Equal(t, safety.VerdictForbidden, entries[0].Verdict)
	assert.Equal(t, "visual studio code", entries[0].Pattern)

	assert.Equal(t, safety.VerdictTarget, entries[1].Verdict)
	assert.Equal(t, safety.VerdictIgnored, entries[2].Verdict)
	assert.Empty(t, entries[2].Pattern)

	assert.Empty(t, Classify(nil, strict()))
}
