// Package launcher starts and stops the demo application and waits for its
// window to appear.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/mj1618/demopilot/internal/focus"
	"github.com/mj1618/demopilot/internal/model"
	"github.com/mj1618/demopilot/internal/platform"
	"github.com/mj1618/demopilot/internal/safety"
)

// DefaultStopGrace is how long Stop waits after SIGTERM before SIGKILL.
const DefaultStopGrace = 2 * time.Second

// ErrNotRunning is returned by Stop when nothing was started.
var ErrNotRunning = errors.New("application not running")

// ExecFunc runs a command to completion.
type ExecFunc func(ctx context.Context, name string, args ...string) error

func execCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Launcher manages one instance of the target application.
type Launcher struct {
	Command         []string
	Dir             string
	CleanupPatterns []string
	WindowTimeout   time.Duration
	PollInterval    time.Duration
	StopGrace       time.Duration

	WM     platform.WindowManager
	Policy safety.Policy
	Exec   ExecFunc
	Log    *slog.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	done chan struct{}
}

func (l *Launcher) logger() *slog.Logger {
	if l.Log == nil {
		return slog.Default()
	}
	return l.Log
}

func (l *Launcher) exec(ctx context.Context, name string, args ...string) error {
	if l.Exec == nil {
		return execCommand(ctx, name, args...)
	}
	return l.Exec(ctx, name, args...)
}

// Cleanup kills leftover processes matching CleanupPatterns. pkill exits 1
// when nothing matched, which is not an error.
func (l *Launcher) Cleanup(ctx context.Context) error {
	var errs []error
	for _, p := range l.CleanupPatterns {
		err := l.exec(ctx, "pkill", "-f", p)
		var exitErr *exec.ExitError
		if err == nil || (errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
			continue
		}
		errs = append(errs, fmt.Errorf("pkill %s: %w", p, err))
	}
	if len(errs) > 0 {
		l.logger().Warn("process cleanup incomplete", "error", errors.Join(errs...))
		return errors.Join(errs...)
	}
	l.logger().Debug("cleaned up leftover processes", "patterns", l.CleanupPatterns)
	return nil
}

// Start cleans up, spawns the application and waits until a target window
// is listed. The process keeps running after Start returns.
func (l *Launcher) Start(ctx context.Context) (model.Window, error) {
	if len(l.Command) == 0 {
		return model.Window{}, errors.New("no application command configured")
	}
	_ = l.Cleanup(ctx)

	l.mu.Lock()
	if l.cmd != nil && l.reapLocked() {
		l.logger().Info("previous application instance exited", "pid", l.cmd.Process.Pid)
		l.cmd, l.done = nil, nil
	}
	if l.cmd != nil {
		l.mu.Unlock()
		return model.Window{}, errors.New("application already started")
	}
	cmd := exec.Command(l.Command[0], l.Command[1:]...)
	cmd.Dir = l.Dir
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		l.mu.Unlock()
		return model.Window{}, fmt.Errorf("start %s: %w", l.Command[0], err)
	}
	l.cmd = cmd
	l.done = make(chan struct{})
	done := l.done
	go func() {
		_ = cmd.Wait()
		close(done)
	}()
	l.mu.Unlock()

	l.logger().Info("application starting", "pid", cmd.Process.Pid, "command", l.Command)

	win, err := l.WaitForWindow(ctx)
	if err != nil {
		return model.Window{}, err
	}
	return win, nil
}

// WaitForWindow polls until the policy accepts a listed window.
func (l *Launcher) WaitForWindow(ctx context.Context) (model.Window, error) {
	timeout := l.WindowTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	var found model.Window
	err := focus.Until(ctx, timeout, l.PollInterval, func(ctx context.Context) (bool, error) {
		if l.exited() {
			return false, errors.New("application exited before its window appeared")
		}
		cands := focus.Candidates(focus.Discover(ctx, l.WM, l.logger()), l.Policy)
		if len(cands) == 0 {
			return false, nil
		}
		found = cands[0]
		return true, nil
	})
	if err != nil {
		return model.Window{}, fmt.Errorf("waiting for application window: %w", err)
	}
	return found, nil
}

func (l *Launcher) exited() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reapLocked()
}

// reapLocked reports whether the started process has exited. l.mu must be
// held.
func (l *Launcher) reapLocked() bool {
	if l.done == nil {
		return false
	}
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

// Running reports whether a started process is still alive.
func (l *Launcher) Running() bool {
	l.mu.Lock()
	started := l.cmd != nil
	l.mu.Unlock()
	return started && !l.exited()
}

// Stop terminates the process group with SIGTERM, escalates to SIGKILL after
// StopGrace, then runs Cleanup.
func (l *Launcher) Stop(ctx context.Context) error {
	l.mu.Lock()
	cmd, done := l.cmd, l.done
	l.cmd, l.done = nil, nil
	l.mu.Unlock()
	if cmd == nil {
		return ErrNotRunning
	}

	grace := l.StopGrace
	if grace <= 0 {
		grace = DefaultStopGrace
	}
	pgid := -cmd.Process.Pid
	_ = syscall.Kill(pgid, syscall.SIGTERM)
	select {
	case <-done:
	case <-time.After(grace):
		l.logger().Warn("application ignored SIGTERM, killing", "pid", cmd.Process.Pid)
		_ = syscall.Kill(pgid, syscall.SIGKILL)
		<-done
	}
	l.logger().Info("application stopped", "pid", cmd.Process.Pid)
	return l.Cleanup(ctx)
}
