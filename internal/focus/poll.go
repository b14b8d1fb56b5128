package focus

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ErrTimeout is returned by Until when the deadline passes.
var ErrTimeout = errors.New("timed out")

// Until evaluates cond every interval until it returns true, returns an
// error, or timeout elapses.
func Until(ctx context.Context, timeout, interval time.Duration, cond func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		if err := Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
