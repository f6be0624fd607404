// internal/pkg/retry/retry.go
package retry

import (
	"context"
	"time"
)

// Policy describes a bounded retry schedule. Attempt N waits
// Delays[N-1] before running; attempts beyond the schedule reuse
// the last delay.
type Policy struct {
	MaxAttempts int
	Delays      []time.Duration
}

// DefaultLookup is the schedule used for role-profile lookups and
// admin list fetches.
var DefaultLookup = Policy{
	MaxAttempts: 3,
	Delays:      []time.Duration{250 * time.Millisecond, 500 * time.Millisecond},
}

// Do runs fn until it succeeds, the attempts are exhausted, or ctx is
// cancelled. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, p.delayFor(i)); err != nil {
				return err
			}
		}

		if err := fn(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return lastErr
}

func (p Policy) delayFor(attempt int) time.Duration {
	if len(p.Delays) == 0 {
		return 0
	}
	idx := attempt - 1
	if idx >= len(p.Delays) {
		idx = len(p.Delays) - 1
	}
	return p.Delays[idx]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
