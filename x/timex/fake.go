package timex

import (
	"context"
	"sync"
	"time"
)

// Fake is a deterministic Sleeper for tests. Sleep returns immediately,
// advancing a simulated clock and recording every requested duration.
// Hook, when set, runs after each sleep and may cancel the caller's context.
type Fake struct {
	mu      sync.Mutex
	elapsed time.Duration
	sleeps  []time.Duration
	Hook    func(n int, d time.Duration)
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	f.elapsed += d
	f.sleeps = append(f.sleeps, d)
	n := len(f.sleeps)
	hook := f.Hook
	f.mu.Unlock()
	if hook != nil {
		hook(n, d)
	}
	return ctx.Err()
}

// Elapsed returns the total simulated suspension time.
func (f *Fake) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

// Sleeps returns a copy of the recorded durations in call order.
func (f *Fake) Sleeps() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}
