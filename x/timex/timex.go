package timex

import (
	"context"
	"time"
)

// Sleeper is the suspension primitive used by drivers and service loops.
// Sleep returns early with ctx.Err() when ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Real suspends on the runtime timer. On TinyGo this yields to the
// cooperative scheduler so other goroutines run while we wait.
type Real struct{}

func (Real) Sleep(ctx context.Context, d time.Duration) error {
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

var boot = time.Now()

// Uptime returns the monotonic time elapsed since the package was initialised.
func Uptime() time.Duration { return time.Since(boot) }

// Centis converts d to whole centiseconds, wrapping at 32 bits.
func Centis(d time.Duration) uint32 {
	if d < 0 {
		return 0
	}
	return uint32(d / (10 * time.Millisecond))
}
