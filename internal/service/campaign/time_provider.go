package campaign

import (
	"context"
	"time"
)

// TimeProvider supplies the current time, indirected so tests can pin a
// clock instead of racing the real one (quiet-hours edge cases in
// particular need a fixed "now").
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider is the default TimeProvider, backed by the system clock.
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now() }

// NewRealTimeProvider creates a new RealTimeProvider.
func NewRealTimeProvider() TimeProvider {
	return RealTimeProvider{}
}

// Sleeper waits out the rate-limit gate's single retry backoff. Indirected
// so orchestrator tests never block on a real wall-clock second.
type Sleeper interface {
	// SleepUntilNextSecond blocks until the next whole-second wall-clock
	// boundary after now, or until ctx is done, whichever comes first.
	SleepUntilNextSecond(ctx context.Context, now time.Time)
}

// RealSleeper is the default Sleeper, backed by a real timer.
type RealSleeper struct{}

func (RealSleeper) SleepUntilNextSecond(ctx context.Context, now time.Time) {
	d := now.Truncate(time.Second).Add(time.Second).Sub(now)
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// NewRealSleeper creates a new RealSleeper.
func NewRealSleeper() Sleeper {
	return RealSleeper{}
}
