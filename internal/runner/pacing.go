package runner

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacing draws the pause between two lookups: a uniform integer in
// [Min, Max] multiplied by Unit.
type Pacing struct {
	Min  int
	Max  int
	Unit time.Duration

	// Rand returns a uniform integer in [0, n). Defaults to rand.IntN.
	Rand func(n int) int
}

// DefaultPacing pauses 40 to 80 seconds between lookups.
var DefaultPacing = Pacing{Min: 40, Max: 80, Unit: time.Second}

// Draw returns the next pause.
func (p Pacing) Draw() time.Duration {
	lo, hi := p.Min, p.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	pick := p.Rand
	if pick == nil {
		pick = rand.IntN
	}
	return time.Duration(lo+pick(hi-lo+1)) * p.Unit
}

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// ClockSleeper sleeps on the wall clock.
var ClockSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})
