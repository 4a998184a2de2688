package engine

import (
	"sync"
	"time"
)

// leakyBucket schedules iteration start times at a target rate: callers
// ask "when should the next iteration fire" instead of managing a token
// count directly, so a rate change (ramp step) never produces a
// compensating burst. Trimmed to the one thing the phase scheduler below
// needs (next/setRate) -- no burst-capacity knob, no cumulative stats.
type leakyBucket struct {
	mu          sync.Mutex
	rate        float64
	lastDrip    time.Time
	accumulated float64
}

func newLeakyBucket(rate float64) *leakyBucket {
	return &leakyBucket{rate: clampRate(rate), lastDrip: time.Now()}
}

func clampRate(rate float64) float64 {
	if rate <= 0 {
		return 0
	}
	return rate
}

// next returns the time the next iteration should start. A zero rate
// means "no arrivals": it returns the zero Time, which callers treat as
// "never".
func (b *leakyBucket) next() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rate == 0 {
		return time.Time{}
	}

	now := time.Now()
	elapsed := now.Sub(b.lastDrip).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	b.accumulated += elapsed * b.rate
	if b.accumulated > 1.0 {
		b.accumulated = 1.0
	}

	if b.accumulated >= 1.0 {
		b.accumulated -= 1.0
		b.lastDrip = now
		return now
	}

	deficit := 1.0 - b.accumulated
	wait := time.Duration(deficit / b.rate * float64(time.Second))
	next := now.Add(wait)
	b.accumulated = 0
	b.lastDrip = next
	return next
}

// setRate updates the target rate. Accumulated iterations are dropped
// rather than carried over, so a ramp step never bursts to catch up.
func (b *leakyBucket) setRate(rate float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rate = clampRate(rate)
	b.accumulated = 0
	b.lastDrip = time.Now()
}
