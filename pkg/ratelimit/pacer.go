package ratelimit

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Pacer defines the interface for pausing between upstream requests
type Pacer interface {
	// Pause blocks for the pacer's delay or until ctx is done
	Pause(ctx context.Context) error
}

// RandomPacer sleeps for a uniformly random duration in [Min, Max]
type RandomPacer struct {
	min time.Duration
	max time.Duration
	rng *rand.Rand
	mu  sync.Mutex
}

// NewRandomPacer creates a pacer for the given window. An inverted window is
// clamped to min.
func NewRandomPacer(min, max time.Duration) *RandomPacer {
	if max < min {
		max = min
	}
	return &RandomPacer{
		min: min,
		max: max,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Delay draws the next pause duration
func (p *RandomPacer) Delay() time.Duration {
	span := p.max - p.min
	if span <= 0 {
		return p.min
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.min + time.Duration(p.rng.Int63n(int64(span)+1))
}

// Pause sleeps for a random delay
func (p *RandomPacer) Pause(ctx context.Context) error {
	return sleep(ctx, p.Delay())
}

// Window returns the configured bounds
func (p *RandomPacer) Window() (time.Duration, time.Duration) {
	return p.min, p.max
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NopPacer never waits
type NopPacer struct{}

// Pause returns immediately unless ctx is already done
func (NopPacer) Pause(ctx context.Context) error {
	return ctx.Err()
}

// CountingPacer records pause requests without waiting
type CountingPacer struct {
	mu    sync.Mutex
	count int
}

// Pause records the call
func (c *CountingPacer) Pause(ctx context.Context) error {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return ctx.Err()
}

// Count returns the number of recorded pauses
func (c *CountingPacer) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}
