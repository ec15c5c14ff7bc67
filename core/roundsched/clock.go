package roundsched

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Clock counts scheduling rounds. Rounds only ever advance; schedule pointers
// are keyed to the round number, never to wall time.
type Clock struct {
	round   atomic.Int64
	quantum time.Duration
}

// NewClock creates a clock with the given round length. The quantum must be
// positive so Run can tick on it.
func NewClock(quantum time.Duration) (*Clock, error) {
	if quantum <= 0 {
		return nil, fmt.Errorf("round quantum must be positive, got %v", quantum)
	}
	return &Clock{quantum: quantum}, nil
}

// Current returns the current round number.
func (c *Clock) Current() int { return int(c.round.Load()) }

// Advance moves to the next round and returns it.
func (c *Clock) Advance() int { return int(c.round.Add(1)) }

// Quantum returns the round length.
func (c *Clock) Quantum() time.Duration { return c.quantum }

// Run advances the clock every quantum until the context is cancelled,
// invoking onAdvance (if non-nil) with each new round number.
func (c *Clock) Run(ctx context.Context, onAdvance func(round int)) {
	ticker := time.NewTicker(c.quantum)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r := c.Advance()
			if onAdvance != nil {
				onAdvance(r)
			}
		}
	}
}
