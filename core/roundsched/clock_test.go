package roundsched

import (
	"context"
	"testing"
	"time"
)

func TestNewClockRejectsNonPositiveQuantum(t *testing.T) {
	for _, q := range []time.Duration{0, -time.Millisecond} {
		if _, err := NewClock(q); err == nil {
			t.Fatalf("NewClock(%v): expected error", q)
		}
	}
}

func TestClockAdvances(t *testing.T) {
	c, err := NewClock(time.Millisecond)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	if c.Current() != 0 {
		t.Fatalf("fresh clock at round %d, want 0", c.Current())
	}
	if got := c.Advance(); got != 1 {
		t.Fatalf("Advance = %d, want 1", got)
	}
	if c.Quantum() != time.Millisecond {
		t.Fatalf("Quantum = %v, want 1ms", c.Quantum())
	}
}

func TestClockRunTicksUntilCancelled(t *testing.T) {
	c, err := NewClock(time.Millisecond)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	rounds := make(chan int, 1)
	go c.Run(ctx, func(round int) {
		select {
		case rounds <- round:
		default:
		}
	})
	select {
	case r := <-rounds:
		if r < 1 {
			t.Fatalf("first observed round %d, want >= 1", r)
		}
	case <-time.After(time.Second):
		t.Fatal("clock never ticked")
	}
	cancel()
}
