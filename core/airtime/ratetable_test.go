package airtime

import (
	"errors"
	"testing"
	"time"

	"github.com/axwifi/musched/core/model"
)

func TestEstimateScalesWithSize(t *testing.T) {
	rt := NewRateTable()
	small, err := rt.Estimate(100, model.Ru106, 5)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	large, err := rt.Estimate(200, model.Ru106, 5)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if large <= small {
		t.Fatalf("expected monotonic airtime, got %v then %v", small, large)
	}
	if got, want := large, 2*small; got != want {
		t.Fatalf("expected linear scaling, got %v want %v", got, want)
	}
}

func TestEstimateFasterOnLargerRu(t *testing.T) {
	rt := NewRateTable()
	onSmall, _ := rt.Estimate(1500, model.Ru26, 7)
	onLarge, _ := rt.Estimate(1500, model.Ru996, 7)
	if onLarge >= onSmall {
		t.Fatalf("RU996 should beat RU26: %v vs %v", onLarge, onSmall)
	}
}

func TestEstimateKnownValue(t *testing.T) {
	rt := NewRateTable()
	// 1000 bytes at 10 Mb/s is 800 us.
	d, err := rt.Estimate(1000, model.Ru52, 4)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if d != 800*time.Microsecond {
		t.Fatalf("got %v want 800us", d)
	}
}

func TestEstimateUnknownRate(t *testing.T) {
	rt := NewRateTable()
	if _, err := rt.Estimate(100, model.RuType(33), 0); !errors.Is(err, ErrUnknownRate) {
		t.Fatalf("expected ErrUnknownRate, got %v", err)
	}
	if _, err := rt.Estimate(100, model.Ru26, 12); !errors.Is(err, ErrUnknownRate) {
		t.Fatalf("expected ErrUnknownRate for mcs 12, got %v", err)
	}
}
