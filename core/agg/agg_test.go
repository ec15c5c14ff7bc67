package agg

import (
	"errors"
	"testing"
	"time"

	"github.com/axwifi/musched/core/airtime"
	"github.com/axwifi/musched/core/model"
)

func mustBudgeter(t *testing.T, cfg Config) *Budgeter {
	t.Helper()
	b, err := New(cfg, airtime.NewRateTable())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestBuildEmptyQueue(t *testing.T) {
	b := mustBudgeter(t, Config{})
	if _, err := b.Build(model.Ru106, 5, nil, 0); !errors.Is(err, ErrNothingToSend) {
		t.Fatalf("expected ErrNothingToSend, got %v", err)
	}
}

func TestBuildMergesSameTID(t *testing.T) {
	b := mustBudgeter(t, Config{})
	queue := []model.Frame{
		{Bytes: 1000, TID: 0},
		{Bytes: 1000, TID: 0},
		{Bytes: 1000, TID: 0},
	}
	res, err := b.Build(model.Ru242, 7, queue, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Containers != 1 || len(res.Frames) != 3 || res.TotalBytes != 3000 {
		t.Fatalf("got %+v, want one 3000-byte container", res)
	}
}

func TestBuildSplitsOnTIDChange(t *testing.T) {
	b := mustBudgeter(t, Config{})
	queue := []model.Frame{
		{Bytes: 10, TID: 0},
		{Bytes: 7, TID: 3},
	}
	res, err := b.Build(model.Ru242, 7, queue, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Containers != 2 || len(res.Frames) != 2 {
		t.Fatalf("got %+v, want two containers", res)
	}
	// 10 bytes, 2 bytes of alignment padding, then 7 bytes.
	if res.TotalBytes != 19 {
		t.Fatalf("total = %d, want 19 with padding", res.TotalBytes)
	}
}

func TestBuildContainerCeiling(t *testing.T) {
	b := mustBudgeter(t, Config{MaxAmsduBytes: 256})
	queue := []model.Frame{
		{Bytes: 100, TID: 0},
		{Bytes: 200, TID: 0},
	}
	res, err := b.Build(model.Ru242, 7, queue, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Containers != 2 {
		t.Fatalf("got %d containers, want 2 (ceiling forbids merging)", res.Containers)
	}
}

func TestBuildEnvelopeCeiling(t *testing.T) {
	b := mustBudgeter(t, Config{MaxAmsduBytes: 1000, MaxAmpduBytes: 2500})
	queue := []model.Frame{
		{Bytes: 1000, TID: 0},
		{Bytes: 1000, TID: 3},
		{Bytes: 1000, TID: 0},
	}
	res, err := b.Build(model.Ru242, 7, queue, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.Containers != 2 || res.TotalBytes != 2000 {
		t.Fatalf("got %+v, want 2 containers under the 2500-byte ceiling", res)
	}
}

func TestBuildTimeBudget(t *testing.T) {
	est := airtime.NewRateTable()
	b := mustBudgeter(t, Config{MaxAmsduBytes: 256})
	queue := []model.Frame{
		{Bytes: 100, TID: 0},
		{Bytes: 200, TID: 0},
		{Bytes: 5000, TID: 0},
	}
	// Budget fits the first two frames but not the third.
	budget, err := est.Estimate(300, model.Ru106, 5)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	budget += time.Microsecond
	res, err := b.Build(model.Ru106, 5, queue, budget)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Frames) != 2 || res.TotalBytes != 300 {
		t.Fatalf("got %+v, want the first two frames", res)
	}
	got, err := est.Estimate(res.TotalBytes, model.Ru106, 5)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if got > budget {
		t.Fatalf("emitted airtime %v exceeds budget %v", got, budget)
	}
}

func TestBuildKeepsHeadFrame(t *testing.T) {
	b := mustBudgeter(t, Config{})
	queue := []model.Frame{
		{Bytes: 4000, TID: 0},
		{Bytes: 4000, TID: 0},
	}
	// Budget below even the head frame: the committed head is kept alone.
	res, err := b.Build(model.Ru26, 0, queue, time.Microsecond)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(res.Frames) != 1 || res.TotalBytes != 4000 {
		t.Fatalf("got %+v, want the head frame alone", res)
	}
}
