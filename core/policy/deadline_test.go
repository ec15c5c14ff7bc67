package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/axwifi/musched/core/ledger"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/core/ru"
	"github.com/axwifi/musched/infra/logger"
)

func deadlineTraffic() []roundsched.StationTraffic {
	return []roundsched.StationTraffic{
		{AID: 1, PeriodRounds: 2, DeadlineRounds: 1, Penalty: 5},
		{AID: 2, PeriodRounds: 4, DeadlineRounds: 3, Penalty: 1},
	}
}

func newDeadline(t *testing.T, cfg DeadlineAwareConfig, traffic []roundsched.StationTraffic, backend string, ext roundsched.Solver) (*DeadlineAware, *roundsched.Clock) {
	t.Helper()
	gen, err := roundsched.NewGenerator(20, traffic, roundsched.Config{Backend: backend}, ext)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	clock, err := roundsched.NewClock(time.Millisecond)
	if err != nil {
		t.Fatalf("NewClock: %v", err)
	}
	p, err := NewDeadlineAware(cfg, gen, clock, logger.NopLogger{})
	if err != nil {
		t.Fatalf("NewDeadlineAware: %v", err)
	}
	return p, clock
}

type dropLog struct {
	aids    []uint16
	reasons []model.DropReason
}

func (d *dropLog) fn(aid uint16, round int, pkt roundsched.Packet, reason model.DropReason) {
	d.aids = append(d.aids, aid)
	d.reasons = append(d.reasons, reason)
}

func TestDeadlineAwareServesSchedule(t *testing.T) {
	p, clock := newDeadline(t, DeadlineAwareConfig{}, deadlineTraffic(), roundsched.BackendMatching, nil)
	drops := &dropLog{}
	p.OnDrop(drops.fn)

	plan, _ := ru.NewPlan(20, 2, false)
	led := ledger.New()

	servedPerSta := map[uint16]int{}
	for round := 0; round < 4; round++ {
		asg, err := p.Assign(candidates(t, 1, 2), plan, led)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		for _, e := range asg.Entries {
			servedPerSta[e.Station.AID]++
		}
		clock.Advance()
	}
	// Capacity is ample (2 slots per round, 3 packets over 4 rounds), so
	// everything is served within its window and nothing drops.
	if servedPerSta[1] != 2 || servedPerSta[2] != 1 {
		t.Fatalf("served = %v, want station 1 twice and station 2 once", servedPerSta)
	}
	if len(drops.aids) != 0 {
		t.Fatalf("unexpected drops: %v", drops.aids)
	}
	if p.LastSolveError() != nil {
		t.Fatalf("unexpected solve error: %v", p.LastSolveError())
	}
}

func TestDeadlineAwareBuffersFuturePackets(t *testing.T) {
	// A single station with one packet per 4-round period: at most one of
	// the four rounds serves it, the others yield empty assignments.
	traffic := []roundsched.StationTraffic{
		{AID: 1, PeriodRounds: 4, DeadlineRounds: 3, Penalty: 2},
	}
	p, clock := newDeadline(t, DeadlineAwareConfig{}, traffic, roundsched.BackendMatching, nil)
	plan, _ := ru.NewPlan(20, 1, false)
	led := ledger.New()

	served := 0
	for round := 0; round < 4; round++ {
		asg, err := p.Assign(candidates(t, 1), plan, led)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		served += len(asg.Entries)
		clock.Advance()
	}
	if served != 1 {
		t.Fatalf("served %d times, want exactly 1", served)
	}
}

func TestDeadlineAwarePointerResetsAtPeriodBoundary(t *testing.T) {
	p, clock := newDeadline(t, DeadlineAwareConfig{}, deadlineTraffic(), roundsched.BackendMatching, nil)
	plan, _ := ru.NewPlan(20, 2, false)
	led := ledger.New()

	total := 0
	for round := 0; round < 8; round++ {
		asg, err := p.Assign(candidates(t, 1, 2), plan, led)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		total += len(asg.Entries)
		clock.Advance()
	}
	// Two full periods serve the schedule twice.
	if total != 6 {
		t.Fatalf("served %d packets over two periods, want 6", total)
	}
}

func TestDeadlineAwareDropsStalePacketsAtPeriodBoundary(t *testing.T) {
	// One packet per 4-round period, due immediately. The station never
	// shows up during the first period, so its packet crosses the boundary
	// unserved and must be reported dropped exactly once.
	traffic := []roundsched.StationTraffic{
		{AID: 1, PeriodRounds: 4, DeadlineRounds: 0, Penalty: 2},
	}
	p, clock := newDeadline(t, DeadlineAwareConfig{}, traffic, roundsched.BackendMatching, nil)
	drops := &dropLog{}
	p.OnDrop(drops.fn)
	plan, _ := ru.NewPlan(20, 1, false)
	led := ledger.New()

	for round := 0; round < 4; round++ {
		if _, err := p.Assign(candidates(t, 42), plan, led); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		clock.Advance()
	}
	if len(drops.aids) != 0 {
		t.Fatalf("no drops expected inside the period, got %v", drops.aids)
	}

	asg, err := p.Assign(candidates(t, 1), plan, led)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(drops.aids) != 1 || drops.aids[0] != 1 || drops.reasons[0] != model.DropDeadlineMissed {
		t.Fatalf("expected one deadline-missed drop for station 1, got %v %v", drops.aids, drops.reasons)
	}
	if len(asg.Entries) != 1 {
		t.Fatalf("new period packet must be served, got %+v", asg.Entries)
	}
}

func TestDeadlineAwareSolverFailureDegrades(t *testing.T) {
	ext := &failingSolver{}
	p, _ := newDeadline(t, DeadlineAwareConfig{}, deadlineTraffic(), roundsched.BackendILP, ext)
	drops := &dropLog{}
	p.OnDrop(drops.fn)

	plan, _ := ru.NewPlan(20, 2, false)
	asg, err := p.Assign(candidates(t, 1, 2), plan, ledger.New())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(asg.Entries) != 0 {
		t.Fatalf("degraded period must serve nothing, got %+v", asg.Entries)
	}
	if !errors.Is(p.LastSolveError(), roundsched.ErrSolverIntegration) {
		t.Fatalf("expected ErrSolverIntegration, got %v", p.LastSolveError())
	}
	// Arrived packets drop as unmatched.
	if len(drops.aids) == 0 {
		t.Fatal("expected unmatched drops")
	}
	for _, r := range drops.reasons {
		if r != model.DropUnmatched {
			t.Fatalf("expected unmatched reason, got %v", r)
		}
	}
}

type failingSolver struct{}

func (failingSolver) Solve(roundsched.SolveRequest) ([]roundsched.SolvedPair, error) {
	return nil, errors.New("exec: no such file")
}

func TestDeadlineAwareDropOnDeadline(t *testing.T) {
	traffic := []roundsched.StationTraffic{
		{AID: 1, PeriodRounds: 4, DeadlineRounds: 1, Penalty: 3},
	}
	p, clock := newDeadline(t, DeadlineAwareConfig{DropOnDeadline: true}, traffic, roundsched.BackendMatching, nil)
	drops := &dropLog{}
	p.OnDrop(drops.fn)
	plan, _ := ru.NewPlan(20, 1, false)
	led := ledger.New()

	// The station only becomes a candidate after its deadline elapsed.
	clock.Advance()
	clock.Advance() // round 2, packet deadline was round 1
	asg, err := p.Assign(candidates(t, 1), plan, led)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(asg.Entries) != 0 {
		t.Fatalf("expired packet must not be served, got %+v", asg.Entries)
	}
	if len(drops.aids) != 1 || drops.reasons[0] != model.DropDeadlineMissed {
		t.Fatalf("expected one deadline-missed drop, got %v %v", drops.aids, drops.reasons)
	}
}

func TestDeadlineAwareIgnoresUnscheduledStations(t *testing.T) {
	p, _ := newDeadline(t, DeadlineAwareConfig{}, deadlineTraffic(), roundsched.BackendMatching, nil)
	plan, _ := ru.NewPlan(20, 1, false)
	asg, err := p.Assign(candidates(t, 42), plan, ledger.New())
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if len(asg.Entries) != 0 {
		t.Fatalf("station without a traffic contract must not be served: %+v", asg.Entries)
	}
}
