package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/axwifi/musched/core/events"
	coremetrics "github.com/axwifi/musched/core/metrics"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/internal/eventbus"
)

type captureSink struct {
	drops  chan coremetrics.PacketDropEvent
	solves chan coremetrics.SolverRunEvent
	opps   chan coremetrics.OpportunityEvent
}

func newCaptureSink() *captureSink {
	return &captureSink{
		drops:  make(chan coremetrics.PacketDropEvent, 4),
		solves: make(chan coremetrics.SolverRunEvent, 4),
		opps:   make(chan coremetrics.OpportunityEvent, 4),
	}
}

func (*captureSink) RecordAssignments([]coremetrics.AssignmentResult) error { return nil }

func (s *captureSink) RecordPacketDrop(ev coremetrics.PacketDropEvent) error {
	s.drops <- ev
	return nil
}

func (s *captureSink) RecordSolverRun(ev coremetrics.SolverRunEvent) error {
	s.solves <- ev
	return nil
}

func (s *captureSink) RecordOpportunity(ev coremetrics.OpportunityEvent) error {
	s.opps <- ev
	return nil
}

func TestEventCollectorMirrorsBusIntoSink(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.New[events.Event]()
	defer bus.Close()
	sink := newCaptureSink()
	StartEventCollector(ctx, bus, sink)

	now := time.Now()
	bus.Publish(events.DropEvent{AID: 7, Round: 3, Reason: model.DropDeadlineMissed, Penalty: 1.5, Time: now})
	bus.Publish(events.SolverEvent{Backend: "ilp", Err: errors.New("boom"), Time: now})
	bus.Publish(events.OpportunityEvent{ID: "op1", Class: model.ClassBestEffort, Assigned: 2, Duration: time.Millisecond, Time: now})

	select {
	case ev := <-sink.drops:
		if ev.AID != 7 || ev.Reason != model.DropDeadlineMissed.String() || ev.Penalty != 1.5 {
			t.Fatalf("drop record = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("drop event never reached the sink")
	}
	select {
	case ev := <-sink.solves:
		if ev.Backend != "ilp" || ev.Error != "boom" {
			t.Fatalf("solver record = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("solver event never reached the sink")
	}
	select {
	case ev := <-sink.opps:
		if ev.ID != "op1" || ev.Assigned != 2 {
			t.Fatalf("opportunity record = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("opportunity event never reached the sink")
	}
}

func TestEventCollectorIgnoresPlainSinks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := eventbus.New[events.Event]()
	defer bus.Close()
	StartEventCollector(ctx, bus, coremetrics.NopSink{})

	// A sink without recorder interfaces must not wedge the bridge.
	bus.Publish(events.DropEvent{AID: 1, Time: time.Now()})
	bus.Publish(events.AssociationEvent{AID: 1, Associated: true, Time: time.Now()})
}
