package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/axwifi/musched/core/metrics"
)

func TestPromSink_RecordAssignments(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	now := time.Now()
	rec := coremetrics.AssignmentResult{
		OpportunityID: "op1",
		AID:           7,
		Class:         "BE",
		Policy:        "round-robin",
		RuTones:       106,
		MCS:           5,
		Frames:        2,
		Bytes:         1500,
		TxDuration:    400 * time.Microsecond,
		Time:          now,
	}
	if err := sink.RecordAssignments([]coremetrics.AssignmentResult{rec}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if err := sink.RecordOpportunity(coremetrics.OpportunityEvent{
		ID: "op1", Class: "BE", Format: "downlink-data",
		Assigned: 1, TxDuration: 400 * time.Microsecond, Time: now,
	}); err != nil {
		t.Fatalf("opportunity error: %v", err)
	}

	expected := `
# HELP sched_ru_assignments_total Total number of resource unit grants
# TYPE sched_ru_assignments_total counter
sched_ru_assignments_total{aid="7",class="BE",policy="round-robin",ru_tones="106"} 1
`
	if err := testutil.CollectAndCompare(sink.assignments, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}

	expectedBytes := `
# HELP sched_assigned_bytes_total Total payload bytes granted per station
# TYPE sched_assigned_bytes_total counter
sched_assigned_bytes_total{aid="7",class="BE"} 1500
`
	if err := testutil.CollectAndCompare(sink.assignedBytes, strings.NewReader(expectedBytes)); err != nil {
		t.Errorf("unexpected byte metric: %v", err)
	}

	if c := testutil.CollectAndCount(sink.txDuration); c == 0 {
		t.Errorf("tx duration not recorded")
	}
}

func TestPromSink_DropsSolvesAndStations(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink := sinkIf.(*PromSink)

	if err := sink.RecordPacketDrop(coremetrics.PacketDropEvent{AID: 3, Reason: "deadline-missed"}); err != nil {
		t.Fatalf("drop error: %v", err)
	}
	if err := sink.RecordSolverRun(coremetrics.SolverRunEvent{Backend: "matching", Error: ""}); err != nil {
		t.Fatalf("solver error: %v", err)
	}
	if err := sink.RecordStationCount(4); err != nil {
		t.Fatalf("station count error: %v", err)
	}

	expectedDrops := `
# HELP sched_packet_drops_total Total number of abandoned deadline-scheduled packets
# TYPE sched_packet_drops_total counter
sched_packet_drops_total{aid="3",reason="deadline-missed"} 1
`
	if err := testutil.CollectAndCompare(sink.drops, strings.NewReader(expectedDrops)); err != nil {
		t.Errorf("unexpected drop metric: %v", err)
	}

	expectedSolves := `
# HELP sched_solver_runs_total Total number of period schedule solves
# TYPE sched_solver_runs_total counter
sched_solver_runs_total{backend="matching",failed="false"} 1
`
	if err := testutil.CollectAndCompare(sink.solverRuns, strings.NewReader(expectedSolves)); err != nil {
		t.Errorf("unexpected solver metric: %v", err)
	}

	expectedStations := `
# HELP sched_associated_stations Number of associated stations
# TYPE sched_associated_stations gauge
sched_associated_stations 4
`
	if err := testutil.CollectAndCompare(sink.stations, strings.NewReader(expectedStations)); err != nil {
		t.Errorf("unexpected station metric: %v", err)
	}
}

func TestPromSink_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := NewPromSinkWithRegistry(reg); err != nil {
		t.Fatalf("second create should reuse collectors: %v", err)
	}
}
