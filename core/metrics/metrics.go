package metrics

import "time"

// AssignmentResult represents one station-to-resource-unit grant inside a
// transmission, to be recorded for observability.
type AssignmentResult struct {
	OpportunityID string
	AID           uint16
	Class         string
	Policy        string
	RuTones       int
	RuIndex       int
	Central       bool
	MCS           int
	Frames        int
	Bytes         int
	TxDuration    time.Duration
	Time          time.Time
}

// MetricsSink records assignment results for observability purposes.
type MetricsSink interface {
	RecordAssignments(results []AssignmentResult) error
}

// OpportunityEvent captures data about one channel access decision.
type OpportunityEvent struct {
	ID         string
	Class      string
	Format     string
	Candidates int
	Assigned   int
	TxDuration time.Duration
	Time       time.Time
}

// OpportunityRecorder is implemented by sinks able to record channel access
// decisions.
type OpportunityRecorder interface {
	RecordOpportunity(ev OpportunityEvent) error
}

// PacketDropEvent captures an abandoned deadline-scheduled packet.
type PacketDropEvent struct {
	AID     uint16
	Round   int
	Reason  string
	Penalty float64
	Time    time.Time
}

// PacketDropRecorder records packet drops.
type PacketDropRecorder interface {
	RecordPacketDrop(ev PacketDropEvent) error
}

// SolverRunEvent captures the outcome of a schedule solver invocation.
type SolverRunEvent struct {
	Backend  string
	Rounds   int
	Packets  int
	Matched  int
	Duration time.Duration
	Error    string
	Time     time.Time
}

// SolverRunRecorder records solver runs.
type SolverRunRecorder interface {
	RecordSolverRun(ev SolverRunEvent) error
}

// StationCountRecorder records the number of associated stations.
type StationCountRecorder interface {
	RecordStationCount(n int) error
}

// BufferStatusEvent is a reported uplink queue size for a station.
type BufferStatusEvent struct {
	AID    uint16
	Status int
	Time   time.Time
}

// BufferStatusRecorder records uplink buffer status reports.
type BufferStatusRecorder interface {
	RecordBufferStatus(ev BufferStatusEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignments([]AssignmentResult) error { return nil }

func (NopSink) RecordOpportunity(OpportunityEvent) error   { return nil }
func (NopSink) RecordPacketDrop(PacketDropEvent) error     { return nil }
func (NopSink) RecordSolverRun(SolverRunEvent) error       { return nil }
func (NopSink) RecordStationCount(int) error               { return nil }
func (NopSink) RecordBufferStatus(BufferStatusEvent) error { return nil }
