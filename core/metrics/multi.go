package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignments forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignments(results []AssignmentResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignments(results); err != nil {
			return err
		}
	}
	return nil
}

// RecordOpportunity forwards channel access decisions.
func (m *MultiSink) RecordOpportunity(ev OpportunityEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(OpportunityRecorder); ok {
			if err := rec.RecordOpportunity(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPacketDrop forwards drop events.
func (m *MultiSink) RecordPacketDrop(ev PacketDropEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PacketDropRecorder); ok {
			if err := rec.RecordPacketDrop(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSolverRun forwards solver outcomes.
func (m *MultiSink) RecordSolverRun(ev SolverRunEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SolverRunRecorder); ok {
			if err := rec.RecordSolverRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordStationCount forwards the associated station count.
func (m *MultiSink) RecordStationCount(n int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StationCountRecorder); ok {
			if err := rec.RecordStationCount(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordBufferStatus forwards buffer status reports.
func (m *MultiSink) RecordBufferStatus(ev BufferStatusEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(BufferStatusRecorder); ok {
			if err := rec.RecordBufferStatus(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
