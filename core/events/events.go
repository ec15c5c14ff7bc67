package events

import (
	"time"

	"github.com/axwifi/musched/core/model"
)

// Event is the union of all bus payloads.
type Event interface{ isEvent() }

// OpportunityEvent is published after every channel access decision.
type OpportunityEvent struct {
	ID       string
	Class    model.TrafficClass
	Format   model.TxFormat
	Assigned int
	Duration time.Duration
	Time     time.Time
}

// DropEvent is published when a deadline-scheduled packet is abandoned.
type DropEvent struct {
	AID     uint16
	Round   int
	Reason  model.DropReason
	Penalty float64
	Time    time.Time
}

// SolverEvent is published after an external solver run.
type SolverEvent struct {
	Backend string
	Err     error
	Time    time.Time
}

// AssociationEvent is published when a station associates or leaves.
type AssociationEvent struct {
	AID        uint16
	Associated bool
	Time       time.Time
}

func (OpportunityEvent) isEvent() {}
func (DropEvent) isEvent()        {}
func (SolverEvent) isEvent()      {}
func (AssociationEvent) isEvent() {}
