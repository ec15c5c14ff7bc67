package metrics

import (
	"context"

	"github.com/axwifi/musched/core/events"
	coremetrics "github.com/axwifi/musched/core/metrics"
	"github.com/axwifi/musched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and mirrors published
// events into the given sink. It is meant for sinks that are not wired into
// the coordinator directly. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.Event], sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.DropEvent:
					if r, ok := sink.(coremetrics.PacketDropRecorder); ok {
						_ = r.RecordPacketDrop(coremetrics.PacketDropEvent{
							AID:     e.AID,
							Round:   e.Round,
							Reason:  e.Reason.String(),
							Penalty: e.Penalty,
							Time:    e.Time,
						})
					}
				case events.SolverEvent:
					if r, ok := sink.(coremetrics.SolverRunRecorder); ok {
						errStr := ""
						if e.Err != nil {
							errStr = e.Err.Error()
						}
						_ = r.RecordSolverRun(coremetrics.SolverRunEvent{
							Backend: e.Backend,
							Error:   errStr,
							Time:    e.Time,
						})
					}
				case events.OpportunityEvent:
					if r, ok := sink.(coremetrics.OpportunityRecorder); ok {
						_ = r.RecordOpportunity(coremetrics.OpportunityEvent{
							ID:         e.ID,
							Class:      e.Class.String(),
							Format:     e.Format.String(),
							Assigned:   e.Assigned,
							TxDuration: e.Duration,
							Time:       e.Time,
						})
					}
				}
			}
		}
	}()
}
