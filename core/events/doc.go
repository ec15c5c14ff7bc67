// Package events defines the scheduling related events emitted on the event
// bus.
//
// Available event types:
//   - OpportunityEvent: outcome of a won channel access
//   - DropEvent: abandoned deadline-scheduled packet
//   - SolverEvent: external solver invocation result
//   - AssociationEvent: station arrival or departure
package events
