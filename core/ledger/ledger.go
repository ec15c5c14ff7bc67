// Package ledger tracks per-station fairness state: airtime credits for the
// round-robin policy and throughput history for the proportional-fair policy.
package ledger

import "time"

type entry struct {
	credits float64 // microseconds of airtime owed
	bytes   float64
	airtime time.Duration
}

// Ledger keeps fairness accounts keyed by association ID. It is owned by the
// coordinator and not safe for concurrent use.
type Ledger struct {
	entries map[uint16]*entry
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[uint16]*entry)}
}

// Ensure opens an account for the station if none exists.
func (l *Ledger) Ensure(aid uint16) {
	if _, ok := l.entries[aid]; !ok {
		l.entries[aid] = &entry{}
	}
}

// Remove closes the station's account.
func (l *Ledger) Remove(aid uint16) {
	delete(l.entries, aid)
}

// Known returns the number of open accounts.
func (l *Ledger) Known() int { return len(l.entries) }

// Credits returns the station's airtime credit balance in microseconds.
func (l *Ledger) Credits(aid uint16) float64 {
	if e, ok := l.entries[aid]; ok {
		return e.credits
	}
	return 0
}

// Credit adds amount microseconds of credit, clamped to max.
func (l *Ledger) Credit(aid uint16, amount, max float64) {
	l.Ensure(aid)
	e := l.entries[aid]
	e.credits += amount
	if e.credits > max {
		e.credits = max
	}
}

// Debit removes amount microseconds of credit. Balances may go negative.
func (l *Ledger) Debit(aid uint16, amount float64) {
	l.Ensure(aid)
	l.entries[aid].credits -= amount
}

// RecordThroughput accumulates served bytes and the airtime spent serving
// them.
func (l *Ledger) RecordThroughput(aid uint16, bytes int, airtime time.Duration) {
	l.Ensure(aid)
	e := l.entries[aid]
	e.bytes += float64(bytes)
	e.airtime += airtime
}

// AvgThroughput returns the station's historical rate in bytes per second, or
// zero when the station has never been served.
func (l *Ledger) AvgThroughput(aid uint16) float64 {
	e, ok := l.entries[aid]
	if !ok || e.airtime <= 0 {
		return 0
	}
	return e.bytes / e.airtime.Seconds()
}

// Served reports whether the station has ever been granted airtime.
func (l *Ledger) Served(aid uint16) bool {
	e, ok := l.entries[aid]
	return ok && e.airtime > 0
}
