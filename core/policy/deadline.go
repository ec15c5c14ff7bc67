package policy

import (
	"fmt"
	"time"

	"github.com/axwifi/musched/core/ledger"
	"github.com/axwifi/musched/core/logger"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/core/ru"
)

// DeadlineAwareConfig tunes the deadline-aware policy.
type DeadlineAwareConfig struct {
	// DropOnDeadline disables the solved matching: packets are served
	// round-robin as they arrive and simply dropped once their deadline
	// round has elapsed.
	DropOnDeadline bool `json:"drop_on_deadline"`
}

// DropFunc observes abandoned packets.
type DropFunc func(aid uint16, round int, pkt roundsched.Packet, reason model.DropReason)

// SolveFunc observes period schedule solves.
type SolveFunc func(backend string, rounds, packets, matched int, elapsed time.Duration, err error)

// DeadlineAware serves stations according to a per-period packet schedule.
// At every period boundary the schedule is regenerated and re-solved; inside
// a period every station holds a pointer to its next pending packet, only
// ever advanced, and reset at the next boundary.
type DeadlineAware struct {
	cfg   DeadlineAwareConfig
	gen   *roundsched.Generator
	clock *roundsched.Clock
	log   logger.Logger

	onDrop  DropFunc
	onSolve SolveFunc

	havePeriod bool
	base       int
	schedule   []roundsched.Packet
	matching   map[int]int
	pointer    map[uint16]int
	solveErr   error
}

// NewDeadlineAware creates the policy.
func NewDeadlineAware(cfg DeadlineAwareConfig, gen *roundsched.Generator, clock *roundsched.Clock, log logger.Logger) (*DeadlineAware, error) {
	if gen == nil || clock == nil {
		return nil, fmt.Errorf("deadline aware needs a generator and a clock")
	}
	if log == nil {
		return nil, fmt.Errorf("deadline aware needs a logger")
	}
	return &DeadlineAware{cfg: cfg, gen: gen, clock: clock, log: log}, nil
}

// OnDrop registers an observer for abandoned packets.
func (p *DeadlineAware) OnDrop(fn DropFunc) { p.onDrop = fn }

// OnSolve registers an observer for period schedule solves.
func (p *DeadlineAware) OnSolve(fn SolveFunc) { p.onSolve = fn }

// Name implements Policy.
func (p *DeadlineAware) Name() string { return "deadline-aware" }

// LastSolveError returns the solver failure of the current period, if any.
// A failed solve degrades the period to an empty matching: everything is
// dropped as unmatched rather than served out of contract.
func (p *DeadlineAware) LastSolveError() error { return p.solveErr }

func (p *DeadlineAware) drop(aid uint16, round int, pkt roundsched.Packet, reason model.DropReason) {
	p.log.Debugw("packet dropped", map[string]any{
		"aid": aid, "round": round, "reason": reason.String(), "penalty": pkt.Penalty,
	})
	if p.onDrop != nil {
		p.onDrop(aid, round, pkt, reason)
	}
}

// ensurePeriod regenerates schedule, pointers and matching when the round
// has crossed into a new period.
func (p *DeadlineAware) ensurePeriod(cur int) {
	period := p.gen.PeriodRounds()
	if p.havePeriod && cur >= p.base && cur < p.base+period {
		return
	}
	if p.havePeriod {
		p.flushElapsed(cur)
	}
	p.havePeriod = true
	p.base = cur - cur%period
	p.schedule = p.gen.BuildSchedule(p.base)
	p.pointer = make(map[uint16]int, len(p.schedule))
	for _, pkt := range p.schedule {
		if _, ok := p.pointer[pkt.AID]; !ok {
			start, _, _ := p.gen.StationRange(pkt.AID)
			p.pointer[pkt.AID] = start
		}
	}
	p.solveErr = nil
	if p.cfg.DropOnDeadline {
		p.matching = nil
		return
	}
	started := time.Now()
	m, err := p.gen.Solve(p.schedule, p.base)
	elapsed := time.Since(started)
	if err != nil {
		p.log.Errorf("schedule solve failed, period %d degraded: %v", p.base, err)
		p.solveErr = err
		m = map[int]int{}
	}
	p.matching = m
	if p.onSolve != nil {
		p.onSolve(p.gen.Backend(), p.gen.PeriodRounds(), len(p.schedule), len(m), elapsed, err)
	}
}

// flushElapsed drops every packet of the outgoing period that was never
// served. The period is over, so none of them can still make their round.
func (p *DeadlineAware) flushElapsed(cur int) {
	for aid, idx := range p.pointer {
		start, count, ok := p.gen.StationRange(aid)
		if !ok {
			continue
		}
		for ; idx < start+count; idx++ {
			pkt := p.schedule[idx]
			if _, matched := p.matching[idx]; matched || p.cfg.DropOnDeadline {
				p.drop(aid, cur, pkt, model.DropDeadlineMissed)
			} else {
				p.drop(aid, cur, pkt, model.DropUnmatched)
			}
		}
		p.pointer[aid] = idx
	}
}

// Assign implements Policy. Each candidate's pending packets are walked:
// expired or unmatched packets are dropped, a packet matched to the current
// round is served on the next free resource unit, a future packet keeps the
// station buffered for later rounds.
func (p *DeadlineAware) Assign(cands []model.CandidateEntry, plan ru.Plan, _ *ledger.Ledger) (model.Assignment, error) {
	if len(cands) == 0 {
		return model.Assignment{}, ErrNoFeasibleAssignment
	}
	cur := p.clock.Current()
	p.ensurePeriod(cur)

	specs := plan.Specs()
	specs = append(specs, plan.CentralSpecs()...)
	asg := model.Assignment{}
	for _, c := range cands {
		if len(asg.Entries) >= len(specs) {
			break
		}
		start, count, ok := p.gen.StationRange(c.Station.AID)
		if !ok {
			continue
		}
		if p.serveNext(c, cur, start, count) {
			asg.Entries = append(asg.Entries, model.AssignmentEntry{
				Station: c.Station,
				Ru:      specs[len(asg.Entries)],
				MCS:     c.Station.MCS,
				TID:     c.TID,
				Head:    c.Frame,
			})
		}
	}
	return asg, nil
}

// serveNext advances the station's packet pointer past dropped packets and
// reports whether a packet is due in the current round.
func (p *DeadlineAware) serveNext(c model.CandidateEntry, cur, start, count int) bool {
	aid := c.Station.AID
	for {
		idx := p.pointer[aid]
		if idx >= start+count {
			return false
		}
		pkt := p.schedule[idx]

		if p.cfg.DropOnDeadline {
			if pkt.Arrival > cur {
				return false
			}
			if cur > pkt.Deadline {
				p.drop(aid, cur, pkt, model.DropDeadlineMissed)
				p.pointer[aid] = idx + 1
				continue
			}
			p.pointer[aid] = idx + 1
			return true
		}

		r, matched := p.matching[idx]
		switch {
		case !matched:
			if pkt.Arrival > cur {
				return false
			}
			p.drop(aid, cur, pkt, model.DropUnmatched)
			p.pointer[aid] = idx + 1
		case r == cur:
			p.pointer[aid] = idx + 1
			return true
		case r < cur:
			p.drop(aid, cur, pkt, model.DropDeadlineMissed)
			p.pointer[aid] = idx + 1
		default:
			// Matched to a later round; keep buffered.
			return false
		}
	}
}
