// Package roundsched builds and solves periodic deadline schedules: it
// expands per-station traffic contracts into per-period packet sets and
// matches packets to scheduling rounds.
package roundsched

import (
	"fmt"

	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/ru"
)

// Packet is one expected arrival inside a scheduling period. Arrival and
// Deadline are absolute round numbers.
type Packet struct {
	AID      uint16
	Arrival  int
	Deadline int
	Penalty  float64
}

// Generator expands traffic contracts into packet schedules and solves them.
type Generator struct {
	cfg      Config
	widthMHz int
	traffic  []StationTraffic
	external Solver

	period  int
	packets int
	ruType  model.RuType
	slots   int
}

// NewGenerator validates the traffic declarations and precomputes the period
// geometry: the period is the least common multiple of the station periods,
// and the per-round slot count follows from the resource unit type that fits
// one period's packets.
func NewGenerator(widthMHz int, traffic []StationTraffic, cfg Config, external Solver) (*Generator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(traffic) == 0 {
		return nil, fmt.Errorf("no traffic declarations")
	}
	if cfg.Backend == BackendILP && external == nil {
		return nil, fmt.Errorf("backend %s needs an external solver", BackendILP)
	}
	period := 1
	for _, t := range traffic {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		period = lcm(period, t.PeriodRounds)
	}
	packets := 0
	for _, t := range traffic {
		packets += period / t.PeriodRounds
	}
	plan, err := ru.NewPlan(widthMHz, packets, false)
	if err != nil {
		return nil, err
	}
	slots, err := ru.Slots(widthMHz, plan.Type)
	if err != nil {
		return nil, err
	}
	return &Generator{
		cfg:      cfg,
		widthMHz: widthMHz,
		traffic:  traffic,
		external: external,
		period:   period,
		packets:  packets,
		ruType:   plan.Type,
		slots:    slots,
	}, nil
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// PeriodRounds returns the schedule period length in rounds.
func (g *Generator) PeriodRounds() int { return g.period }

// PacketsPerPeriod returns how many packets arrive during one period.
func (g *Generator) PacketsPerPeriod() int { return g.packets }

// RuType returns the resource unit type used for deadline rounds.
func (g *Generator) RuType() model.RuType { return g.ruType }

// Slots returns how many packets can be served per round.
func (g *Generator) Slots() int { return g.slots }

// Backend reports the configured solve backend.
func (g *Generator) Backend() string { return g.cfg.Backend }

// BuildSchedule expands the traffic contracts into the packet set of the
// period starting at base. Packets are station-major: all packets of the
// first declared station first, each in arrival order.
func (g *Generator) BuildSchedule(base int) []Packet {
	out := make([]Packet, 0, g.packets)
	for _, t := range g.traffic {
		for k := 0; k < g.period/t.PeriodRounds; k++ {
			arrival := base + k*t.PeriodRounds
			out = append(out, Packet{
				AID:      t.AID,
				Arrival:  arrival,
				Deadline: arrival + t.DeadlineRounds,
				Penalty:  t.Penalty,
			})
		}
	}
	return out
}

// StationRange returns the index of the station's first packet in a
// BuildSchedule result and how many packets it has, or ok=false for unknown
// stations.
func (g *Generator) StationRange(aid uint16) (start, count int, ok bool) {
	idx := 0
	for _, t := range g.traffic {
		n := g.period / t.PeriodRounds
		if t.AID == aid {
			return idx, n, true
		}
		idx += n
	}
	return 0, 0, false
}

// eligible reports whether the packet may be served in the absolute round r
// of the period starting at base.
func (g *Generator) eligible(p Packet, r, base int) bool {
	return r >= p.Arrival && r <= p.Deadline && r >= base && r < base+g.period
}

// Solve matches the period's packets to rounds with the configured backend.
// The result maps packet indices to absolute round numbers; unmatched packets
// are absent.
func (g *Generator) Solve(packets []Packet, base int) (map[int]int, error) {
	switch g.cfg.Backend {
	case BackendMatching:
		return g.solveMatching(packets, base), nil
	case BackendLP:
		return g.solveLP(packets, base)
	case BackendILP:
		return g.solveExternal(packets, base)
	}
	return nil, fmt.Errorf("unknown schedule backend %q", g.cfg.Backend)
}

func (g *Generator) solveExternal(packets []Packet, base int) (map[int]int, error) {
	idx, err := ru.TypeIndex(g.widthMHz, g.ruType)
	if err != nil {
		return nil, err
	}
	req := SolveRequest{
		Rounds:      g.period,
		RuTypeIndex: idx,
		TotalTones:  g.slots * g.ruType.Tones(),
		Entries:     make([]Packet, len(packets)),
	}
	for i, p := range packets {
		req.Entries[i] = Packet{
			AID:      p.AID,
			Arrival:  p.Arrival - base,
			Deadline: p.Deadline - base,
			Penalty:  p.Penalty,
		}
	}
	pairs, err := g.external.Solve(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverIntegration, err)
	}
	perRound := make(map[int]int)
	out := make(map[int]int, len(pairs))
	for _, pr := range pairs {
		if pr.Packet < 0 || pr.Packet >= len(packets) || pr.Round < 0 || pr.Round >= g.period {
			return nil, fmt.Errorf("%w: pair (%d,%d) out of range", ErrSolverIntegration, pr.Packet, pr.Round)
		}
		if _, dup := out[pr.Packet]; dup {
			return nil, fmt.Errorf("%w: packet %d matched twice", ErrSolverIntegration, pr.Packet)
		}
		perRound[pr.Round]++
		if perRound[pr.Round] > g.slots {
			return nil, fmt.Errorf("%w: round %d over capacity", ErrSolverIntegration, pr.Round)
		}
		out[pr.Packet] = base + pr.Round
	}
	return out, nil
}
