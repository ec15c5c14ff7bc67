package roundsched

import (
	"gonum.org/v1/gonum/mat"

	"github.com/axwifi/musched/internal/hungarian"
)

// solveMatching computes a maximum-weight matching of packets to round slots.
// Weights are the packet penalties, so the matching serves the packets whose
// loss would hurt most. Expressed as a minimum-cost assignment over negated
// penalties, with ineligible pairs at zero cost; rows landing on a zero-cost
// column are unmatched.
func (g *Generator) solveMatching(packets []Packet, base int) map[int]int {
	if len(packets) == 0 {
		return map[int]int{}
	}
	cols := g.period * g.slots
	cost := mat.NewDense(len(packets), cols, nil)
	for i, p := range packets {
		for j := 0; j < cols; j++ {
			r := base + j/g.slots
			if g.eligible(p, r, base) {
				cost.Set(i, j, -p.Penalty)
			}
		}
	}
	assign, _ := hungarian.Solve(cost)
	out := make(map[int]int, len(packets))
	for i, j := range assign {
		if j < 0 || cost.At(i, j) >= 0 {
			continue
		}
		out[i] = base + j/g.slots
	}
	return out
}
