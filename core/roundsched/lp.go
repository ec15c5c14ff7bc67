package roundsched

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// lpSimplex is swapped in tests to exercise failure handling.
var lpSimplex = lp.Simplex

// solveLP solves the linear relaxation of the packet-to-round program with
// gonum's simplex. Round capacities form a transportation polytope, so the
// basic optimal solution the simplex lands on is integral and no rounding is
// needed.
func (g *Generator) solveLP(packets []Packet, base int) (map[int]int, error) {
	type pair struct{ packet, round int }
	var vars []pair
	for i, p := range packets {
		for r := base; r < base+g.period; r++ {
			if g.eligible(p, r, base) {
				vars = append(vars, pair{packet: i, round: r})
			}
		}
	}
	if len(vars) == 0 {
		return map[int]int{}, nil
	}

	// Standard form: one equality row per packet (assignments plus slack
	// equal one) and one per round (load plus slack equals capacity).
	nRows := len(packets) + g.period
	nCols := len(vars) + nRows
	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)
	for v, pr := range vars {
		c[v] = -packets[pr.packet].Penalty
		a.Set(pr.packet, v, 1)
		a.Set(len(packets)+pr.round-base, v, 1)
	}
	for i := 0; i < len(packets); i++ {
		a.Set(i, len(vars)+i, 1)
		b[i] = 1
	}
	for r := 0; r < g.period; r++ {
		row := len(packets) + r
		a.Set(row, len(vars)+row, 1)
		b[row] = float64(g.slots)
	}

	_, x, err := lpSimplex(c, a, b, 1e-10, nil)
	if err != nil {
		return nil, fmt.Errorf("simplex: %w", err)
	}
	out := make(map[int]int, len(packets))
	for v, pr := range vars {
		if x[v] > 0.5 {
			out[pr.packet] = pr.round
		}
	}
	return out, nil
}
