// Package hungarian solves the rectangular assignment problem in O(n^3)
// using the potentials formulation of the Hungarian method.
package hungarian

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solve finds a minimum-cost assignment of rows to columns for the given cost
// matrix. The matrix may be rectangular; it is implicitly padded to square
// with zero-cost phantom entries. The result maps each row to its column, or
// -1 when the row ended up on a phantom column (left unassigned). The second
// return value is the total cost of the real assignments.
func Solve(c *mat.Dense) ([]int, float64) {
	rows, cols := c.Dims()
	n := rows
	if cols > n {
		n = cols
	}
	at := func(i, j int) float64 {
		if i < rows && j < cols {
			return c.At(i, j)
		}
		return 0
	}

	// u, v are row and column potentials; p[j] is the row matched to column
	// j. Index 0 is a sentinel.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)
	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := at(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assign := make([]int, rows)
	for i := range assign {
		assign[i] = -1
	}
	total := 0.0
	for j := 1; j <= n; j++ {
		i := p[j] - 1
		if i >= 0 && i < rows && j-1 < cols {
			assign[i] = j - 1
			total += c.At(i, j-1)
		}
	}
	return assign, total
}
