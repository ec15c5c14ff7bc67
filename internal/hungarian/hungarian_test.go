package hungarian

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolveSquare(t *testing.T) {
	c := mat.NewDense(3, 3, []float64{
		4, 1, 3,
		2, 0, 5,
		3, 2, 2,
	})
	assign, total := Solve(c)
	want := []int{1, 0, 2}
	for i, j := range want {
		if assign[i] != j {
			t.Fatalf("assign = %v, want %v", assign, want)
		}
	}
	if total != 5 {
		t.Fatalf("total = %v, want 5", total)
	}
}

func TestSolveNegativeCosts(t *testing.T) {
	// Maximum-weight matching expressed as negated costs.
	c := mat.NewDense(2, 2, []float64{
		-10, -3,
		-8, -2,
	})
	assign, total := Solve(c)
	if assign[0] != 0 || assign[1] != 1 {
		t.Fatalf("assign = %v, want [0 1]", assign)
	}
	if total != -12 {
		t.Fatalf("total = %v, want -12", total)
	}
}

func TestSolveMoreRowsThanCols(t *testing.T) {
	// Three contenders, one column: exactly one row gets it.
	c := mat.NewDense(3, 1, []float64{-5, -9, -1})
	assign, total := Solve(c)
	matched := 0
	for i, j := range assign {
		if j == 0 {
			matched++
			if i != 1 {
				t.Fatalf("row %d matched, want row 1 (cheapest)", i)
			}
		} else if j != -1 {
			t.Fatalf("row %d assigned to invalid column %d", i, j)
		}
	}
	if matched != 1 {
		t.Fatalf("matched = %d, want 1", matched)
	}
	if total != -9 {
		t.Fatalf("total = %v, want -9", total)
	}
}

func TestSolveMoreColsThanRows(t *testing.T) {
	c := mat.NewDense(2, 4, []float64{
		9, 1, 9, 9,
		9, 9, 9, 2,
	})
	assign, total := Solve(c)
	if assign[0] != 1 || assign[1] != 3 {
		t.Fatalf("assign = %v, want [1 3]", assign)
	}
	if total != 3 {
		t.Fatalf("total = %v, want 3", total)
	}
}

func TestSolveDisjointColumns(t *testing.T) {
	c := mat.NewDense(4, 4, []float64{
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
		1, 1, 1, 1,
	})
	assign, _ := Solve(c)
	seen := map[int]bool{}
	for _, j := range assign {
		if j < 0 || j > 3 {
			t.Fatalf("invalid column %d", j)
		}
		if seen[j] {
			t.Fatalf("column %d assigned twice: %v", j, assign)
		}
		seen[j] = true
	}
}
