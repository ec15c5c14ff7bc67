package roundsched

import "errors"

// ErrSolverIntegration marks failures of an external schedule solver: the
// subprocess could not run, or its result file was missing or malformed.
// Callers degrade to an empty matching for the period.
var ErrSolverIntegration = errors.New("schedule solver integration failure")

// SolveRequest describes one scheduling period for an external solver.
// Arrival and Deadline in Entries are relative to the period start.
type SolveRequest struct {
	Rounds      int
	RuTypeIndex int
	TotalTones  int
	Entries     []Packet
}

// SolvedPair is one packet-to-round decision from an external solver.
// Round is relative to the period start.
type SolvedPair struct {
	Packet int
	Round  int
}

// Solver computes a packet-to-round matching for one period.
type Solver interface {
	Solve(req SolveRequest) ([]SolvedPair, error)
}
