// Package policy implements the station-to-resource-unit assignment
// strategies: round-robin with airtime credits, proportional-fair rate
// matching and deadline-aware schedule following.
package policy

import (
	"errors"
	"time"

	"github.com/axwifi/musched/core/ledger"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/ru"
)

var (
	// ErrNoFeasibleAssignment means no candidate could be placed on any
	// resource unit. Callers may fall back to a single-user transmission.
	ErrNoFeasibleAssignment = errors.New("no feasible assignment")
)

// Policy turns a candidate set into station-to-resource-unit bindings.
// Candidates arrive in serve-list order; implementations must never assign
// two stations to the same resource unit.
type Policy interface {
	Name() string
	Assign(cands []model.CandidateEntry, plan ru.Plan, led *ledger.Ledger) (model.Assignment, error)
}

// Served describes one station actually transmitted to, after aggregation
// settled the payload sizes.
type Served struct {
	Station *model.Station
	Ru      model.RuSpec
	Bytes   int
}

// Settler is implemented by policies that update fairness state once the
// transmission duration is known. It returns the serve list in its new
// order.
type Settler interface {
	Settle(txDuration time.Duration, served []Served, order []*model.Station, led *ledger.Ledger) []*model.Station
}
