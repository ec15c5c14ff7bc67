package policy

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/axwifi/musched/core/airtime"
	"github.com/axwifi/musched/core/ledger"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/ru"
	"github.com/axwifi/musched/internal/hungarian"
)

// ProportionalFairConfig tunes the proportional-fair policy.
type ProportionalFairConfig struct {
	// BootstrapCost is the cost magnitude given to never-served stations so
	// they win any slot contest against stations with throughput history.
	BootstrapCost float64 `json:"bootstrap_cost"`
}

// SetDefaults fills unset fields with sane values.
func (c *ProportionalFairConfig) SetDefaults() {
	if c.BootstrapCost == 0 {
		c.BootstrapCost = 1e9
	}
}

// Validate checks the configuration.
func (c *ProportionalFairConfig) Validate() error {
	if c.BootstrapCost < 0 {
		return fmt.Errorf("bootstrap_cost must be >= 0, got %v", c.BootstrapCost)
	}
	return nil
}

// ProportionalFair maximizes the sum of achievable rate divided by historical
// throughput over all candidate-to-unit placements. The placement is a
// minimum-cost assignment over the negated ratios.
type ProportionalFair struct {
	cfg ProportionalFairConfig
	est *airtime.RateTable
}

// NewProportionalFair creates the policy.
func NewProportionalFair(cfg ProportionalFairConfig, est *airtime.RateTable) (*ProportionalFair, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if est == nil {
		return nil, fmt.Errorf("proportional fair needs a rate table")
	}
	return &ProportionalFair{cfg: cfg, est: est}, nil
}

// Name implements Policy.
func (p *ProportionalFair) Name() string { return "proportional-fair" }

// Assign implements Policy. Rows are candidates, columns are the plan's
// equal-size resource units. With more candidates than units the surplus rows
// end up unassigned.
func (p *ProportionalFair) Assign(cands []model.CandidateEntry, plan ru.Plan, led *ledger.Ledger) (model.Assignment, error) {
	if len(cands) == 0 {
		return model.Assignment{}, ErrNoFeasibleAssignment
	}
	specs := plan.Specs()
	cost := mat.NewDense(len(cands), len(specs), nil)
	for i, c := range cands {
		rate, err := p.est.Rate(plan.Type, c.Station.MCS)
		if err != nil {
			return model.Assignment{}, fmt.Errorf("station %d: %w", c.Station.AID, err)
		}
		var v float64
		if avg := led.AvgThroughput(c.Station.AID); avg > 0 {
			v = -rate / avg
		} else {
			v = -p.cfg.BootstrapCost
		}
		for j := range specs {
			cost.Set(i, j, v)
		}
	}

	assign, _ := hungarian.Solve(cost)
	asg := model.Assignment{}
	for i, j := range assign {
		if j < 0 {
			continue
		}
		c := cands[i]
		asg.Entries = append(asg.Entries, model.AssignmentEntry{
			Station: c.Station,
			Ru:      specs[j],
			MCS:     c.Station.MCS,
			TID:     c.TID,
			Head:    c.Frame,
		})
	}
	if len(asg.Entries) == 0 {
		return model.Assignment{}, ErrNoFeasibleAssignment
	}
	return asg, nil
}

// Settle implements Settler. Every served station is charged the same
// transmission duration, the one of the longest payload, so slow stations
// dilute their average and yield future slots.
func (p *ProportionalFair) Settle(txDuration time.Duration, served []Served, order []*model.Station, led *ledger.Ledger) []*model.Station {
	for _, s := range served {
		led.RecordThroughput(s.Station.AID, s.Bytes, txDuration)
	}
	return order
}
