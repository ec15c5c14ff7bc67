package policy

import (
	"fmt"
	"sort"
	"time"

	"github.com/axwifi/musched/core/ledger"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/ru"
)

// RoundRobinConfig tunes the credit-based round-robin policy.
type RoundRobinConfig struct {
	// MaxCredits caps a station's airtime credit balance.
	MaxCredits time.Duration `json:"max_credits"`
}

// SetDefaults fills unset fields with sane values.
func (c *RoundRobinConfig) SetDefaults() {
	if c.MaxCredits == 0 {
		c.MaxCredits = time.Second
	}
}

// Validate checks the configuration.
func (c *RoundRobinConfig) Validate() error {
	if c.MaxCredits < 0 {
		return fmt.Errorf("max_credits must be >= 0, got %v", c.MaxCredits)
	}
	return nil
}

// RoundRobin assigns resource units in serve-list order and keeps the list
// sorted by airtime credits: stations that transmitted recently sink, starved
// stations rise.
type RoundRobin struct {
	cfg RoundRobinConfig
}

// NewRoundRobin creates the policy.
func NewRoundRobin(cfg RoundRobinConfig) (*RoundRobin, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RoundRobin{cfg: cfg}, nil
}

// Name implements Policy.
func (p *RoundRobin) Name() string { return "round-robin" }

// Assign implements Policy. Candidates fill the equal-size units first, then
// the central 26-tone units.
func (p *RoundRobin) Assign(cands []model.CandidateEntry, plan ru.Plan, _ *ledger.Ledger) (model.Assignment, error) {
	if len(cands) == 0 {
		return model.Assignment{}, ErrNoFeasibleAssignment
	}
	specs := plan.Specs()
	specs = append(specs, plan.CentralSpecs()...)
	n := len(cands)
	if n > len(specs) {
		n = len(specs)
	}
	asg := model.Assignment{Entries: make([]model.AssignmentEntry, 0, n)}
	for i := 0; i < n; i++ {
		c := cands[i]
		asg.Entries = append(asg.Entries, model.AssignmentEntry{
			Station: c.Station,
			Ru:      specs[i],
			MCS:     c.Station.MCS,
			TID:     c.TID,
			Head:    c.Frame,
		})
	}
	return asg, nil
}

// Settle implements Settler. The transmission's airtime is distributed as
// credit across every station in the serve list, served stations are debited
// in proportion to the spectral share they occupied, and the list is
// stable-sorted by decreasing credits.
func (p *RoundRobin) Settle(txDuration time.Duration, served []Served, order []*model.Station, led *ledger.Ledger) []*model.Station {
	if len(order) == 0 {
		return order
	}
	txUs := float64(txDuration) / float64(time.Microsecond)
	maxUs := float64(p.cfg.MaxCredits) / float64(time.Microsecond)

	perSta := txUs / float64(len(order))
	for _, sta := range order {
		led.Credit(sta.AID, perSta, maxUs)
	}

	totalMHz := 0.0
	for _, s := range served {
		totalMHz += s.Ru.Type.BandwidthMHz()
	}
	if totalMHz > 0 {
		perMHz := txUs / totalMHz
		for _, s := range served {
			led.Debit(s.Station.AID, perMHz*s.Ru.Type.BandwidthMHz())
		}
	}

	sorted := append([]*model.Station(nil), order...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return led.Credits(sorted[i].AID) > led.Credits(sorted[j].AID)
	})
	return sorted
}
