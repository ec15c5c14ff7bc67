package config

import (
	"fmt"

	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/infra/solver"
)

// ScheduleConfig carries the deadline schedule settings: solve backend,
// round quantum, the station traffic file and the external solver.
type ScheduleConfig struct {
	Backend     string        `json:"backend"`
	QuantumMs   int           `json:"quantum_ms"`
	TrafficFile string        `json:"traffic_file"`
	Solver      solver.Config `json:"solver"`
}

// SetDefaults applies sane defaults.
func (c *ScheduleConfig) SetDefaults() {
	r := c.Round()
	r.SetDefaults()
	c.Backend = r.Backend
	c.QuantumMs = r.QuantumMs
	if c.Backend == roundsched.BackendILP {
		c.Solver.SetDefaults()
	}
}

// Validate checks the schedule settings. The traffic file and, for the ilp
// backend, the solver command are only required when the deadline-aware
// policy is selected.
func (c ScheduleConfig) Validate(policyType string) error {
	r := c.Round()
	if err := r.Validate(); err != nil {
		return err
	}
	if policyType != PolicyDeadlineAware {
		return nil
	}
	if c.TrafficFile == "" {
		return fmt.Errorf("traffic_file is required for the %s policy", PolicyDeadlineAware)
	}
	if c.Backend == roundsched.BackendILP {
		return c.Solver.Validate()
	}
	return nil
}

// Round returns the core schedule configuration.
func (c ScheduleConfig) Round() roundsched.Config {
	return roundsched.Config{Backend: c.Backend, QuantumMs: c.QuantumMs}
}
