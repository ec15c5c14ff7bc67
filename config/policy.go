package config

import (
	"fmt"

	"github.com/axwifi/musched/core/policy"
)

// Policy type names.
const (
	PolicyRoundRobin       = "round-robin"
	PolicyProportionalFair = "proportional-fair"
	PolicyDeadlineAware    = "deadline-aware"
)

// PolicyConfig selects the scheduling policy and carries its settings.
type PolicyConfig struct {
	Type             string                        `json:"type"`
	RoundRobin       policy.RoundRobinConfig       `json:"round_robin"`
	ProportionalFair policy.ProportionalFairConfig `json:"proportional_fair"`
	DeadlineAware    policy.DeadlineAwareConfig    `json:"deadline_aware"`
}

// SetDefaults applies sane defaults.
func (c *PolicyConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = PolicyRoundRobin
	}
	c.RoundRobin.SetDefaults()
	c.ProportionalFair.SetDefaults()
}

// Validate checks the policy selection.
func (c PolicyConfig) Validate() error {
	switch c.Type {
	case PolicyRoundRobin, PolicyProportionalFair, PolicyDeadlineAware:
		return nil
	}
	return fmt.Errorf("unknown policy %q", c.Type)
}
