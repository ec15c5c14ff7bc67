package roundsched

import "fmt"

// Schedule solver backends.
const (
	BackendMatching = "matching"
	BackendLP       = "lp"
	BackendILP      = "ilp"
)

// Config defines the deadline schedule parameters.
type Config struct {
	// Backend selects how packets are matched to rounds: the built-in
	// maximum-weight matching, the linear relaxation solved with gonum's
	// simplex, or an external integer solver subprocess.
	Backend string `json:"backend" yaml:"backend"`
	// QuantumMs is the real-time length of one scheduling round.
	QuantumMs int `json:"quantum_ms" yaml:"quantum_ms"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMatching
	}
	if c.QuantumMs == 0 {
		c.QuantumMs = 1
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMatching, BackendLP, BackendILP:
	default:
		return fmt.Errorf("unknown schedule backend %q", c.Backend)
	}
	if c.QuantumMs <= 0 {
		return fmt.Errorf("quantum_ms must be positive, got %d", c.QuantumMs)
	}
	return nil
}
