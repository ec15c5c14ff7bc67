package coordinator

import (
	"fmt"

	"github.com/axwifi/musched/core/ru"
)

// Config defines the coordinator parameters.
type Config struct {
	// ChannelWidthMHz is the operating channel width: 20, 40, 80 or 160.
	ChannelWidthMHz int `json:"channel_width_mhz"`
	// MaxStations caps how many stations share one transmission.
	MaxStations int `json:"max_stations"`
	// UseCentral26 also allocates the channel's central 26-tone units.
	UseCentral26 bool `json:"use_central_26"`
	// EnableUplink interleaves uplink solicitations with downlink data.
	EnableUplink bool `json:"enable_uplink"`
	// EnableBsrp polls buffer status before granting uplink data units.
	EnableBsrp bool `json:"enable_bsrp"`
	// ForcedDownlink suppresses the single-user fallback signal: without a
	// multi-user assignment the opportunity is released unused.
	ForcedDownlink bool `json:"forced_downlink"`
	// UlPsduBytes sizes uplink grants for stations whose queue size is
	// unknown.
	UlPsduBytes int `json:"ul_psdu_bytes"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.ChannelWidthMHz == 0 {
		c.ChannelWidthMHz = 20
	}
	if c.MaxStations == 0 {
		c.MaxStations = 4
	}
	if c.UlPsduBytes == 0 {
		c.UlPsduBytes = 2048
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := ru.ChannelTones(c.ChannelWidthMHz); err != nil {
		return err
	}
	if c.MaxStations < 1 {
		return fmt.Errorf("max_stations must be >= 1, got %d", c.MaxStations)
	}
	if c.UlPsduBytes < 0 {
		return fmt.Errorf("ul_psdu_bytes must be >= 0, got %d", c.UlPsduBytes)
	}
	return nil
}
