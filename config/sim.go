package config

import (
	"fmt"
	"time"

	"github.com/axwifi/musched/core/model"
)

// SimConfig drives the built-in traffic generator: every round each station
// gets frames enqueued and one access opportunity is granted.
type SimConfig struct {
	// Class is the access class opportunities are granted for.
	Class string `json:"class"`
	// FrameBytes is the payload size of generated frames.
	FrameBytes int `json:"frame_bytes"`
	// FramesPerRound is the number of frames enqueued per station and round.
	FramesPerRound int `json:"frames_per_round"`
	// AvailableTime is the airtime budget of one opportunity.
	AvailableTime time.Duration `json:"available_time"`
	// Rounds stops the service after this many rounds. Zero runs forever.
	Rounds int `json:"rounds"`
}

// SetDefaults applies sane defaults.
func (c *SimConfig) SetDefaults() {
	if c.Class == "" {
		c.Class = model.ClassBestEffort.String()
	}
	if c.FrameBytes == 0 {
		c.FrameBytes = 1500
	}
	if c.FramesPerRound == 0 {
		c.FramesPerRound = 1
	}
	if c.AvailableTime == 0 {
		c.AvailableTime = 2 * time.Millisecond
	}
}

// Validate checks the generator settings.
func (c SimConfig) Validate() error {
	if _, err := model.ParseTrafficClass(c.Class); err != nil {
		return err
	}
	if c.FrameBytes <= 0 {
		return fmt.Errorf("frame_bytes must be positive, got %d", c.FrameBytes)
	}
	if c.FramesPerRound <= 0 {
		return fmt.Errorf("frames_per_round must be positive, got %d", c.FramesPerRound)
	}
	if c.AvailableTime <= 0 {
		return fmt.Errorf("available_time must be positive, got %s", c.AvailableTime)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("rounds must not be negative, got %d", c.Rounds)
	}
	return nil
}
