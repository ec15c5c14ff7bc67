// Package agg turns an assignment into time-bounded aggregated frame sets:
// frames of one TID merge into containers up to the container ceiling, and
// containers chain into one envelope bounded by the envelope ceiling and the
// transmission time budget.
package agg

import (
	"errors"
	"fmt"
	"time"

	"github.com/axwifi/musched/core/airtime"
	"github.com/axwifi/musched/core/model"
)

// ErrNothingToSend is returned when the queue snapshot holds no frames.
var ErrNothingToSend = errors.New("nothing to send")

// subframePad aligns every chained container to a 4-byte boundary.
const subframePad = 4

// Config bounds aggregation.
type Config struct {
	// MaxAmsduBytes caps one merged container.
	MaxAmsduBytes int `json:"max_amsdu_bytes"`
	// MaxAmpduBytes caps the whole envelope.
	MaxAmpduBytes int `json:"max_ampdu_bytes"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {
	if c.MaxAmsduBytes == 0 {
		c.MaxAmsduBytes = 3839
	}
	if c.MaxAmpduBytes == 0 {
		c.MaxAmpduBytes = 65535
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxAmsduBytes < 0 || c.MaxAmpduBytes < 0 {
		return fmt.Errorf("aggregation ceilings must be >= 0")
	}
	return nil
}

// Budgeter builds aggregated envelopes under a time budget.
type Budgeter struct {
	cfg Config
	est airtime.Estimator
}

// New creates a Budgeter.
func New(cfg Config, est airtime.Estimator) (*Budgeter, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if est == nil {
		return nil, fmt.Errorf("budgeter needs an estimator")
	}
	return &Budgeter{cfg: cfg, est: est}, nil
}

// Result is one station's aggregated envelope.
type Result struct {
	Frames     []model.Frame
	Containers int
	// TotalBytes includes inter-container padding.
	TotalBytes int
}

func pad(total int) int {
	if total == 0 {
		return 0
	}
	return (subframePad - total%subframePad) % subframePad
}

// containers splits the queue snapshot into merge groups: consecutive frames
// of the same TID merge while the container stays under the ceiling.
func (b *Budgeter) containers(queue []model.Frame) [][]model.Frame {
	var out [][]model.Frame
	var cur []model.Frame
	curBytes := 0
	for _, f := range queue {
		if len(cur) > 0 && (f.TID != cur[0].TID || curBytes+f.Bytes > b.cfg.MaxAmsduBytes) {
			out = append(out, cur)
			cur = nil
			curBytes = 0
		}
		cur = append(cur, f)
		curBytes += f.Bytes
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Build chains containers into an envelope for one resource unit. Containers
// are taken in order and a container only joins while the padded envelope
// stays under both the byte ceiling and the time budget (non-positive budget
// means unlimited). The head-of-line frame is always kept, alone if need be:
// the selector already vetted its airtime against the opportunity.
func (b *Budgeter) Build(ruType model.RuType, mcs int, queue []model.Frame, budget time.Duration) (Result, error) {
	if len(queue) == 0 {
		return Result{}, ErrNothingToSend
	}
	res := Result{}
	for ci, cont := range b.containers(queue) {
		contBytes := 0
		for _, f := range cont {
			contBytes += f.Bytes
		}
		p := pad(res.TotalBytes)
		candidate := res.TotalBytes + p + contBytes
		fits := candidate <= b.cfg.MaxAmpduBytes
		if fits && budget > 0 {
			d, err := b.est.Estimate(candidate, ruType, mcs)
			if err != nil {
				return Result{}, err
			}
			fits = d <= budget
		}
		if !fits {
			if ci == 0 {
				// Keep the committed head frame, nothing else.
				res.Frames = []model.Frame{cont[0]}
				res.Containers = 1
				res.TotalBytes = cont[0].Bytes
			}
			break
		}
		res.Frames = append(res.Frames, cont...)
		res.Containers++
		res.TotalBytes = candidate
	}
	return res, nil
}
