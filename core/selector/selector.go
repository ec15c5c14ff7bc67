// Package selector walks the per-class serve list and produces the candidate
// set for a transmission opportunity.
package selector

import (
	"fmt"
	"time"

	"github.com/axwifi/musched/core/airtime"
	"github.com/axwifi/musched/core/logger"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/ru"
)

// Config controls candidate selection.
type Config struct {
	// MaxCandidates caps the candidate set independently of the resource
	// unit plan. Zero means no extra cap.
	MaxCandidates int `json:"max_candidates"`
	// CrossClassSharing lets an opportunity won for one class also probe the
	// TIDs of higher-priority classes.
	CrossClassSharing bool `json:"cross_class_sharing"`
}

// SetDefaults fills unset fields with sane values.
func (c *Config) SetDefaults() {}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.MaxCandidates < 0 {
		return fmt.Errorf("max_candidates must be >= 0, got %d", c.MaxCandidates)
	}
	return nil
}

// Selector builds candidate sets from the transmit queues.
type Selector struct {
	cfg    Config
	est    airtime.Estimator
	queues model.QueueView
	log    logger.Logger
}

// New creates a Selector.
func New(cfg Config, est airtime.Estimator, queues model.QueueView, log logger.Logger) (*Selector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if est == nil || queues == nil {
		return nil, fmt.Errorf("selector needs an estimator and a queue view")
	}
	return &Selector{cfg: cfg, est: est, queues: queues, log: log}, nil
}

// eligibleTIDs returns the TIDs a candidate frame may come from, the won
// class first.
func (s *Selector) eligibleTIDs(class model.TrafficClass) []uint8 {
	tids := append([]uint8(nil), class.TIDs()...)
	if s.cfg.CrossClassSharing {
		for _, higher := range class.Higher() {
			tids = append(tids, higher.TIDs()...)
		}
	}
	return tids
}

// Select walks the serve list in order and returns at most one candidate per
// station: a station with an established block-ack agreement, a queued frame
// on an eligible TID, and a head-of-line frame whose estimated airtime on the
// planned resource unit type fits the budget. A non-positive budget means
// unlimited. Stations whose head frame does not fit are skipped, not fatal.
func (s *Selector) Select(class model.TrafficClass, order []*model.Station, plan ru.Plan, budget time.Duration) []model.CandidateEntry {
	limit := plan.Capacity()
	if s.cfg.MaxCandidates > 0 && s.cfg.MaxCandidates < limit {
		limit = s.cfg.MaxCandidates
	}
	tids := s.eligibleTIDs(class)

	var out []model.CandidateEntry
	for _, sta := range order {
		if len(out) >= limit {
			break
		}
		for _, tid := range tids {
			if !sta.HasBlockAck(tid) {
				continue
			}
			frame, ok := s.queues.PeekHeadOfLine(sta.AID, tid)
			if !ok {
				continue
			}
			d, err := s.est.Estimate(frame.Bytes, plan.Type, sta.MCS)
			if err != nil {
				s.log.Debugf("station %d tid %d: %v", sta.AID, tid, err)
				continue
			}
			if budget > 0 && d > budget {
				s.log.Debugw("head frame exceeds time budget", map[string]any{
					"aid": sta.AID, "tid": tid, "airtime": d, "budget": budget,
				})
				continue
			}
			out = append(out, model.CandidateEntry{Station: sta, TID: tid, Frame: frame})
			break
		}
	}
	return out
}
