package model

import "fmt"

// Capabilities describes what an associating station advertised during
// association. Stations without high-efficiency support are never scheduled
// for multi-user transmissions.
type Capabilities struct {
	HESupported  bool
	MCS          int // highest usable modulation and coding scheme, 0..11
	MaxWidthMHz  int
	BlockAckTIDs []uint8 // TIDs with an established block-ack agreement
}

// Station is a scheduling participant. One instance is shared across the
// per-class serve lists, so fairness state attached to it is global to the
// station rather than per class.
type Station struct {
	AID  uint16
	Addr string

	MCS         int
	MaxWidthMHz int

	blockAck map[uint8]bool
}

// NewStation builds a station from its association capabilities.
func NewStation(aid uint16, addr string, caps Capabilities) (*Station, error) {
	if !caps.HESupported {
		return nil, fmt.Errorf("station %d: no high-efficiency support", aid)
	}
	if caps.MCS < 0 || caps.MCS > 11 {
		return nil, fmt.Errorf("station %d: mcs %d out of range", aid, caps.MCS)
	}
	s := &Station{
		AID:         aid,
		Addr:        addr,
		MCS:         caps.MCS,
		MaxWidthMHz: caps.MaxWidthMHz,
		blockAck:    make(map[uint8]bool, len(caps.BlockAckTIDs)),
	}
	for _, tid := range caps.BlockAckTIDs {
		s.blockAck[tid] = true
	}
	return s, nil
}

// AddBlockAck records an established block-ack agreement for a TID.
func (s *Station) AddBlockAck(tid uint8) {
	if s.blockAck == nil {
		s.blockAck = make(map[uint8]bool)
	}
	s.blockAck[tid] = true
}

// HasBlockAck reports whether frames of the given TID may be aggregated
// towards this station.
func (s *Station) HasBlockAck(tid uint8) bool {
	return s.blockAck[tid]
}
