package model

// AssignmentEntry maps one station to one resource unit for a transmission.
type AssignmentEntry struct {
	Station *Station
	Ru      RuSpec
	MCS     int
	TID     uint8
	Head    Frame // head-of-line frame the assignment was made for
}

// Assignment is the outcome of a policy run: a set of disjoint
// station-to-resource-unit bindings for a single transmission.
type Assignment struct {
	Entries []AssignmentEntry
}

// Has reports whether the station already holds a resource unit.
func (a Assignment) Has(aid uint16) bool {
	for _, e := range a.Entries {
		if e.Station.AID == aid {
			return true
		}
	}
	return false
}

// TotalTones sums the tones of every assigned resource unit.
func (a Assignment) TotalTones() int {
	total := 0
	for _, e := range a.Entries {
		total += e.Ru.Type.Tones()
	}
	return total
}

// TxFormat is the kind of transmission to perform for a won channel access.
type TxFormat int

const (
	// NoTransmission means the opportunity should be released unused.
	NoTransmission TxFormat = iota
	// DownlinkData is a multi-user downlink data transmission.
	DownlinkData
	// SolicitUplinkBsrp polls stations for buffer status reports.
	SolicitUplinkBsrp
	// SolicitUplinkBasic grants uplink resource units for data.
	SolicitUplinkBasic
)

func (f TxFormat) String() string {
	switch f {
	case NoTransmission:
		return "no-tx"
	case DownlinkData:
		return "dl-mu"
	case SolicitUplinkBsrp:
		return "ul-bsrp"
	case SolicitUplinkBasic:
		return "ul-basic"
	default:
		return "unknown"
	}
}

// DropReason explains why a deadline-scheduled packet was abandoned.
type DropReason int

const (
	// DropUnmatched marks a packet the matching left without a slot.
	DropUnmatched DropReason = iota
	// DropDeadlineMissed marks a packet whose deadline round has elapsed.
	DropDeadlineMissed
)

func (r DropReason) String() string {
	switch r {
	case DropUnmatched:
		return "unmatched"
	case DropDeadlineMissed:
		return "deadline-missed"
	default:
		return "unknown"
	}
}
