package model

import "fmt"

// TrafficClass identifies one of the four access categories, ordered by
// increasing priority.
type TrafficClass int

const (
	ClassBackground TrafficClass = iota
	ClassBestEffort
	ClassVideo
	ClassVoice
)

// Classes lists all traffic classes from lowest to highest priority.
var Classes = []TrafficClass{ClassBackground, ClassBestEffort, ClassVideo, ClassVoice}

// String returns the conventional two-letter access category name.
func (c TrafficClass) String() string {
	switch c {
	case ClassBackground:
		return "BK"
	case ClassBestEffort:
		return "BE"
	case ClassVideo:
		return "VI"
	case ClassVoice:
		return "VO"
	default:
		return "unknown"
	}
}

// ParseTrafficClass converts an access category name to its class.
func ParseTrafficClass(s string) (TrafficClass, error) {
	switch s {
	case "BK":
		return ClassBackground, nil
	case "BE":
		return ClassBestEffort, nil
	case "VI":
		return ClassVideo, nil
	case "VO":
		return ClassVoice, nil
	}
	return 0, fmt.Errorf("unknown traffic class %q", s)
}

// TIDs returns the two user priorities mapped onto this class, primary first.
func (c TrafficClass) TIDs() []uint8 {
	switch c {
	case ClassBackground:
		return []uint8{1, 2}
	case ClassBestEffort:
		return []uint8{0, 3}
	case ClassVideo:
		return []uint8{5, 4}
	case ClassVoice:
		return []uint8{7, 6}
	default:
		return nil
	}
}

// ClassForTID maps a user priority back to its access category.
func ClassForTID(tid uint8) TrafficClass {
	switch tid {
	case 1, 2:
		return ClassBackground
	case 4, 5:
		return ClassVideo
	case 6, 7:
		return ClassVoice
	default:
		return ClassBestEffort
	}
}

// Higher returns the classes with strictly higher priority than c, in
// increasing priority order. Used when an opportunity won for one class may
// also carry traffic of more urgent classes.
func (c TrafficClass) Higher() []TrafficClass {
	var out []TrafficClass
	for _, other := range Classes {
		if other > c {
			out = append(out, other)
		}
	}
	return out
}
