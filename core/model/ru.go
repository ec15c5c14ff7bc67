package model

import "fmt"

// RuType is the size of a resource unit in tones.
type RuType int

const (
	Ru26  RuType = 26
	Ru52  RuType = 52
	Ru106 RuType = 106
	Ru242 RuType = 242
	Ru484 RuType = 484
	Ru996 RuType = 996
)

// RuTypes lists the resource unit sizes from smallest to largest.
var RuTypes = []RuType{Ru26, Ru52, Ru106, Ru242, Ru484, Ru996}

// Tones returns the tone count of the resource unit.
func (t RuType) Tones() int { return int(t) }

// BandwidthMHz returns the approximate spectral width occupied by one
// resource unit of this size.
func (t RuType) BandwidthMHz() float64 {
	switch t {
	case Ru26:
		return 2
	case Ru52:
		return 4
	case Ru106:
		return 8
	case Ru242:
		return 20
	case Ru484:
		return 40
	case Ru996:
		return 80
	default:
		return 0
	}
}

// Valid reports whether t is one of the defined resource unit sizes.
func (t RuType) Valid() bool {
	switch t {
	case Ru26, Ru52, Ru106, Ru242, Ru484, Ru996:
		return true
	}
	return false
}

func (t RuType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("RU?(%d)", int(t))
	}
	return fmt.Sprintf("RU%d", int(t))
}

// RuSpec identifies a concrete resource unit inside a channel: a size, a
// 1-based index within the equal-size partition, and for 160 MHz channels the
// 80 MHz half it belongs to.
type RuSpec struct {
	Type      RuType
	Index     int
	Primary80 bool
	Central   bool // true for the leftover central 26-tone units
}

func (r RuSpec) String() string {
	side := "P80"
	if !r.Primary80 {
		side = "S80"
	}
	if r.Central {
		return fmt.Sprintf("%s[c%d,%s]", r.Type, r.Index, side)
	}
	return fmt.Sprintf("%s[%d,%s]", r.Type, r.Index, side)
}
