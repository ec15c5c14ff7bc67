// Package ru plans resource unit partitions of a channel for multi-user
// transmissions.
package ru

import (
	"errors"
	"fmt"

	"github.com/axwifi/musched/core/model"
)

var (
	// ErrUnsupportedChannelWidth is returned for widths other than 20, 40,
	// 80 and 160 MHz.
	ErrUnsupportedChannelWidth = errors.New("unsupported channel width")
	// ErrInfeasiblePlan is returned when no valid partition exists for the
	// request.
	ErrInfeasiblePlan = errors.New("infeasible resource unit plan")
)

// counts gives, per channel width, how many equal-size resource units of each
// type fit in the channel. The 26-tone rows already include the central
// units.
var counts = map[int]map[model.RuType]int{
	20:  {model.Ru26: 9, model.Ru52: 4, model.Ru106: 2, model.Ru242: 1},
	40:  {model.Ru26: 18, model.Ru52: 8, model.Ru106: 4, model.Ru242: 2, model.Ru484: 1},
	80:  {model.Ru26: 37, model.Ru52: 16, model.Ru106: 8, model.Ru242: 4, model.Ru484: 2, model.Ru996: 1},
	160: {model.Ru26: 74, model.Ru52: 32, model.Ru106: 16, model.Ru242: 8, model.Ru484: 4, model.Ru996: 2},
}

// central26 gives the number of leftover central 26-tone units usable
// alongside a 52 or 106-tone partition.
var central26 = map[int]int{20: 1, 40: 2, 80: 5, 160: 10}

var channelTones = map[int]int{20: 242, 40: 484, 80: 996, 160: 1992}

// ChannelTones returns the total usable tones of a channel width.
func ChannelTones(widthMHz int) (int, error) {
	t, ok := channelTones[widthMHz]
	if !ok {
		return 0, fmt.Errorf("%w: %d MHz", ErrUnsupportedChannelWidth, widthMHz)
	}
	return t, nil
}

// Slots returns how many resource units of the given type fit in the channel.
func Slots(widthMHz int, t model.RuType) (int, error) {
	byType, ok := counts[widthMHz]
	if !ok {
		return 0, fmt.Errorf("%w: %d MHz", ErrUnsupportedChannelWidth, widthMHz)
	}
	n, ok := byType[t]
	if !ok {
		return 0, fmt.Errorf("%w: %s does not fit in %d MHz", ErrInfeasiblePlan, t, widthMHz)
	}
	return n, nil
}

// TypeIndex returns the position of a resource unit type among the sizes
// supported at the given width, in ascending tone order. External solvers
// identify the slot type by this index.
func TypeIndex(widthMHz int, t model.RuType) (int, error) {
	byType, ok := counts[widthMHz]
	if !ok {
		return 0, fmt.Errorf("%w: %d MHz", ErrUnsupportedChannelWidth, widthMHz)
	}
	idx := 0
	for _, candidate := range model.RuTypes {
		if _, fits := byType[candidate]; !fits {
			continue
		}
		if candidate == t {
			return idx, nil
		}
		idx++
	}
	return 0, fmt.Errorf("%w: %s does not fit in %d MHz", ErrInfeasiblePlan, t, widthMHz)
}

// Plan is an equal-size partition of a channel: Count resource units of one
// type, plus optionally the channel's central 26-tone units.
type Plan struct {
	WidthMHz  int
	Type      model.RuType
	Count     int
	Central26 int
}

// NewPlan chooses a partition for the requested number of stations: the
// largest resource unit type whose equal-size partition still offers one unit
// per station. When even the 26-tone partition is too small, the plan caps at
// the 26-tone capacity and the surplus stations go unserved. Central 26-tone
// units are only available next to 52 and 106-tone partitions.
func NewPlan(widthMHz, stations int, useCentral bool) (Plan, error) {
	byType, ok := counts[widthMHz]
	if !ok {
		return Plan{}, fmt.Errorf("%w: %d MHz", ErrUnsupportedChannelWidth, widthMHz)
	}
	if stations < 1 {
		return Plan{}, fmt.Errorf("%w: %d stations", ErrInfeasiblePlan, stations)
	}
	chosen := model.Ru26
	count := byType[model.Ru26]
	for i := len(model.RuTypes) - 1; i >= 0; i-- {
		t := model.RuTypes[i]
		n, fits := byType[t]
		if fits && n >= stations {
			chosen = t
			count = stations
			break
		}
	}
	p := Plan{WidthMHz: widthMHz, Type: chosen, Count: count}
	if useCentral && (chosen == model.Ru52 || chosen == model.Ru106) {
		p.Central26 = central26[widthMHz]
	}
	total, _ := ChannelTones(widthMHz)
	if p.TotalTones() > total {
		return Plan{}, fmt.Errorf("%w: %d tones exceed %d", ErrInfeasiblePlan, p.TotalTones(), total)
	}
	return p, nil
}

// Capacity is the number of stations the plan can serve.
func (p Plan) Capacity() int { return p.Count + p.Central26 }

// TotalTones sums the tones of every unit in the plan.
func (p Plan) TotalTones() int {
	return p.Count*p.Type.Tones() + p.Central26*model.Ru26.Tones()
}

// Specs enumerates the plan's equal-size resource units.
func (p Plan) Specs() []model.RuSpec {
	specs := make([]model.RuSpec, 0, p.Count)
	for i := 1; i <= p.Count; i++ {
		specs = append(specs, model.RuSpec{
			Type:      p.Type,
			Index:     i,
			Primary80: p.WidthMHz < 160 || i <= p.Count/2,
		})
	}
	return specs
}

// CentralSpecs enumerates the plan's central 26-tone units.
func (p Plan) CentralSpecs() []model.RuSpec {
	specs := make([]model.RuSpec, 0, p.Central26)
	for i := 1; i <= p.Central26; i++ {
		specs = append(specs, model.RuSpec{
			Type:      model.Ru26,
			Index:     i,
			Primary80: p.WidthMHz < 160 || i <= p.Central26/2,
			Central:   true,
		})
	}
	return specs
}
