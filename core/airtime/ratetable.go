package airtime

import (
	"fmt"
	"time"

	"github.com/axwifi/musched/core/model"
)

// rateMbps holds single-stream high-efficiency data rates in megabits per
// second, indexed by resource unit size and MCS 0..11. Rates assume a
// 12.8 us symbol plus 0.8 us guard interval.
var rateMbps = map[model.RuType][12]float64{
	model.Ru26:  {0.8, 1.7, 2.5, 3.3, 5.0, 6.7, 7.5, 8.3, 10.0, 11.1, 12.5, 13.9},
	model.Ru52:  {1.7, 3.3, 5.0, 6.7, 10.0, 13.3, 15.0, 16.7, 20.0, 22.2, 25.0, 27.8},
	model.Ru106: {3.5, 7.1, 10.6, 14.2, 21.3, 28.3, 31.9, 35.4, 42.5, 47.2, 53.1, 59.0},
	model.Ru242: {8.1, 16.3, 24.4, 32.5, 48.8, 65.0, 73.1, 81.3, 97.5, 108.3, 121.9, 135.4},
	model.Ru484: {16.3, 32.5, 48.8, 65.0, 97.5, 130.0, 146.3, 162.5, 195.0, 216.7, 243.8, 270.8},
	model.Ru996: {34.0, 68.1, 102.1, 136.1, 204.2, 272.2, 306.3, 340.3, 408.3, 453.7, 510.4, 567.1},
}

// RateTable is a table-driven Estimator over the standard high-efficiency
// single-stream rates.
type RateTable struct{}

// NewRateTable returns the standard rate table.
func NewRateTable() *RateTable { return &RateTable{} }

// Rate returns the data rate in megabits per second for a resource unit size
// and MCS.
func (rt *RateTable) Rate(ru model.RuType, mcs int) (float64, error) {
	rates, ok := rateMbps[ru]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownRate, ru)
	}
	if mcs < 0 || mcs >= len(rates) {
		return 0, fmt.Errorf("%w: %s mcs %d", ErrUnknownRate, ru, mcs)
	}
	return rates[mcs], nil
}

// Estimate implements Estimator.
func (rt *RateTable) Estimate(bytes int, ru model.RuType, mcs int) (time.Duration, error) {
	rate, err := rt.Rate(ru, mcs)
	if err != nil {
		return 0, err
	}
	if bytes < 0 {
		return 0, fmt.Errorf("negative payload size %d", bytes)
	}
	bits := float64(bytes) * 8
	us := bits / rate
	return time.Duration(us * float64(time.Microsecond)), nil
}
