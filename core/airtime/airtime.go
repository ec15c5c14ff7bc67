// Package airtime estimates on-air durations of payloads carried on a
// resource unit at a given modulation and coding scheme.
package airtime

import (
	"errors"
	"time"

	"github.com/axwifi/musched/core/model"
)

// ErrUnknownRate is returned when no data rate is defined for the requested
// resource unit size and MCS combination.
var ErrUnknownRate = errors.New("no data rate for resource unit and mcs")

// Estimator converts payload sizes into transmission durations.
type Estimator interface {
	// Estimate returns the time needed to send size bytes on one resource
	// unit of the given type at the given MCS.
	Estimate(bytes int, ru model.RuType, mcs int) (time.Duration, error)
}
