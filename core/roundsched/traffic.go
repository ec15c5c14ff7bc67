package roundsched

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StationTraffic declares the periodic traffic contract of one station:
// a packet arrives every PeriodRounds, must be served within DeadlineRounds
// of its arrival, and missing it costs Penalty.
type StationTraffic struct {
	AID            uint16  `json:"aid" yaml:"aid"`
	PeriodRounds   int     `json:"period_rounds" yaml:"period_rounds"`
	DeadlineRounds int     `json:"deadline_rounds" yaml:"deadline_rounds"`
	Penalty        float64 `json:"penalty" yaml:"penalty"`
}

// Validate checks one traffic declaration.
func (t StationTraffic) Validate() error {
	if t.PeriodRounds < 1 {
		return fmt.Errorf("station %d: period_rounds must be >= 1, got %d", t.AID, t.PeriodRounds)
	}
	if t.DeadlineRounds < 0 {
		return fmt.Errorf("station %d: deadline_rounds must be >= 0, got %d", t.AID, t.DeadlineRounds)
	}
	if t.Penalty < 0 {
		return fmt.Errorf("station %d: penalty must be >= 0, got %v", t.AID, t.Penalty)
	}
	return nil
}

// LoadTraffic loads traffic declarations from a JSON or YAML file.
func LoadTraffic(path string) ([]StationTraffic, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeTraffic(f, ext)
}

// DecodeTraffic reads traffic declarations from r in the given format.
func DecodeTraffic(r io.Reader, format string) ([]StationTraffic, error) {
	var out []StationTraffic
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&out); err != nil {
			return nil, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported traffic format: %s", format)
	}
	for _, t := range out {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
