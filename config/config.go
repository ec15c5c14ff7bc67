package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/axwifi/musched/core/agg"
	"github.com/axwifi/musched/core/coordinator"
	"github.com/axwifi/musched/core/factory"
	"github.com/axwifi/musched/core/selector"
)

// Config is the top-level service configuration.
type Config struct {
	Coordinator coordinator.Config `json:"coordinator"`
	Selector    selector.Config    `json:"selector"`
	Aggregation agg.Config         `json:"aggregation"`
	Policy      PolicyConfig       `json:"policy"`
	Schedule    ScheduleConfig     `json:"schedule"`
	Metrics     MetricsConfig      `json:"metrics"`
	Stations    []StationConfig    `json:"stations"`
	Sim         SimConfig          `json:"sim"`
}

// MetricsConfig selects the metrics sinks and the Prometheus exposition
// address. Sinks listed under collector_sinks are not handed to the
// coordinator; they are fed from the event bus instead.
type MetricsConfig struct {
	Sinks          []factory.ModuleConfig `json:"sinks"`
	CollectorSinks []factory.ModuleConfig `json:"collector_sinks"`
	PrometheusAddr string                 `json:"prometheus_addr"`
}

// StationConfig declares a station registered at startup.
type StationConfig struct {
	AID         uint16 `json:"aid"`
	Addr        string `json:"addr"`
	MCS         int    `json:"mcs"`
	MaxWidthMHz int    `json:"max_width_mhz"`
	// TIDs lists the traffic identifiers with a block-ack agreement.
	TIDs []uint8 `json:"tids"`
}

// Load reads, defaults and validates the configuration file. Environment
// variables prefixed with MUSCHED_ override file values, with "__" as the
// nesting separator.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("MUSCHED_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "musched_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Coordinator.SetDefaults()
	cfg.Selector.SetDefaults()
	cfg.Aggregation.SetDefaults()
	cfg.Policy.SetDefaults()
	cfg.Schedule.SetDefaults()
	cfg.Sim.SetDefaults()
	if err := cfg.Coordinator.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Selector.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Aggregation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Schedule.Validate(cfg.Policy.Type); err != nil {
		return nil, err
	}
	if err := cfg.Sim.Validate(); err != nil {
		return nil, err
	}
	for _, s := range cfg.Stations {
		if s.Addr == "" {
			return nil, fmt.Errorf("station %d: addr is required", s.AID)
		}
	}
	return &cfg, nil
}
