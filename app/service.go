// Package app assembles the scheduler service from the configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/axwifi/musched/config"
	"github.com/axwifi/musched/core/agg"
	"github.com/axwifi/musched/core/airtime"
	"github.com/axwifi/musched/core/coordinator"
	"github.com/axwifi/musched/core/events"
	"github.com/axwifi/musched/core/ledger"
	coremetrics "github.com/axwifi/musched/core/metrics"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/policy"
	"github.com/axwifi/musched/core/queue"
	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/core/selector"
	"github.com/axwifi/musched/infra/logger"
	"github.com/axwifi/musched/infra/metrics"
	"github.com/axwifi/musched/infra/solver"
	"github.com/axwifi/musched/internal/eventbus"
)

// Service orchestrates the coordinator, the round clock and the built-in
// traffic generator.
type Service struct {
	Coordinator *coordinator.Coordinator

	cfg       *config.Config
	queues    *queue.Memory
	clock     *roundsched.Clock
	bus       *eventbus.Bus[events.Event]
	collector coremetrics.MetricsSink
	class     model.TrafficClass
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	var collector coremetrics.MetricsSink
	if len(cfg.Metrics.CollectorSinks) > 0 {
		collector, err = coremetrics.NewMetricsSink(cfg.Metrics.CollectorSinks)
		if err != nil {
			return nil, fmt.Errorf("collector sink: %w", err)
		}
	}

	rates := airtime.NewRateTable()
	queues := queue.NewMemory()
	led := ledger.New()
	bus := eventbus.New[events.Event]()

	sel, err := selector.New(cfg.Selector, rates, queues, logger.New("selector"))
	if err != nil {
		return nil, fmt.Errorf("selector: %w", err)
	}
	budg, err := agg.New(cfg.Aggregation, rates)
	if err != nil {
		return nil, fmt.Errorf("aggregation: %w", err)
	}

	clock, err := roundsched.NewClock(time.Duration(cfg.Schedule.QuantumMs) * time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("clock: %w", err)
	}
	pol, err := buildPolicy(cfg, rates, clock)
	if err != nil {
		return nil, err
	}

	coord, err := coordinator.New(cfg.Coordinator, coordinator.Deps{
		Policy:    pol,
		Selector:  sel,
		Budgeter:  budg,
		Estimator: rates,
		Queues:    queues,
		Ledger:    led,
		Sink:      sink,
		Bus:       bus,
		Logger:    logger.New("coordinator"),
	})
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	for _, s := range cfg.Stations {
		caps := model.Capabilities{
			HESupported:  true,
			MCS:          s.MCS,
			MaxWidthMHz:  s.MaxWidthMHz,
			BlockAckTIDs: s.TIDs,
		}
		if err := coord.StationAssociated(s.AID, s.Addr, caps); err != nil {
			return nil, fmt.Errorf("station %d: %w", s.AID, err)
		}
	}

	class, err := model.ParseTrafficClass(cfg.Sim.Class)
	if err != nil {
		return nil, err
	}

	return &Service{
		Coordinator: coord,
		cfg:         cfg,
		queues:      queues,
		clock:       clock,
		bus:         bus,
		collector:   collector,
		class:       class,
		log:         logg,
	}, nil
}

func buildPolicy(cfg *config.Config, rates *airtime.RateTable, clock *roundsched.Clock) (policy.Policy, error) {
	switch cfg.Policy.Type {
	case config.PolicyRoundRobin:
		pol, err := policy.NewRoundRobin(cfg.Policy.RoundRobin)
		if err != nil {
			return nil, err
		}
		return pol, nil
	case config.PolicyProportionalFair:
		pol, err := policy.NewProportionalFair(cfg.Policy.ProportionalFair, rates)
		if err != nil {
			return nil, err
		}
		return pol, nil
	case config.PolicyDeadlineAware:
		traffic, err := roundsched.LoadTraffic(cfg.Schedule.TrafficFile)
		if err != nil {
			return nil, fmt.Errorf("traffic file: %w", err)
		}
		var ext roundsched.Solver
		if cfg.Schedule.Backend == roundsched.BackendILP {
			ext, err = solver.NewRunner(cfg.Schedule.Solver)
			if err != nil {
				return nil, fmt.Errorf("ilp solver: %w", err)
			}
		}
		gen, err := roundsched.NewGenerator(cfg.Coordinator.ChannelWidthMHz, traffic, cfg.Schedule.Round(), ext)
		if err != nil {
			return nil, fmt.Errorf("schedule generator: %w", err)
		}
		pol, err := policy.NewDeadlineAware(cfg.Policy.DeadlineAware, gen, clock, logger.New("deadline-aware"))
		if err != nil {
			return nil, err
		}
		return pol, nil
	}
	return nil, fmt.Errorf("unknown policy %q", cfg.Policy.Type)
}

// Run starts the service and blocks until the context is cancelled or the
// configured number of rounds has elapsed.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.collector != nil {
		metrics.StartEventCollector(ctx, s.bus, s.collector)
	}
	rounds := 0
	s.clock.Run(ctx, func(round int) {
		s.tick()
		rounds++
		if s.cfg.Sim.Rounds > 0 && rounds >= s.cfg.Sim.Rounds {
			cancel()
		}
	})
	return nil
}

// tick enqueues one round of generated traffic and grants one opportunity.
func (s *Service) tick() {
	tids := s.class.TIDs()
	for _, sta := range s.cfg.Stations {
		for i := 0; i < s.cfg.Sim.FramesPerRound; i++ {
			s.queues.Enqueue(sta.AID, model.Frame{Bytes: s.cfg.Sim.FrameBytes, TID: tids[0]})
		}
	}
	res, err := s.Coordinator.AccessGranted(coordinator.AccessRequest{
		Class:         s.class,
		AvailableTime: s.cfg.Sim.AvailableTime,
	})
	if err != nil {
		if errors.Is(err, policy.ErrNoFeasibleAssignment) {
			return
		}
		s.log.Warnf("access opportunity: %v", err)
		return
	}
	entries := 0
	if res.Dl != nil {
		entries = len(res.Dl.Entries)
	}
	s.log.Debugf("round served, format %s, %d downlink entries", res.Format, entries)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return nil
}
