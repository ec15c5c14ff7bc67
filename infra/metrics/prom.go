package metrics

import (
	"strconv"

	coremetrics "github.com/axwifi/musched/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records scheduling outcomes in Prometheus metrics.
type PromSink struct {
	assignments   *prometheus.CounterVec
	assignedBytes *prometheus.CounterVec
	opportunities *prometheus.CounterVec
	txDuration    *prometheus.HistogramVec
	drops         *prometheus.CounterVec
	solverRuns    *prometheus.CounterVec
	stations      prometheus.Gauge
}

// NewPromSink registers scheduler metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sched_ru_assignments_total",
		Help: "Total number of resource unit grants",
	}, []string{"aid", "class", "policy", "ru_tones"})
	assignedBytes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sched_assigned_bytes_total",
		Help: "Total payload bytes granted per station",
	}, []string{"aid", "class"})
	opportunities := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sched_access_opportunities_total",
		Help: "Total number of channel access decisions",
	}, []string{"class", "format"})
	txDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sched_tx_duration_seconds",
		Help:    "Duration of granted transmissions",
		Buckets: prometheus.ExponentialBuckets(10e-6, 2, 14),
	}, []string{"class", "format"})
	drops := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sched_packet_drops_total",
		Help: "Total number of abandoned deadline-scheduled packets",
	}, []string{"aid", "reason"})
	solverRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sched_solver_runs_total",
		Help: "Total number of period schedule solves",
	}, []string{"backend", "failed"})
	stations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sched_associated_stations",
		Help: "Number of associated stations",
	})

	if err := registerCounterVec(reg, &assignments); err != nil {
		return nil, err
	}
	if err := registerCounterVec(reg, &assignedBytes); err != nil {
		return nil, err
	}
	if err := registerCounterVec(reg, &opportunities); err != nil {
		return nil, err
	}
	if err := reg.Register(txDuration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			txDuration = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := registerCounterVec(reg, &drops); err != nil {
		return nil, err
	}
	if err := registerCounterVec(reg, &solverRuns); err != nil {
		return nil, err
	}
	if err := reg.Register(stations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			stations = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		assignments:   assignments,
		assignedBytes: assignedBytes,
		opportunities: opportunities,
		txDuration:    txDuration,
		drops:         drops,
		solverRuns:    solverRuns,
		stations:      stations,
	}, nil
}

func registerCounterVec(reg prometheus.Registerer, cv **prometheus.CounterVec) error {
	if err := reg.Register(*cv); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			*cv = are.ExistingCollector.(*prometheus.CounterVec)
			return nil
		}
		return err
	}
	return nil
}

// RecordAssignments increments the grant counters for every assignment.
func (s *PromSink) RecordAssignments(results []coremetrics.AssignmentResult) error {
	for _, r := range results {
		aid := strconv.Itoa(int(r.AID))
		s.assignments.WithLabelValues(aid, r.Class, r.Policy, strconv.Itoa(r.RuTones)).Inc()
		s.assignedBytes.WithLabelValues(aid, r.Class).Add(float64(r.Bytes))
	}
	return nil
}

// RecordOpportunity counts the access decision and observes its duration.
func (s *PromSink) RecordOpportunity(ev coremetrics.OpportunityEvent) error {
	s.opportunities.WithLabelValues(ev.Class, ev.Format).Inc()
	if ev.TxDuration > 0 {
		s.txDuration.WithLabelValues(ev.Class, ev.Format).Observe(ev.TxDuration.Seconds())
	}
	return nil
}

// RecordPacketDrop counts an abandoned packet.
func (s *PromSink) RecordPacketDrop(ev coremetrics.PacketDropEvent) error {
	s.drops.WithLabelValues(strconv.Itoa(int(ev.AID)), ev.Reason).Inc()
	return nil
}

// RecordSolverRun counts a period schedule solve.
func (s *PromSink) RecordSolverRun(ev coremetrics.SolverRunEvent) error {
	s.solverRuns.WithLabelValues(ev.Backend, strconv.FormatBool(ev.Error != "")).Inc()
	return nil
}

// RecordStationCount sets the association gauge.
func (s *PromSink) RecordStationCount(n int) error {
	if s.stations != nil {
		s.stations.Set(float64(n))
	}
	return nil
}
