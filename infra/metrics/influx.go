package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/axwifi/musched/core/metrics"
	"github.com/axwifi/musched/infra/logger"
)

// InfluxSink writes scheduling outcomes to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordAssignments writes one point per resource unit grant.
func (s *InfluxSink) RecordAssignments(results []coremetrics.AssignmentResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range results {
		p := write.NewPointWithMeasurement("ru_assignment").
			AddTag("opportunity_id", r.OpportunityID).
			AddTag("aid", strconv.Itoa(int(r.AID))).
			AddTag("class", r.Class).
			AddTag("policy", r.Policy).
			AddTag("component", "coordinator").
			AddField("ru_tones", r.RuTones).
			AddField("ru_index", r.RuIndex).
			AddField("central", r.Central).
			AddField("mcs", r.MCS).
			AddField("frames", r.Frames).
			AddField("bytes", r.Bytes).
			AddField("tx_duration_us", r.TxDuration.Microseconds()).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordOpportunity persists one channel access decision.
func (s *InfluxSink) RecordOpportunity(ev coremetrics.OpportunityEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("access_opportunity").
		AddTag("opportunity_id", ev.ID).
		AddTag("class", ev.Class).
		AddTag("format", ev.Format).
		AddTag("component", "coordinator").
		AddField("candidates", ev.Candidates).
		AddField("assigned", ev.Assigned).
		AddField("tx_duration_us", ev.TxDuration.Microseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPacketDrop persists an abandoned deadline-scheduled packet.
func (s *InfluxSink) RecordPacketDrop(ev coremetrics.PacketDropEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("packet_drop").
		AddTag("aid", strconv.Itoa(int(ev.AID))).
		AddTag("reason", ev.Reason).
		AddTag("component", "scheduler").
		AddField("round", ev.Round).
		AddField("penalty", ev.Penalty).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSolverRun persists the outcome of a period schedule solve.
func (s *InfluxSink) RecordSolverRun(ev coremetrics.SolverRunEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("solver_run").
		AddTag("backend", ev.Backend).
		AddTag("failed", strconv.FormatBool(ev.Error != "")).
		AddTag("component", "scheduler").
		AddField("rounds", ev.Rounds).
		AddField("packets", ev.Packets).
		AddField("matched", ev.Matched).
		AddField("duration_us", ev.Duration.Microseconds()).
		AddField("errors", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordStationCount persists the number of associated stations.
func (s *InfluxSink) RecordStationCount(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("station_count").
		AddTag("component", "coordinator").
		AddField("stations", n).
		SetTime(time.Now())
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBufferStatus persists a reported uplink queue size.
func (s *InfluxSink) RecordBufferStatus(ev coremetrics.BufferStatusEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("buffer_status").
		AddTag("aid", strconv.Itoa(int(ev.AID))).
		AddTag("component", "coordinator").
		AddField("status", ev.Status).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}
