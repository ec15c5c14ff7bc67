// Package coordinator drives multi-user scheduling decisions: on every won
// channel access it decides between downlink data, uplink solicitation or
// releasing the opportunity, and runs selection, policy assignment and
// aggregation for the chosen direction.
package coordinator

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/axwifi/musched/core/agg"
	"github.com/axwifi/musched/core/airtime"
	"github.com/axwifi/musched/core/events"
	"github.com/axwifi/musched/core/ledger"
	"github.com/axwifi/musched/core/logger"
	"github.com/axwifi/musched/core/metrics"
	"github.com/axwifi/musched/core/model"
	"github.com/axwifi/musched/core/policy"
	"github.com/axwifi/musched/core/roundsched"
	"github.com/axwifi/musched/core/ru"
	"github.com/axwifi/musched/core/selector"
	"github.com/axwifi/musched/internal/eventbus"
)

// ErrTimeBudgetExceeded means the remaining transmit opportunity time cannot
// carry any transmission and the access must be abandoned.
var ErrTimeBudgetExceeded = errors.New("time budget exceeded")

// Buffer status report markers.
const (
	statusUnknown   = 255
	statusUnbounded = 254
)

// bytes of eight QoS Null frames, the payload a status poll elicits.
const qosNullPollBytes = 288

// AccessRequest describes one won channel access.
type AccessRequest struct {
	Class model.TrafficClass
	// AvailableTime is the remaining transmit opportunity time.
	AvailableTime time.Duration
	// InitialFrame marks the first frame of a transmit opportunity, whose
	// duration is not yet constrained.
	InitialFrame bool
}

// DlEntry is one station's share of a downlink transmission.
type DlEntry struct {
	Station *model.Station
	Ru      model.RuSpec
	MCS     int
	TID     uint8
	Frames  []model.Frame
	Bytes   int
}

// DlMuTx is a committed downlink multi-user transmission.
type DlMuTx struct {
	ID       string
	Entries  []DlEntry
	Duration time.Duration
}

// UlEntry is one station's uplink grant.
type UlEntry struct {
	Station *model.Station
	Ru      model.RuSpec
	MCS     int
	Bytes   int
}

// UlMuTx is an uplink solicitation: a status poll or a data grant.
type UlMuTx struct {
	ID       string
	Trigger  model.TxFormat
	Entries  []UlEntry
	Duration time.Duration
}

// Result is the coordinator's decision for one channel access.
type Result struct {
	Format model.TxFormat
	Dl     *DlMuTx
	Ul     *UlMuTx
}

// Deps collects the coordinator's collaborators.
type Deps struct {
	Policy    policy.Policy
	Selector  *selector.Selector
	Budgeter  *agg.Budgeter
	Estimator airtime.Estimator
	Queues    model.QueueView
	Ledger    *ledger.Ledger
	Sink      metrics.MetricsSink
	Bus       *eventbus.Bus[events.Event]
	Logger    logger.Logger
}

// Coordinator owns the association state and serve lists and arbitrates
// every channel access. All methods are safe for concurrent use.
type Coordinator struct {
	mu  sync.Mutex
	cfg Config

	pol    policy.Policy
	sel    *selector.Selector
	budg   *agg.Budgeter
	est    airtime.Estimator
	queues model.QueueView
	led    *ledger.Ledger
	sink   metrics.MetricsSink
	bus    *eventbus.Bus[events.Event]
	log    logger.Logger

	stations map[uint16]*model.Station
	order    map[model.TrafficClass][]*model.Station

	bufferStatus map[uint16]int
	lastFormat   model.TxFormat
	lastDl       []DlEntry
}

// New creates a Coordinator.
func New(cfg Config, deps Deps) (*Coordinator, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Policy == nil || deps.Selector == nil || deps.Budgeter == nil {
		return nil, fmt.Errorf("coordinator needs a policy, a selector and a budgeter")
	}
	if deps.Estimator == nil || deps.Queues == nil || deps.Ledger == nil {
		return nil, fmt.Errorf("coordinator needs an estimator, queues and a ledger")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("coordinator needs a logger")
	}
	if deps.Sink == nil {
		deps.Sink = metrics.NopSink{}
	}
	c := &Coordinator{
		cfg:          cfg,
		pol:          deps.Policy,
		sel:          deps.Selector,
		budg:         deps.Budgeter,
		est:          deps.Estimator,
		queues:       deps.Queues,
		led:          deps.Ledger,
		sink:         deps.Sink,
		bus:          deps.Bus,
		log:          deps.Logger,
		stations:     make(map[uint16]*model.Station),
		order:        make(map[model.TrafficClass][]*model.Station),
		bufferStatus: make(map[uint16]int),
	}
	if da, ok := deps.Policy.(*policy.DeadlineAware); ok {
		da.OnDrop(c.handleDrop)
		da.OnSolve(c.handleSolve)
	}
	return c, nil
}

func (c *Coordinator) publish(e events.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

func (c *Coordinator) handleDrop(aid uint16, round int, pkt roundsched.Packet, reason model.DropReason) {
	if rec, ok := c.sink.(metrics.PacketDropRecorder); ok {
		if err := rec.RecordPacketDrop(metrics.PacketDropEvent{
			AID: aid, Round: round, Reason: reason.String(), Penalty: pkt.Penalty, Time: time.Now(),
		}); err != nil {
			c.log.Warnf("record drop: %v", err)
		}
	}
	c.publish(events.DropEvent{AID: aid, Round: round, Reason: reason, Penalty: pkt.Penalty, Time: time.Now()})
}

func (c *Coordinator) handleSolve(backend string, rounds, packets, matched int, elapsed time.Duration, err error) {
	if rec, ok := c.sink.(metrics.SolverRunRecorder); ok {
		errStr := ""
		if err != nil {
			errStr = err.Error()
		}
		if rerr := rec.RecordSolverRun(metrics.SolverRunEvent{
			Backend: backend, Rounds: rounds, Packets: packets, Matched: matched,
			Duration: elapsed, Error: errStr, Time: time.Now(),
		}); rerr != nil {
			c.log.Warnf("record solver run: %v", rerr)
		}
	}
	c.publish(events.SolverEvent{Backend: backend, Err: err, Time: time.Now()})
}

// StationAssociated registers a station. Stations without high-efficiency
// support are ignored.
func (c *Coordinator) StationAssociated(aid uint16, addr string, caps model.Capabilities) error {
	if !caps.HESupported {
		c.log.Infof("station %d has no high-efficiency support, ignored", aid)
		return nil
	}
	sta, err := model.NewStation(aid, addr, caps)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.stations[aid]; dup {
		c.removeLocked(aid)
	}
	c.stations[aid] = sta
	for _, class := range model.Classes {
		c.order[class] = append(c.order[class], sta)
	}
	c.led.Ensure(aid)
	c.recordStationCount()
	c.publish(events.AssociationEvent{AID: aid, Associated: true, Time: time.Now()})
	c.log.Infof("station %d associated (%s, mcs %d)", aid, addr, sta.MCS)
	return nil
}

// StationDeassociated removes a station from every serve list.
func (c *Coordinator) StationDeassociated(aid uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stations[aid]; !ok {
		return
	}
	c.removeLocked(aid)
	c.recordStationCount()
	c.publish(events.AssociationEvent{AID: aid, Associated: false, Time: time.Now()})
	c.log.Infof("station %d deassociated", aid)
}

func (c *Coordinator) removeLocked(aid uint16) {
	delete(c.stations, aid)
	delete(c.bufferStatus, aid)
	c.led.Remove(aid)
	for class, list := range c.order {
		for i, sta := range list {
			if sta.AID == aid {
				c.order[class] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

func (c *Coordinator) recordStationCount() {
	if rec, ok := c.sink.(metrics.StationCountRecorder); ok {
		if err := rec.RecordStationCount(len(c.stations)); err != nil {
			c.log.Warnf("record station count: %v", err)
		}
	}
}

// ReportBufferStatus stores a station's reported uplink queue size. 255
// means unknown, 254 means more than the reportable maximum, other values
// count units of 256 bytes.
func (c *Coordinator) ReportBufferStatus(aid uint16, status int) {
	if status < 0 || status > 255 {
		c.log.Warnf("station %d reported invalid buffer status %d", aid, status)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.stations[aid]; !ok {
		return
	}
	c.bufferStatus[aid] = status
	if rec, ok := c.sink.(metrics.BufferStatusRecorder); ok {
		if err := rec.RecordBufferStatus(metrics.BufferStatusEvent{AID: aid, Status: status, Time: time.Now()}); err != nil {
			c.log.Warnf("record buffer status: %v", err)
		}
	}
}

// AccessGranted decides what to do with a won channel access. The sequence
// follows the downlink/uplink interleave: after downlink data comes a status
// poll (when enabled), after a poll comes a data grant, and everything else
// is downlink.
func (c *Coordinator) AccessGranted(req AccessRequest) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfg.EnableUplink {
		if c.cfg.EnableBsrp && c.lastFormat == model.DownlinkData {
			if res, ok := c.solicitBsrp(req); ok {
				return res, nil
			}
		}
		afterPoll := c.lastFormat == model.SolicitUplinkBsrp
		afterData := !c.cfg.EnableBsrp && c.lastFormat == model.DownlinkData
		if afterPoll || afterData {
			if res, ok := c.solicitBasic(req); ok {
				return res, nil
			}
		}
	}
	return c.downlink(req)
}

// ulTargets returns the stations an uplink solicitation should address: the
// participants of the last downlink transmission, or every associated
// station when there was none.
func (c *Coordinator) ulTargets() []*model.Station {
	if len(c.lastDl) > 0 {
		out := make([]*model.Station, 0, len(c.lastDl))
		for _, e := range c.lastDl {
			if _, ok := c.stations[e.Station.AID]; ok {
				out = append(out, e.Station)
			}
		}
		return out
	}
	out := make([]*model.Station, 0, len(c.stations))
	for _, sta := range c.order[model.ClassBestEffort] {
		out = append(out, sta)
	}
	return out
}

func (c *Coordinator) solicitBsrp(req AccessRequest) (Result, bool) {
	targets := c.ulTargets()
	if len(targets) == 0 {
		return Result{}, false
	}
	if len(targets) > c.cfg.MaxStations {
		targets = targets[:c.cfg.MaxStations]
	}
	plan, err := ru.NewPlan(c.cfg.ChannelWidthMHz, len(targets), false)
	if err != nil {
		c.log.Errorf("status poll plan: %v", err)
		return Result{}, false
	}
	specs := plan.Specs()

	// Status responses ride the most robust rate.
	dur, err := c.est.Estimate(qosNullPollBytes, plan.Type, 0)
	if err != nil {
		c.log.Errorf("status poll estimate: %v", err)
		return Result{}, false
	}
	if !req.InitialFrame && req.AvailableTime > 0 && dur > req.AvailableTime {
		return Result{}, false
	}

	tx := &UlMuTx{ID: uuid.NewString(), Trigger: model.SolicitUplinkBsrp, Duration: dur}
	for i, sta := range targets {
		tx.Entries = append(tx.Entries, UlEntry{Station: sta, Ru: specs[i], MCS: 0, Bytes: qosNullPollBytes})
	}
	c.finishOpportunity(tx.ID, req.Class, model.SolicitUplinkBsrp, len(targets), len(tx.Entries), dur)
	return Result{Format: model.SolicitUplinkBsrp, Ul: tx}, true
}

// grantBytes converts a buffer status report into an uplink grant size.
func (c *Coordinator) grantBytes(status int) int {
	switch status {
	case statusUnknown:
		return c.cfg.UlPsduBytes
	case statusUnbounded:
		return statusUnbounded * 256
	default:
		return status * 256
	}
}

func (c *Coordinator) solicitBasic(req AccessRequest) (Result, bool) {
	type ulCand struct {
		sta   *model.Station
		bytes int
	}
	var cands []ulCand
	for _, sta := range c.ulTargets() {
		status, reported := c.bufferStatus[sta.AID]
		if !reported {
			status = statusUnknown
		}
		if b := c.grantBytes(status); b > 0 {
			cands = append(cands, ulCand{sta: sta, bytes: b})
		}
	}
	if len(cands) == 0 {
		return Result{}, false
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].bytes > cands[j].bytes })
	if len(cands) > c.cfg.MaxStations {
		cands = cands[:c.cfg.MaxStations]
	}
	plan, err := ru.NewPlan(c.cfg.ChannelWidthMHz, len(cands), false)
	if err != nil {
		c.log.Errorf("uplink grant plan: %v", err)
		return Result{}, false
	}
	specs := plan.Specs()

	var dur time.Duration
	for _, cand := range cands {
		d, err := c.est.Estimate(cand.bytes, plan.Type, cand.sta.MCS)
		if err != nil {
			c.log.Errorf("uplink grant estimate for %d: %v", cand.sta.AID, err)
			return Result{}, false
		}
		if d > dur {
			dur = d
		}
	}
	if !req.InitialFrame && req.AvailableTime > 0 && dur > req.AvailableTime {
		// Grant what the remaining opportunity can carry.
		dur = req.AvailableTime
	}

	tx := &UlMuTx{ID: uuid.NewString(), Trigger: model.SolicitUplinkBasic, Duration: dur}
	for i, cand := range cands {
		tx.Entries = append(tx.Entries, UlEntry{Station: cand.sta, Ru: specs[i], MCS: cand.sta.MCS, Bytes: cand.bytes})
	}
	c.finishOpportunity(tx.ID, req.Class, model.SolicitUplinkBasic, len(cands), len(tx.Entries), dur)
	return Result{Format: model.SolicitUplinkBasic, Ul: tx}, true
}

func (c *Coordinator) downlink(req AccessRequest) (Result, error) {
	if !req.InitialFrame && req.AvailableTime <= 0 {
		return Result{}, ErrTimeBudgetExceeded
	}
	list := c.order[req.Class]
	if len(list) == 0 {
		return Result{}, policy.ErrNoFeasibleAssignment
	}
	n := len(list)
	if n > c.cfg.MaxStations {
		n = c.cfg.MaxStations
	}
	plan, err := ru.NewPlan(c.cfg.ChannelWidthMHz, n, c.cfg.UseCentral26)
	if err != nil {
		return Result{}, err
	}

	budget := req.AvailableTime
	if req.InitialFrame {
		budget = 0
	}
	cands := c.sel.Select(req.Class, list, plan, budget)
	if len(cands) == 0 {
		return c.noAssignment()
	}
	// Re-plan for the stations that actually have traffic: fewer candidates
	// mean wider resource units.
	plan, err = ru.NewPlan(c.cfg.ChannelWidthMHz, len(cands), c.cfg.UseCentral26)
	if err != nil {
		return Result{}, err
	}

	asg, err := c.pol.Assign(cands, plan, c.led)
	if errors.Is(err, policy.ErrNoFeasibleAssignment) {
		return c.noAssignment()
	}
	if err != nil {
		return Result{}, err
	}
	if len(asg.Entries) == 0 {
		// The policy buffered or dropped everything for this round.
		return Result{Format: model.NoTransmission}, nil
	}

	tx := &DlMuTx{ID: uuid.NewString()}
	for _, e := range asg.Entries {
		snapshot := c.queues.PeekQueue(e.Station.AID, e.TID)
		res, err := c.budg.Build(e.Ru.Type, e.MCS, snapshot, budget)
		if errors.Is(err, agg.ErrNothingToSend) {
			continue
		}
		if err != nil {
			return Result{}, err
		}
		d, err := c.est.Estimate(res.TotalBytes, e.Ru.Type, e.MCS)
		if err != nil {
			return Result{}, err
		}
		if d > tx.Duration {
			tx.Duration = d
		}
		tx.Entries = append(tx.Entries, DlEntry{
			Station: e.Station,
			Ru:      e.Ru,
			MCS:     e.MCS,
			TID:     e.TID,
			Frames:  res.Frames,
			Bytes:   res.TotalBytes,
		})
	}
	if len(tx.Entries) == 0 {
		return Result{}, agg.ErrNothingToSend
	}

	if settler, ok := c.pol.(policy.Settler); ok {
		served := make([]policy.Served, 0, len(tx.Entries))
		for _, e := range tx.Entries {
			served = append(served, policy.Served{Station: e.Station, Ru: e.Ru, Bytes: e.Bytes})
		}
		c.order[req.Class] = settler.Settle(tx.Duration, served, c.order[req.Class], c.led)
	}

	// Commit: sequence numbers are only allocated for frames leaving now.
	for _, e := range tx.Entries {
		c.queues.AssignSequenceNumbers(e.Station.AID, e.TID, len(e.Frames))
		c.queues.Dequeue(e.Station.AID, e.TID, len(e.Frames))
	}

	c.recordAssignments(tx, req.Class)
	c.finishOpportunity(tx.ID, req.Class, model.DownlinkData, len(cands), len(tx.Entries), tx.Duration)
	c.lastDl = tx.Entries
	return Result{Format: model.DownlinkData, Dl: tx}, nil
}

// noAssignment resolves an opportunity with no usable multi-user candidates.
// Unless downlink is forced, the error tells the caller a single-user
// transmission may take over.
func (c *Coordinator) noAssignment() (Result, error) {
	if c.cfg.ForcedDownlink {
		return Result{Format: model.NoTransmission}, nil
	}
	return Result{Format: model.NoTransmission}, policy.ErrNoFeasibleAssignment
}

func (c *Coordinator) recordAssignments(tx *DlMuTx, class model.TrafficClass) {
	results := make([]metrics.AssignmentResult, 0, len(tx.Entries))
	now := time.Now()
	for _, e := range tx.Entries {
		results = append(results, metrics.AssignmentResult{
			OpportunityID: tx.ID,
			AID:           e.Station.AID,
			Class:         class.String(),
			Policy:        c.pol.Name(),
			RuTones:       e.Ru.Type.Tones(),
			RuIndex:       e.Ru.Index,
			Central:       e.Ru.Central,
			MCS:           e.MCS,
			Frames:        len(e.Frames),
			Bytes:         e.Bytes,
			TxDuration:    tx.Duration,
			Time:          now,
		})
	}
	if err := c.sink.RecordAssignments(results); err != nil {
		c.log.Warnf("record assignments: %v", err)
	}
}

func (c *Coordinator) finishOpportunity(id string, class model.TrafficClass, format model.TxFormat, cands, assigned int, dur time.Duration) {
	c.lastFormat = format
	if rec, ok := c.sink.(metrics.OpportunityRecorder); ok {
		if err := rec.RecordOpportunity(metrics.OpportunityEvent{
			ID:         id,
			Class:      class.String(),
			Format:     format.String(),
			Candidates: cands,
			Assigned:   assigned,
			TxDuration: dur,
			Time:       time.Now(),
		}); err != nil {
			c.log.Warnf("record opportunity: %v", err)
		}
	}
	c.publish(events.OpportunityEvent{
		ID:       id,
		Class:    class,
		Format:   format,
		Assigned: assigned,
		Duration: dur,
		Time:     time.Now(),
	})
}

// Stations returns the number of associated stations.
func (c *Coordinator) Stations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stations)
}

// ServeOrder returns a copy of the serve list for a class.
func (c *Coordinator) ServeOrder(class model.TrafficClass) []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint16, 0, len(c.order[class]))
	for _, sta := range c.order[class] {
		out = append(out, sta.AID)
	}
	return out
}
