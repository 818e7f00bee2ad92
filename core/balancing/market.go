package balancing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/balancemkt/core/balancing/logging"
	"github.com/kilianp07/balancemkt/core/events"
	"github.com/kilianp07/balancemkt/core/logger"
	"github.com/kilianp07/balancemkt/core/metrics"
	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/monitoring"
	"github.com/kilianp07/balancemkt/core/settlement"
	"github.com/kilianp07/balancemkt/internal/eventbus"
)

// Dependencies groups the collaborators of a Market. Reports, Sink, Bus and
// Store are optional.
type Dependencies struct {
	Ledger  Ledger
	Brokers BrokerRegistry
	Orders  OrderSource
	Oracle  PriceOracle
	Control settlement.CapacityControl
	Reports ReportChannel
	Sink    metrics.MetricsSink
	Bus     eventbus.EventBus
	Store   logging.LogStore
}

// Market settles the balancing market once per timeslot.
type Market struct {
	cfg        Config
	ledger     Ledger
	brokers    BrokerRegistry
	orders     OrderSource
	oracle     PriceOracle
	reports    ReportChannel
	sink       metrics.MetricsSink
	bus        eventbus.EventBus
	store      logging.LogStore
	capacities *capacityRecorder
	kind       settlement.Kind
	strategy   settlement.Strategy
	logger     logger.Logger

	settleMu sync.Mutex
	mu       sync.RWMutex
	timeslot int
	last     map[string]*settlement.ChargeInfo
}

func NewMarket(cfg Config, deps Dependencies, log logger.Logger) (*Market, error) {
	if deps.Ledger == nil || deps.Brokers == nil || deps.Orders == nil || deps.Oracle == nil || deps.Control == nil {
		return nil, fmt.Errorf("balancing: nil dependency provided to NewMarket")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("balancing: %w", err)
	}
	log = logger.OrNop(log)
	kind, err := settlement.ParseKind(cfg.SettlementProcess)
	if err != nil {
		log.Errorf("%v, falling back to %s settlement", err, settlement.KindStatic)
		kind = settlement.KindStatic
	}
	rec := &capacityRecorder{inner: deps.Control, seen: make(map[string]model.RegulationCapacity)}
	strategy, err := settlement.NewStrategy(kind, rec, log)
	if err != nil {
		return nil, err
	}
	m := &Market{
		cfg:        cfg,
		ledger:     deps.Ledger,
		brokers:    deps.Brokers,
		orders:     deps.Orders,
		oracle:     deps.Oracle,
		reports:    deps.Reports,
		sink:       deps.Sink,
		bus:        deps.Bus,
		store:      deps.Store,
		capacities: rec,
		kind:       kind,
		strategy:   strategy,
		logger:     log,
		last:       make(map[string]*settlement.ChargeInfo),
	}
	if m.sink == nil {
		m.sink = metrics.NopSink{}
	}
	if m.store == nil {
		m.store = logging.NopStore{}
	}
	return m, nil
}

// Kind returns the settlement strategy in use.
func (m *Market) Kind() settlement.Kind { return m.kind }

// Timeslot returns the timeslot of the last settlement request.
func (m *Market) Timeslot() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.timeslot
}

// MarketBalance returns the imbalance of a broker in kWh: its wholesale
// position plus its metered net load.
func (m *Market) MarketBalance(brokerID string) float64 {
	return m.ledger.CurrentMarketPosition(brokerID)*1000 + m.ledger.CurrentNetLoad(brokerID)
}

// Regulation returns the curtailment exercised on a broker in the last
// settlement.
func (m *Market) Regulation(brokerID string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ci, ok := m.last[brokerID]
	if !ok {
		m.logger.Errorf("no settlement for broker %s", brokerID)
		return 0
	}
	return ci.CurtailmentKWh
}

// SettleTimeslot settles every retail broker for the timeslot. Ledger
// failures do not stop the remaining postings and are returned joined.
func (m *Market) SettleTimeslot(ctx context.Context, timeslot int) (map[string]*settlement.ChargeInfo, error) {
	m.settleMu.Lock()
	defer m.settleMu.Unlock()
	start := time.Now()
	m.mu.Lock()
	m.timeslot = timeslot
	m.mu.Unlock()

	charges, err := m.collect(timeslot)
	if err != nil {
		m.logger.Errorf("%v", err)
		return nil, err
	}
	pc := m.PriceContext()
	m.capacities.reset()
	res, err := m.run(pc, charges)
	if err != nil {
		m.logger.Errorf("settlement of timeslot %d failed: %v", timeslot, err)
		return nil, err
	}

	out := make(map[string]*settlement.ChargeInfo, len(charges))
	loads := make([]float64, len(charges))
	for i, ci := range charges {
		out[ci.Broker.ID] = ci
		loads[i] = ci.NetLoadKWh
	}
	m.mu.Lock()
	m.last = out
	m.mu.Unlock()

	postErr := m.post(timeslot, charges)
	m.broadcast(ctx, model.BalanceReport{Timeslot: timeslot, NetImbalanceKWh: floats.Sum(loads)})
	m.record(ctx, timeslot, pc, charges, res, time.Since(start))
	return out, postErr
}

func (m *Market) collect(timeslot int) ([]*settlement.ChargeInfo, error) {
	brokers, err := m.brokers.RetailBrokers()
	if err != nil {
		return nil, fmt.Errorf("%w: timeslot %d: broker registry: %w", settlement.ErrData, timeslot, err)
	}
	if brokers == nil {
		return nil, fmt.Errorf("%w: timeslot %d: no broker list", settlement.ErrData, timeslot)
	}
	charges := make([]*settlement.ChargeInfo, 0, len(brokers))
	byID := make(map[string]*settlement.ChargeInfo, len(brokers))
	for _, b := range brokers {
		ci := settlement.NewChargeInfo(b, m.MarketBalance(b.ID))
		charges = append(charges, ci)
		byID[b.ID] = ci
	}
	for _, o := range m.orders.BalancingOrders() {
		if err := o.Validate(); err != nil {
			m.logger.Warnf("ignoring balancing order: %v", err)
			continue
		}
		ci, ok := byID[o.BrokerID]
		if !ok {
			m.logger.Warnf("ignoring order %s of unknown broker %s", o.ID, o.BrokerID)
			continue
		}
		ci.AddBalancingOrder(o)
	}
	return charges, nil
}

func (m *Market) run(pc settlement.PriceContext, charges []*settlement.ChargeInfo) (settlement.Result, error) {
	if r, ok := m.strategy.(settlement.Runner); ok {
		return r.Run(pc, charges)
	}
	return settlement.Result{}, m.strategy.Settle(pc, charges)
}

func (m *Market) post(timeslot int, charges []*settlement.ChargeInfo) error {
	var errs []error
	for _, ci := range charges {
		if ci.P1 == 0 {
			continue
		}
		err := m.ledger.AddBalancingTransaction(ci.Broker.ID, ci.NetLoadKWh, ci.P1)
		if err != nil {
			err = fmt.Errorf("post balancing charge for %s: %w", ci.Broker.ID, err)
			m.logger.Errorf("%v", err)
			monitoring.CaptureException(err, map[string]string{"module": "balancing", "broker": ci.Broker.ID})
			errs = append(errs, err)
		}
		m.publish(events.TransactionEvent{
			Timeslot:   timeslot,
			BrokerID:   ci.Broker.ID,
			NetLoadKWh: ci.NetLoadKWh,
			Charge:     ci.P1,
			Err:        err,
		})
	}
	return errors.Join(errs...)
}

func (m *Market) broadcast(ctx context.Context, r model.BalanceReport) {
	if m.reports == nil {
		return
	}
	start := time.Now()
	err := m.reports.BroadcastReport(ctx, r)
	if err != nil {
		m.logger.Errorf("broadcast balance report for timeslot %d: %v", r.Timeslot, err)
	}
	m.publish(events.ReportEvent{Report: r, Err: err, Latency: time.Since(start)})
}

func (m *Market) record(ctx context.Context, timeslot int, pc settlement.PriceContext,
	charges []*settlement.ChargeInfo, res settlement.Result, took time.Duration) {
	runID := uuid.NewString()
	now := time.Now()
	m.logger.Debugw("settlement budget", map[string]any{
		"run_id":     runID,
		"timeslot":   timeslot,
		"rm_cost":    res.RegulatingMarketCost,
		"brokers":    res.BrokerCost,
		"budget":     res.Budget(),
		"flat":       res.Flat,
		"strategy":   m.kind.String(),
		"duration":   took.String(),
		"candidates": len(res.Curve),
	})
	rec := logging.NewRecord(runID, timeslot, m.kind.String(), pc, charges, m.capacities.snapshot(), res)
	if err := m.store.Append(ctx, rec); err != nil {
		m.logger.Errorf("settlement log append: %v", err)
	}
	if err := m.sink.RecordSettlement(metrics.SettlementRecord{
		RunID:                runID,
		Timeslot:             timeslot,
		Strategy:             m.kind.String(),
		TotalImbalanceKWh:    res.TotalImbalanceKWh,
		RegulatingMarketKWh:  res.RegulatingMarketKWh,
		RegulatingMarketCost: res.RegulatingMarketCost,
		BrokerCost:           res.BrokerCost,
		Flat:                 res.Flat,
		Inconsistencies:      len(res.Inconsistencies),
		Duration:             took,
		Time:                 now,
	}); err != nil {
		m.logger.Errorf("settlement metrics error: %v", err)
	}
	if cr, ok := m.sink.(metrics.ChargeRecorder); ok {
		recs := make([]metrics.ChargeRecord, len(charges))
		for i, ci := range charges {
			recs[i] = metrics.ChargeRecord{
				RunID:          runID,
				Timeslot:       timeslot,
				BrokerID:       ci.Broker.ID,
				NetLoadKWh:     ci.NetLoadKWh,
				P1:             ci.P1,
				P2:             ci.P2,
				CurtailmentKWh: ci.CurtailmentKWh,
				Time:           now,
			}
		}
		if err := cr.RecordCharges(recs); err != nil {
			m.logger.Errorf("charge metrics error: %v", err)
		}
	}
	m.publish(events.SettlementEvent{
		RunID:                runID,
		Timeslot:             timeslot,
		Strategy:             m.kind.String(),
		TotalImbalanceKWh:    res.TotalImbalanceKWh,
		RegulatingMarketCost: res.RegulatingMarketCost,
		BrokerCost:           res.BrokerCost,
		Flat:                 res.Flat,
		Inconsistencies:      len(res.Inconsistencies),
		Duration:             took,
	})
}

func (m *Market) publish(ev eventbus.Event) {
	if m.bus != nil {
		m.bus.Publish(ev)
	}
}
