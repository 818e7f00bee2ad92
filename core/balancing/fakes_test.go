package balancing

import (
	"context"
	"errors"

	"github.com/kilianp07/balancemkt/core/model"
)

type transaction struct {
	brokerID string
	netLoad  float64
	charge   float64
}

type fakeLedger struct {
	positions map[string]float64
	netLoads  map[string]float64
	failFor   string
	txs       []transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{positions: map[string]float64{}, netLoads: map[string]float64{}}
}

func (l *fakeLedger) CurrentMarketPosition(id string) float64 { return l.positions[id] }
func (l *fakeLedger) CurrentNetLoad(id string) float64        { return l.netLoads[id] }
func (l *fakeLedger) AddBalancingTransaction(id string, netLoad, charge float64) error {
	if id == l.failFor {
		return errors.New("ledger offline")
	}
	l.txs = append(l.txs, transaction{id, netLoad, charge})
	return nil
}

type fakeRegistry struct {
	brokers []model.Broker
	err     error
}

func (r fakeRegistry) RetailBrokers() ([]model.Broker, error) { return r.brokers, r.err }

type fakeOrders []model.BalancingOrder

func (o fakeOrders) BalancingOrders() []model.BalancingOrder { return o }

type fakeOracle struct {
	prices  []float64
	spot    float64
	hasSpot bool
}

func (o fakeOracle) ClearingPrices(int) []float64           { return o.prices }
func (o fakeOracle) SpotClearingPrice(int) (float64, bool) { return o.spot, o.hasSpot }

type fakeReports struct {
	reports []model.BalanceReport
}

func (r *fakeReports) BroadcastReport(_ context.Context, rep model.BalanceReport) error {
	r.reports = append(r.reports, rep)
	return nil
}

type fakeControl struct {
	capacity  map[string]model.RegulationCapacity
	exercised map[string]float64
}

func newFakeControl() *fakeControl {
	return &fakeControl{capacity: map[string]model.RegulationCapacity{}, exercised: map[string]float64{}}
}

func (c *fakeControl) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	return c.capacity[o.ID]
}

func (c *fakeControl) ExerciseBalancingControl(o model.BalancingOrder, kwh, _ float64) {
	c.exercised[o.ID] += kwh
}

type harness struct {
	ledger   *fakeLedger
	registry fakeRegistry
	orders   fakeOrders
	oracle   fakeOracle
	reports  *fakeReports
	control  *fakeControl
}

// newHarness registers one broker per net load, named b1, b2, ...
func newHarness(netLoads ...float64) *harness {
	h := &harness{ledger: newFakeLedger(), reports: &fakeReports{}, control: newFakeControl()}
	for i, nl := range netLoads {
		b := model.Broker{ID: "b" + string(rune('1'+i))}
		h.registry.brokers = append(h.registry.brokers, b)
		h.ledger.netLoads[b.ID] = nl
	}
	return h
}

func (h *harness) deps() Dependencies {
	return Dependencies{
		Ledger:  h.ledger,
		Brokers: h.registry,
		Orders:  h.orders,
		Oracle:  h.oracle,
		Control: h.control,
		Reports: h.reports,
	}
}
