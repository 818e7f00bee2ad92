package settlement

import (
	"fmt"

	"github.com/kilianp07/balancemkt/core/model"
)

type exerciseCall struct {
	orderID string
	kwh     float64
	payment float64
}

type fakeControl struct {
	capacity map[string]model.RegulationCapacity
	calls    []exerciseCall
}

func newFakeControl() *fakeControl {
	return &fakeControl{capacity: make(map[string]model.RegulationCapacity)}
}

func (f *fakeControl) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	return f.capacity[o.ID]
}

func (f *fakeControl) ExerciseBalancingControl(o model.BalancingOrder, kwh, payment float64) {
	f.calls = append(f.calls, exerciseCall{orderID: o.ID, kwh: kwh, payment: payment})
}

type orderSpec struct {
	broker   int // 1-based
	id       string
	ratio    float64
	price    float64
	up, down float64
}

type fixture struct {
	control *fakeControl
	charges []*ChargeInfo
}

func newFixture(netLoads ...float64) *fixture {
	f := &fixture{control: newFakeControl()}
	for i, nl := range netLoads {
		b := model.Broker{ID: fmt.Sprintf("b%d", i+1)}
		f.charges = append(f.charges, NewChargeInfo(b, nl))
	}
	return f
}

func (f *fixture) with(orders ...orderSpec) *fixture {
	for _, s := range orders {
		ci := f.charges[s.broker-1]
		o := model.BalancingOrder{ID: s.id, BrokerID: ci.Broker.ID, TariffID: "t-" + s.id, ExerciseRatio: s.ratio, Price: s.price}
		ci.AddBalancingOrder(o)
		f.control.capacity[o.ID] = model.NewRegulationCapacity(s.up, s.down)
	}
	return f
}

func (f *fixture) run(pc PriceContext) (Result, error) {
	return NewStaticEngine(f.control, nil).Run(pc, f.charges)
}

var defaultPrices = PriceContext{PPlus: 0.06, PMinus: -0.015}

func withSlopes(pc PriceContext, plus, minus float64) PriceContext {
	pc.PPlusPrime = plus
	pc.PMinusPrime = minus
	return pc
}
