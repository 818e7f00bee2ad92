package logging

import (
	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/settlement"
)

type capacityMap map[string]model.RegulationCapacity

func (c capacityMap) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	return c[o.ID]
}

func (capacityMap) ExerciseBalancingControl(model.BalancingOrder, float64, float64) {}

// settledRecord runs a small market through the static engine and captures it.
func settledRecord(runID string, timeslot int) (Record, error) {
	caps := capacityMap{
		"o1": model.NewRegulationCapacity(5, 0),
		"o2": model.NewRegulationCapacity(8, -2),
	}
	b1 := settlement.NewChargeInfo(model.Broker{ID: "b1"}, -20)
	b1.AddBalancingOrder(model.BalancingOrder{ID: "o1", BrokerID: "b1", ExerciseRatio: 0.6, Price: 0.04})
	b2 := settlement.NewChargeInfo(model.Broker{ID: "b2"}, 6)
	b2.AddBalancingOrder(model.BalancingOrder{ID: "o2", BrokerID: "b2", ExerciseRatio: 0.8, Price: 0.05})
	charges := []*settlement.ChargeInfo{b1, b2}
	pc := settlement.PriceContext{PPlus: 0.06, PMinus: -0.015, PPlusPrime: 0.0001, PMinusPrime: -0.0001}

	res, err := settlement.NewStaticEngine(caps, nil).Run(pc, charges)
	if err != nil {
		return Record{}, err
	}
	return NewRecord(runID, timeslot, settlement.KindStatic.String(), pc, charges, caps, res), nil
}
