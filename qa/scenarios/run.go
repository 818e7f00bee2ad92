package scenarios

import (
	"fmt"
	"math"

	"github.com/kilianp07/balancemkt/core/logger"
	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/settlement"
)

// Exercise is one recorded call into a tariff's controllable capacity.
type Exercise struct {
	OrderID string
	KWh     float64
	Payment float64
}

type control struct {
	capacity  map[string]model.RegulationCapacity
	exercised []Exercise
}

func (c *control) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	return c.capacity[o.ID]
}

func (c *control) ExerciseBalancingControl(o model.BalancingOrder, kwh, payment float64) {
	c.exercised = append(c.exercised, Exercise{OrderID: o.ID, KWh: kwh, Payment: payment})
}

// Outcome is the result of settling a scenario.
type Outcome struct {
	Kind      settlement.Kind
	Result    settlement.Result
	Charges   []*settlement.ChargeInfo
	Exercises []Exercise
}

// Run settles the scenario with its strategy, static when unset.
func Run(sc *Scenario, log logger.Logger) (Outcome, error) {
	kind, err := settlement.ParseKind(sc.Strategy)
	if err != nil {
		return Outcome{}, err
	}
	ctl := &control{capacity: make(map[string]model.RegulationCapacity)}
	charges := make([]*settlement.ChargeInfo, 0, len(sc.Brokers))
	for _, b := range sc.Brokers {
		ci := settlement.NewChargeInfo(model.Broker{ID: b.ID, Username: b.ID}, b.NetLoadKWh)
		for _, od := range b.Orders {
			o := od.ToModel(b.ID)
			if err := o.Validate(); err != nil {
				return Outcome{}, fmt.Errorf("scenario %s: %w", sc.Name, err)
			}
			ci.AddBalancingOrder(o)
			ctl.capacity[o.ID] = model.NewRegulationCapacity(od.UpKWh, od.DownKWh)
		}
		charges = append(charges, ci)
	}
	strategy, err := settlement.NewStrategy(kind, ctl, log)
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Kind: kind, Charges: charges}
	if r, ok := strategy.(settlement.Runner); ok {
		out.Result, err = r.Run(sc.Prices.ToModel(), charges)
	} else {
		err = strategy.Settle(sc.Prices.ToModel(), charges)
	}
	out.Exercises = ctl.exercised
	return out, err
}

// Check compares an outcome with the scenario's expectations and returns
// one message per mismatch.
func (sc *Scenario) Check(out Outcome) []string {
	if sc.Expected == nil {
		return nil
	}
	exp := sc.Expected
	tol := exp.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	var diffs []string
	if out.Result.Flat != exp.Flat {
		diffs = append(diffs, fmt.Sprintf("flat: got %v, want %v", out.Result.Flat, exp.Flat))
	}
	if exp.RMCost != nil && math.Abs(out.Result.RegulatingMarketCost-*exp.RMCost) > tol {
		diffs = append(diffs, fmt.Sprintf("rm_cost: got %g, want %g", out.Result.RegulatingMarketCost, *exp.RMCost))
	}
	for _, ci := range out.Charges {
		want, ok := exp.Charges[ci.Broker.ID]
		if !ok {
			continue
		}
		for _, f := range []struct {
			name      string
			got, want float64
		}{
			{"p1", ci.P1, want.P1},
			{"p2", ci.P2, want.P2},
			{"curtailment_kwh", ci.CurtailmentKWh, want.CurtailmentKWh},
		} {
			if math.Abs(f.got-f.want) > tol {
				diffs = append(diffs, fmt.Sprintf("%s %s: got %g, want %g", ci.Broker.ID, f.name, f.got, f.want))
			}
		}
	}
	return diffs
}
