package logging

import (
	"fmt"

	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/settlement"
)

// Mismatch is a recorded output that the replay did not reproduce.
type Mismatch struct {
	BrokerID string
	Field    string
	Recorded float64
	Replayed float64
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s %s: recorded %g, replayed %g", m.BrokerID, m.Field, m.Recorded, m.Replayed)
}

// replayControl answers capacity queries from a record.
type replayControl struct {
	capacity map[string]model.RegulationCapacity
}

func (r replayControl) RegulationCapacity(o model.BalancingOrder) model.RegulationCapacity {
	return r.capacity[o.ID]
}

func (replayControl) ExerciseBalancingControl(model.BalancingOrder, float64, float64) {}

// Charges rebuilds fresh charge infos from the recorded inputs.
func (r Record) Charges() []*settlement.ChargeInfo {
	charges := make([]*settlement.ChargeInfo, 0, len(r.Inputs))
	for _, in := range r.Inputs {
		ci := settlement.NewChargeInfo(in.Broker, in.NetLoadKWh)
		for _, o := range in.Orders {
			ci.AddBalancingOrder(o.Order)
		}
		charges = append(charges, ci)
	}
	return charges
}

// Replay settles the recorded inputs again with the given strategy and
// returns every output that differs from the record. Settlement is
// deterministic so a faithful record replays without mismatches.
func Replay(rec Record, kind settlement.Kind) ([]Mismatch, error) {
	ctl := replayControl{capacity: make(map[string]model.RegulationCapacity)}
	for _, in := range rec.Inputs {
		for _, o := range in.Orders {
			ctl.capacity[o.Order.ID] = o.Capacity
		}
	}
	strategy, err := settlement.NewStrategy(kind, ctl, nil)
	if err != nil {
		return nil, err
	}
	charges := rec.Charges()
	if err := strategy.Settle(rec.Prices, charges); err != nil {
		return nil, fmt.Errorf("replay run %s: %w", rec.RunID, err)
	}
	recorded := make(map[string]BrokerOutput, len(rec.Outputs))
	for _, out := range rec.Outputs {
		recorded[out.BrokerID] = out
	}
	var diff []Mismatch
	for _, ci := range charges {
		want, ok := recorded[ci.Broker.ID]
		if !ok {
			return nil, fmt.Errorf("replay run %s: no recorded output for %s", rec.RunID, ci.Broker.ID)
		}
		for _, f := range []struct {
			name      string
			got, want float64
		}{
			{"p1", ci.P1, want.P1},
			{"p2", ci.P2, want.P2},
			{"curtailment", ci.CurtailmentKWh, want.CurtailmentKWh},
		} {
			if f.got != f.want {
				diff = append(diff, Mismatch{BrokerID: ci.Broker.ID, Field: f.name, Recorded: f.want, Replayed: f.got})
			}
		}
	}
	return diff, nil
}
