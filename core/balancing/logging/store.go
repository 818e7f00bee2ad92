package logging

import (
	"context"
	"time"

	"github.com/kilianp07/balancemkt/core/model"
	"github.com/kilianp07/balancemkt/core/settlement"
)

// Record captures the inputs and outputs of one settlement so that it can
// be replayed later.
type Record struct {
	RunID                string                  `json:"run_id"`
	Timeslot             int                     `json:"timeslot"`
	Strategy             string                  `json:"strategy"`
	Timestamp            time.Time               `json:"timestamp"`
	Prices               settlement.PriceContext `json:"price_context"`
	Inputs               []BrokerInput           `json:"inputs"`
	Outputs              []BrokerOutput          `json:"outputs"`
	RegulatingMarketCost float64                 `json:"rm_cost"`
	Budget               float64                 `json:"budget"`
}

// BrokerInput is what the engine saw of one broker.
type BrokerInput struct {
	Broker     model.Broker `json:"broker"`
	NetLoadKWh float64      `json:"net_load_kwh"`
	Orders     []OrderInput `json:"orders,omitempty"`
}

// OrderInput pairs an order with the capacity reported for it.
type OrderInput struct {
	Order    model.BalancingOrder     `json:"order"`
	Capacity model.RegulationCapacity `json:"capacity"`
}

// BrokerOutput is the settlement of one broker.
type BrokerOutput struct {
	BrokerID       string  `json:"broker_id"`
	P1             float64 `json:"p1"`
	P2             float64 `json:"p2"`
	CurtailmentKWh float64 `json:"curtailment_kwh"`
}

// LogQuery defines filters for retrieving records. Zero values match all.
type LogQuery struct {
	RunID    string
	FromSlot int
	ToSlot   int
	BrokerID string
}

// Match reports whether r passes the filters.
func (q LogQuery) Match(r Record) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.FromSlot != 0 && r.Timeslot < q.FromSlot {
		return false
	}
	if q.ToSlot != 0 && r.Timeslot > q.ToSlot {
		return false
	}
	if q.BrokerID == "" {
		return true
	}
	for _, in := range r.Inputs {
		if in.Broker.ID == q.BrokerID {
			return true
		}
	}
	return false
}

// LogStore persists Records and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q LogQuery) ([]Record, error)
	Close() error
}

// NewRecord captures a finished settlement. capacities holds what the
// capacity control reported per order ID during the pass.
func NewRecord(runID string, timeslot int, strategy string, pc settlement.PriceContext,
	charges []*settlement.ChargeInfo, capacities map[string]model.RegulationCapacity, res settlement.Result) Record {
	rec := Record{
		RunID:                runID,
		Timeslot:             timeslot,
		Strategy:             strategy,
		Timestamp:            time.Now().UTC(),
		Prices:               pc,
		RegulatingMarketCost: res.RegulatingMarketCost,
		Budget:               res.Budget(),
	}
	for _, ci := range charges {
		in := BrokerInput{Broker: ci.Broker, NetLoadKWh: ci.NetLoadKWh}
		for _, o := range ci.BalancingOrders {
			in.Orders = append(in.Orders, OrderInput{Order: o, Capacity: capacities[o.ID]})
		}
		rec.Inputs = append(rec.Inputs, in)
		rec.Outputs = append(rec.Outputs, BrokerOutput{
			BrokerID:       ci.Broker.ID,
			P1:             ci.P1,
			P2:             ci.P2,
			CurtailmentKWh: ci.CurtailmentKWh,
		})
	}
	return rec
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error             { return nil }
func (NopStore) Query(context.Context, LogQuery) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                     { return nil }
