package settlement

import "github.com/kilianp07/balancemkt/core/model"

// ChargeInfo holds the settlement state of one broker for one timeslot.
type ChargeInfo struct {
	Broker          model.Broker
	NetLoadKWh      float64
	BalancingOrders []model.BalancingOrder
	// P1 is the imbalance charge and P2 the VCG charge. Positive values are
	// credits to the broker.
	P1             float64
	P2             float64
	CurtailmentKWh float64
}

// NewChargeInfo returns a fresh ChargeInfo for broker with the given net load.
func NewChargeInfo(b model.Broker, netLoadKWh float64) *ChargeInfo {
	return &ChargeInfo{Broker: b, NetLoadKWh: netLoadKWh}
}

// AddBalancingOrder attaches an order to the broker.
func (c *ChargeInfo) AddBalancingOrder(o model.BalancingOrder) {
	c.BalancingOrders = append(c.BalancingOrders, o)
}

// BalanceCharge returns the total charge p1 + p2.
func (c *ChargeInfo) BalanceCharge() float64 { return c.P1 + c.P2 }

// AddCurtailment accumulates exercised regulation.
func (c *ChargeInfo) AddCurtailment(kwh float64) { c.CurtailmentKWh += kwh }
