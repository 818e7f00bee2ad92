package settlement

import (
	"cmp"
	"fmt"

	"github.com/kilianp07/balancemkt/core/model"
)

// Candidate is one segment of the merit-order curve: either a broker's
// balancing order or a slice of the synthetic regulating-market order.
type Candidate struct {
	owner *ChargeInfo // nil for regulating-market segments
	order model.BalancingOrder
	seq   int

	Available float64
	Exercised float64
	Price     float64
	// Slope is the marginal price increase per kWh drawn from the segment.
	Slope float64
	// StartX is the quantity drawn from earlier regulating-market segments.
	StartX float64
}

func orderCandidate(owner *ChargeInfo, o model.BalancingOrder, seq int) Candidate {
	return Candidate{owner: owner, order: o, seq: seq, Price: o.Price}
}

func marketCandidate(available, price, slope, startX float64, seq int) Candidate {
	return Candidate{seq: seq, Available: available, Price: price, Slope: slope, StartX: startX}
}

// IsSynthetic reports whether the candidate stands for the regulating market.
func (c Candidate) IsSynthetic() bool { return c.owner == nil }

// BrokerID returns the owning broker, empty for regulating-market segments.
func (c Candidate) BrokerID() string {
	if c.owner == nil {
		return ""
	}
	return c.owner.Broker.ID
}

// Order returns the wrapped balancing order.
func (c Candidate) Order() model.BalancingOrder { return c.order }

// MarginalPrice returns the unit price after drawing qty from the segment.
func (c Candidate) MarginalPrice(qty float64) float64 {
	return c.Price + c.Slope*qty
}

// TotalNECost integrates the cost of drawing qty more from the unexercised
// part of the segment, including the price rise on what was already
// exercised and on earlier regulating-market segments.
func (c Candidate) TotalNECost(qty float64) float64 {
	oldPrice := c.MarginalPrice(c.Exercised)
	newPrice := c.MarginalPrice(c.Exercised + qty)
	return newPrice*qty +
		(newPrice-oldPrice)*c.Exercised +
		c.StartX*(newPrice-c.Price)
}

// TotalECost returns the cost of the exercised quantity including its
// effect on earlier regulating-market segments.
func (c Candidate) TotalECost() float64 {
	mp1 := 0.0
	if c.StartX != 0 {
		mp1 = c.MarginalPrice(c.StartX)
	}
	mp2 := c.MarginalPrice(c.StartX + c.Exercised)
	return mp2*c.Exercised + c.StartX*(mp2-mp1)
}

func (c Candidate) remaining() float64 { return c.Available - c.Exercised }

func (c Candidate) String() string {
	if c.IsSynthetic() {
		return fmt.Sprintf("market:%g:%g:%g", c.Price, c.Available, c.Exercised)
	}
	return fmt.Sprintf("%s:%s:%g:%g:%g", c.owner.Broker.Name(), c.order.TariffID, c.Price, c.Available, c.Exercised)
}

// compareCandidates orders by price, then by discovery sequence so that
// equal prices keep broker order and regulating-market segments sort after
// broker orders at the same price.
func compareCandidates(a, b Candidate) int {
	if n := cmp.Compare(a.Price, b.Price); n != 0 {
		return n
	}
	return cmp.Compare(a.seq, b.seq)
}
