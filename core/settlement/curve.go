package settlement

import (
	"fmt"
	"math"
	"slices"
)

// epsilon is the magnitude below which quantities are treated as zero.
const epsilon = 1e-6

type curve []Candidate

func (c curve) sort() { slices.SortStableFunc(c, compareCandidates) }

func (c curve) insert(cand Candidate) curve {
	c = append(c, cand)
	c.sort()
	return c
}

func (c curve) index(seq int) int {
	return slices.IndexFunc(c, func(x Candidate) bool { return x.seq == seq })
}

// without returns fresh unexercised copies of the candidates whose owner is
// not excluded. Regulating-market segments are always kept.
func (c curve) without(excluded map[*ChargeInfo]bool) curve {
	out := make(curve, 0, len(c))
	for _, cand := range c {
		if cand.owner != nil && excluded[cand.owner] {
			continue
		}
		cand.Exercised = 0
		out = append(out, cand)
	}
	return out
}

func signum(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

// resolves reports whether an order regulates in the direction that reduces
// the imbalance of the pass.
func (p *pass) resolves(ratio float64) bool {
	if p.total < 0 {
		return ratio > 0
	}
	return ratio < 0
}

// discover collects the broker candidates with usable capacity, sorted by
// price and discovery order.
func (p *pass) discover() curve {
	var c curve
	for _, ci := range p.charges {
		for _, o := range ci.BalancingOrders {
			if !p.resolves(o.ExerciseRatio) {
				continue
			}
			cand := orderCandidate(ci, o, p.nextSeq())
			available := p.control.RegulationCapacity(o).For(p.sgn)
			// Usable capacity opposes the imbalance.
			if -p.sgn*available < epsilon {
				p.log.Debugf("order %s of %s has no usable capacity (%g kWh)", o.ID, ci.Broker.Name(), available)
				continue
			}
			cand.Available = available
			c = append(c, cand)
		}
	}
	c.sort()
	return c
}

// addMarket inserts the regulating-market order. A sloped market order is
// split wherever a broker candidate becomes cheaper than its marginal price.
func (p *pass) addMarket(c curve) curve {
	price, slope := p.pc.PMinus, p.pc.PMinusPrime
	if p.total < 0 {
		price, slope = p.pc.PPlus, p.pc.PPlusPrime
	}
	seg := marketCandidate(-2*p.total, price, slope, 0, p.nextSeq())
	c = c.insert(seg)
	if slope == 0 {
		return c
	}
	for {
		i := c.index(seg.seq)
		if i+1 >= len(c) {
			return c
		}
		next := c[i+1]
		capacity := (next.Price - c[i].Price) / c[i].Slope
		if signum(capacity) != signum(c[i].Available) {
			p.inconsistency(fmt.Errorf("%w: market segment capacity %g against available %g",
				ErrModelInconsistency, capacity, c[i].Available))
			return c
		}
		if math.Abs(capacity) >= math.Abs(c[i].Available) {
			return c
		}
		seg = marketCandidate(c[i].Available-capacity, next.Price+epsilon/1000, c[i].Slope,
			capacity+c[i].StartX, p.nextSeq())
		c[i].Available = capacity
		c = c.insert(seg)
	}
}
