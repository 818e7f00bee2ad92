package settlement

import (
	"fmt"
	"math"
)

// vcg returns the externality charge of target: the cost of replacing its
// exercised quantity on c with the unexercised tail, skipping candidates of
// target and of excluded brokers.
func (p *pass) vcg(target *ChargeInfo, c, tail curve, excluded map[*ChargeInfo]bool) float64 {
	qty := 0.0
	for _, cand := range c {
		if cand.Available != 0 && cand.Exercised == 0 {
			break
		}
		if cand.owner == target {
			qty += cand.Exercised
		}
		if math.Abs(cand.remaining()) > 0 {
			break
		}
	}
	price := 0.0
	for _, cand := range tail {
		if math.Abs(qty) < epsilon {
			break
		}
		if cand.owner != nil && (cand.owner == target || excluded[cand.owner]) {
			continue
		}
		used := p.sgn * math.Max(p.sgn*cand.remaining(), p.sgn*qty)
		price += p.sgn * cand.TotalNECost(used)
		qty -= used
	}
	if math.Abs(qty) > epsilon {
		p.inconsistency(fmt.Errorf("%w: not enough orders to replace %g kWh of %s",
			ErrModelInconsistency, qty, target.Broker.Name()))
	}
	return -price
}

// externalityCharges sets P2 for every broker from the cleared curve.
func (p *pass) externalityCharges(c curve) {
	tail := c.tail()
	for _, ci := range p.charges {
		ci.P2 = p.vcg(ci, c, tail, nil)
	}
}

// imbalanceCharges sets P1 for every broker. A contributor's share is
// priced on a market without the non-contributors; a non-contributor is
// priced against everyone else.
func (p *pass) imbalanceCharges(c curve) {
	against := make(map[*ChargeInfo]bool)
	for _, ci := range p.charges {
		if ci.NetLoadKWh != 0 && signum(ci.NetLoadKWh) != p.sgn {
			against[ci] = true
		}
	}
	for _, ci := range p.charges {
		excluded := map[*ChargeInfo]bool{ci: true}
		if !against[ci] {
			for nc := range against {
				excluded[nc] = true
			}
		}
		remains := c.without(excluded)
		exercise(remains, p.total)
		tail := remains.tail()
		cost := remains.marketCost()
		for _, other := range p.charges {
			if other == ci || excluded[other] {
				continue
			}
			cost -= p.vcg(other, remains, tail, excluded)
		}
		ci.P1 = -p.sgn * cost * ci.NetLoadKWh / p.total
	}
}

// flatCharges prices a balanced system without running the auction.
func (p *pass) flatCharges() {
	for _, ci := range p.charges {
		ci.P2 = 0
		if ci.NetLoadKWh < 0 {
			ci.P1 = p.pc.PPlus * ci.NetLoadKWh
		} else {
			ci.P1 = -p.pc.PMinus * ci.NetLoadKWh
		}
	}
}
