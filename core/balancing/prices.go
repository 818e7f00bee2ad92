package balancing

import (
	"slices"

	"github.com/kilianp07/balancemkt/core/settlement"
)

// PPlus returns the up-regulation price per kWh derived from the highest
// clearing price of the current timeslot.
func (m *Market) PPlus() float64 {
	price := m.cfg.DefaultSpotPrice
	if prices := m.oracle.ClearingPrices(m.Timeslot()); len(prices) > 0 {
		price = slices.Max(prices)
	}
	return price*m.cfg.RMPremium/1000 + m.cfg.RMFee
}

// PMinus returns the down-regulation price per kWh derived from the lowest
// clearing price of the current timeslot.
func (m *Market) PMinus() float64 {
	price := m.cfg.DefaultSpotPrice
	if prices := m.oracle.ClearingPrices(m.Timeslot()); len(prices) > 0 {
		price = slices.Min(prices)
	}
	return -price/m.cfg.RMPremium/1000 - m.cfg.RMFee
}

func (m *Market) PPlusPrime() float64  { return m.cfg.PPlusPrime }
func (m *Market) PMinusPrime() float64 { return m.cfg.PMinusPrime }

// SpotPrice returns the spot clearing price per kWh.
func (m *Market) SpotPrice() float64 {
	if p, ok := m.oracle.SpotClearingPrice(m.Timeslot()); ok {
		return p / 1000
	}
	return m.cfg.DefaultSpotPrice / 1000
}

func (m *Market) BalancingCost() float64    { return m.cfg.BalancingCost }
func (m *Market) DefaultSpotPrice() float64 { return m.cfg.DefaultSpotPrice }

// PriceContext snapshots the regulating-market prices.
func (m *Market) PriceContext() settlement.PriceContext {
	return settlement.PriceContext{
		PPlus:       m.PPlus(),
		PMinus:      m.PMinus(),
		PPlusPrime:  m.PPlusPrime(),
		PMinusPrime: m.PMinusPrime(),
	}
}
